package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	errorSheet      = "Error"
)

// Table is the single serializable report model. CSV and XLSX, in memory or
// on disk, are all rendered from it.
type Table struct {
	SheetName string
	Header    []string
	Rows      [][]interface{}
}

func cellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = cellText(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t *Table) CSVBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// columnWidths is the longest rendered value per column plus two.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i, v := range row {
			if i >= len(widths) {
				break
			}
			if n := utf8.RuneCountInString(cellText(v)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}
	return widths
}

// Workbook builds a one sheet workbook with a bold, centered header row.
// The caller closes it.
func (t *Table) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := t.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, err
	}
	if len(t.Header) > 0 {
		style, err := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	for i := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := t.Rows[i]
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	for i, w := range t.columnWidths() {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, float64(w)); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

func (t *Table) XLSXBytes() ([]byte, error) {
	f, err := t.Workbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Table) SaveCSV(path string) error {
	data, err := t.CSVBytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (t *Table) SaveXLSX(path string) error {
	f, err := t.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// errorCSV is the degraded CSV body: a single Error row.
func errorCSV(cause error) []byte {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.UseCRLF = true
	_ = cw.Write([]string{"Error", "Failed to generate report: " + cause.Error()})
	cw.Flush()
	return buf.Bytes()
}

// errorXLSX is the degraded workbook: sheet Error with the message in one
// row. It returns nil only if excelize itself fails.
func errorXLSX(cause error) []byte {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", errorSheet); err != nil {
		return nil
	}
	row := []interface{}{"Failed to generate report", cause.Error()}
	if err := f.SetSheetRow(errorSheet, "A1", &row); err != nil {
		return nil
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil
	}
	return buf.Bytes()
}
