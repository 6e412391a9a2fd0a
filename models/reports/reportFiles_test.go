package reports

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileWriter_WriteTable(t *testing.T) {
	t.Setenv("REPORTS_GCS_BUCKET", "")
	t.Setenv("REPORTS_PUBSUB_TOPIC", "")
	writer := NewFileWriter(nil)
	if writer.locker != nil {
		t.Skip("redis lock configured in this process")
	}

	grid := BuildVisitGrid([]DailyVisitRecord{
		{UserName: "Alice", VisitDate: date("2025-09-01"), TotalVisits: 2},
	})
	csvPath := filepath.Join(t.TempDir(), "visit_details", DailyVisitsFileName(date("2025-09-30")))
	paths, err := writer.WriteTable(context.Background(), csvPath, grid.Table(), ReportFileInfo{ReportType: ReportTypeDailyVisits})
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if len(paths) != 2 || paths[0] != csvPath || paths[1] != XLSXPath(csvPath) {
		t.Fatalf("unexpected paths %v", paths)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if string(data) != "Date,Alice\r\n1-Sep-25,2\r\n" {
		t.Fatalf("unexpected csv %q", data)
	}
	xlsx, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatalf("read xlsx: %v", err)
	}
	rows, err := openWorkbook(t, xlsx).GetRows(DailyVisitsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "2" {
		t.Fatalf("unexpected workbook rows %v", rows)
	}
}
