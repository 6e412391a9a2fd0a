package reports

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildVisitGrid_DenseAndOrdered(t *testing.T) {
	grid := BuildVisitGrid([]DailyVisitRecord{
		{UserName: "Bob", VisitDate: date("2025-09-02"), TotalVisits: 2},
		{UserName: "Alice", VisitDate: date("2025-09-01"), TotalVisits: 3},
		{UserName: "Carol", VisitDate: date("2025-09-02"), TotalVisits: 1},
	})

	if got := strings.Join(grid.Users, ","); got != "Alice,Bob,Carol" {
		t.Fatalf("expected users sorted, got %s", got)
	}
	if len(grid.Dates) != 2 || !grid.Dates[0].Equal(date("2025-09-01")) || !grid.Dates[1].Equal(date("2025-09-02")) {
		t.Fatalf("unexpected dates %v", grid.Dates)
	}
	if grid.Count(date("2025-09-01"), "Bob") != 0 {
		t.Fatalf("expected absent pair to be zero")
	}
	if grid.Count(date("2025-09-02"), "Bob") != 2 {
		t.Fatalf("expected Bob=2 on 2025-09-02")
	}
	if grid.UserTotal("Alice") != 3 {
		t.Fatalf("expected Alice total 3, got %d", grid.UserTotal("Alice"))
	}

	table := grid.Table()
	if table.SheetName != DailyVisitsSheet {
		t.Fatalf("unexpected sheet %s", table.SheetName)
	}
	if got := strings.Join(table.Header, ","); got != "Date,Alice,Bob,Carol" {
		t.Fatalf("unexpected header %s", got)
	}
	for _, row := range table.Rows {
		if len(row) != len(table.Header) {
			t.Fatalf("expected dense row, got %v", row)
		}
	}
	if table.Rows[0][0] != "1-Sep-25" || table.Rows[1][0] != "2-Sep-25" {
		t.Fatalf("unexpected date cells %v %v", table.Rows[0][0], table.Rows[1][0])
	}
}

func TestBuildVisitGrid_SumsDuplicates(t *testing.T) {
	grid := BuildVisitGrid([]DailyVisitRecord{
		{UserName: "Alice", VisitDate: date("2025-09-01"), TotalVisits: 1},
		{UserName: "Alice", VisitDate: date("2025-09-01"), TotalVisits: 4},
	})
	if got := grid.Count(date("2025-09-01"), "Alice"); got != 5 {
		t.Fatalf("expected duplicate records to sum to 5, got %d", got)
	}
}

func TestBuildVisitGrid_Empty(t *testing.T) {
	grid := BuildVisitGrid(nil)
	if !grid.IsEmpty() {
		t.Fatalf("expected empty grid")
	}
	data, err := grid.Table().CSVBytes()
	if err != nil {
		t.Fatalf("CSVBytes: %v", err)
	}
	if string(data) != "Date\r\n" {
		t.Fatalf("expected header only csv, got %q", data)
	}
}

func TestVisitGridCSV(t *testing.T) {
	grid := BuildVisitGrid([]DailyVisitRecord{
		{UserName: "Alice", VisitDate: date("2025-09-01"), TotalVisits: 3},
		{UserName: "Smith, J", VisitDate: date("2025-09-02"), TotalVisits: 1},
	})
	data, err := grid.Table().CSVBytes()
	if err != nil {
		t.Fatalf("CSVBytes: %v", err)
	}
	expected := "Date,Alice,\"Smith, J\"\r\n1-Sep-25,3,0\r\n2-Sep-25,0,1\r\n"
	if string(data) != expected {
		t.Fatalf("expected %q, got %q", expected, data)
	}
}

func TestParseVisitGridCSV_RoundTrip(t *testing.T) {
	original := BuildVisitGrid([]DailyVisitRecord{
		{UserName: "Alice", VisitDate: date("2025-09-01"), TotalVisits: 3},
		{UserName: "Bob", VisitDate: date("2025-09-02"), TotalVisits: 2},
	})
	data, err := original.Table().CSVBytes()
	if err != nil {
		t.Fatalf("CSVBytes: %v", err)
	}
	parsed, err := ParseVisitGridCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseVisitGridCSV: %v", err)
	}
	if strings.Join(parsed.Users, ",") != "Alice,Bob" || len(parsed.Dates) != 2 {
		t.Fatalf("unexpected parsed grid %v %v", parsed.Users, parsed.Dates)
	}
	for _, d := range original.Dates {
		for _, u := range original.Users {
			if parsed.Count(d, u) != original.Count(d, u) {
				t.Fatalf("count mismatch for %s on %s", u, d.Format("2006-01-02"))
			}
		}
	}
}

func TestParseVisitGridCSV_Lenient(t *testing.T) {
	input := "\ufeffDate,Alice,Bob\n2025-09-01,2,\nTotal,9,9\n3-Sep-25,x,4\n"
	grid, err := ParseVisitGridCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseVisitGridCSV: %v", err)
	}
	if len(grid.Dates) != 2 {
		t.Fatalf("expected the Total row to be skipped, got dates %v", grid.Dates)
	}
	if grid.Count(date("2025-09-01"), "Alice") != 2 || grid.Count(date("2025-09-01"), "Bob") != 0 {
		t.Fatalf("unexpected counts for 2025-09-01")
	}
	if grid.Count(date("2025-09-03"), "Alice") != 0 || grid.Count(date("2025-09-03"), "Bob") != 4 {
		t.Fatalf("unexpected counts for 2025-09-03")
	}

	if _, err := ParseVisitGridCSV(strings.NewReader("User,Alice\n")); err == nil {
		t.Fatalf("expected error without a Date column")
	}
	empty, err := ParseVisitGridCSV(strings.NewReader(""))
	if err != nil || !empty.IsEmpty() {
		t.Fatalf("expected empty grid for empty input, got %v", err)
	}
}
