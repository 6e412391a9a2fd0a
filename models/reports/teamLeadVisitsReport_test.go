package reports

import (
	"bytes"
	"strings"
	"testing"

	"github.com/salesync/reports_backend/config"
)

func testRoster() *config.TeamRoster {
	return &config.TeamRoster{Leads: []config.TeamLead{
		{Key: "Zulu", Members: []string{"Alice", "Bob"}},
		{Key: "Alpha", Members: []string{"Carol", "Dave"}},
	}}
}

func TestAggregateTeamLeadVisits(t *testing.T) {
	grid := BuildVisitGrid([]DailyVisitRecord{
		{UserName: "Alice", VisitDate: date("2025-09-01"), TotalVisits: 2},
		{UserName: "bob (temp)", VisitDate: date("2025-09-01"), TotalVisits: 1},
		{UserName: "Carol", VisitDate: date("2025-09-02"), TotalVisits: 4},
		{UserName: "Stranger", VisitDate: date("2025-09-02"), TotalVisits: 7},
	})
	report := AggregateTeamLeadVisits(grid, testRoster())

	// Roster order, not alphabetical.
	if strings.Join(report.Leads, ",") != "Zulu,Alpha" {
		t.Fatalf("unexpected lead order %v", report.Leads)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("expected one row per grid date, got %d", len(report.Rows))
	}
	first, second := report.Rows[0], report.Rows[1]
	if first.Counts[0] != 3 || first.Counts[1] != 0 || first.Total != 3 {
		t.Fatalf("unexpected first row %+v", first)
	}
	if second.Counts[0] != 0 || second.Counts[1] != 4 || second.Total != 4 {
		t.Fatalf("unexpected second row %+v", second)
	}
	for _, row := range report.Rows {
		sum := 0
		for _, n := range row.Counts {
			sum += n
		}
		if sum != row.Total {
			t.Fatalf("Total %d does not match team sum %d", row.Total, sum)
		}
	}

	table := report.Table()
	if table.SheetName != TeamLeadVisitsSheet {
		t.Fatalf("unexpected sheet %s", table.SheetName)
	}
	if strings.Join(table.Header, ",") != "Date,Zulu,Alpha,Total" {
		t.Fatalf("unexpected header %v", table.Header)
	}
	if table.Rows[0][0] != "1-Sep" || table.Rows[1][0] != "2-Sep" {
		t.Fatalf("unexpected date cells %v %v", table.Rows[0][0], table.Rows[1][0])
	}
}

func TestAggregateTeamLeadVisits_EndToEnd(t *testing.T) {
	grid := BuildVisitGrid([]DailyVisitRecord{
		{UserName: "069 067 6463", VisitDate: date("2025-09-02"), TotalVisits: 1},
		{UserName: "069 067 6463", VisitDate: date("2025-09-03"), TotalVisits: 2},
	})
	data, err := AggregateTeamLeadVisits(grid, config.DefaultTeamRoster()).Table().CSVBytes()
	if err != nil {
		t.Fatalf("CSVBytes: %v", err)
	}
	expected := "Date,068 641 1128,069 043 3247,069 068 2819,069 066 2955,Total\r\n" +
		"2-Sep,1,0,0,0,1\r\n" +
		"3-Sep,2,0,0,0,2\r\n"
	if string(data) != expected {
		t.Fatalf("expected %q, got %q", expected, data)
	}
}

func TestAggregateTeamLeadVisits_CSVRoundTripMatchesDirect(t *testing.T) {
	records := []DailyVisitRecord{
		{UserName: "Alice", VisitDate: date("2025-09-01"), TotalVisits: 2},
		{UserName: "Dave", VisitDate: date("2025-09-01"), TotalVisits: 5},
		{UserName: "Bob", VisitDate: date("2025-09-03"), TotalVisits: 1},
	}
	grid := BuildVisitGrid(records)
	direct := AggregateTeamLeadVisits(grid, testRoster())

	data, err := grid.Table().CSVBytes()
	if err != nil {
		t.Fatalf("CSVBytes: %v", err)
	}
	parsed, err := ParseVisitGridCSV(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ParseVisitGridCSV: %v", err)
	}
	viaCSV := AggregateTeamLeadVisits(parsed, testRoster())

	if len(direct.Rows) != len(viaCSV.Rows) {
		t.Fatalf("row count mismatch %d vs %d", len(direct.Rows), len(viaCSV.Rows))
	}
	for i := range direct.Rows {
		a, b := direct.Rows[i], viaCSV.Rows[i]
		if !a.Date.Equal(b.Date) || a.Total != b.Total {
			t.Fatalf("row %d mismatch %+v vs %+v", i, a, b)
		}
		for j := range a.Counts {
			if a.Counts[j] != b.Counts[j] {
				t.Fatalf("row %d team %d mismatch %d vs %d", i, j, a.Counts[j], b.Counts[j])
			}
		}
	}
}

func TestAggregateTeamLeadVisits_EmptyGrid(t *testing.T) {
	table := AggregateTeamLeadVisits(BuildVisitGrid(nil), testRoster()).Table()
	if len(table.Rows) != 0 || len(table.Header) != 4 {
		t.Fatalf("expected header only, got %v %v", table.Header, table.Rows)
	}
}
