package reports

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/salesync/reports_backend/config"
)

// fakeSource replays fixed records, or fails with err.
type fakeSource struct {
	daily     []DailyVisitRecord
	responses []VisitResponseRecord
	err       error
	// lastRange is the range of the most recent call.
	lastRange DateRange
}

func (f *fakeSource) EachDailyVisit(_ context.Context, rng DateRange, fn func(DailyVisitRecord) error) error {
	f.lastRange = rng
	if f.err != nil {
		return f.err
	}
	for _, rec := range f.daily {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSource) EachVisitResponse(_ context.Context, rng DateRange, fn func(VisitResponseRecord) error) error {
	f.lastRange = rng
	if f.err != nil {
		return f.err
	}
	for _, rec := range f.responses {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func TestService_TeamLeadVisitsEndToEnd(t *testing.T) {
	source := &fakeSource{daily: []DailyVisitRecord{
		{UserName: "069 067 6463", VisitDate: date("2025-09-02"), TotalVisits: 1},
		{UserName: "069 067 6463", VisitDate: date("2025-09-03"), TotalVisits: 2},
	}}
	svc := NewService(source, config.DefaultTeamRoster(), nil)

	rng := DateRange{Start: datePtr("2025-09-01"), End: datePtr("2025-09-30")}
	data := svc.TeamLeadVisitsCSV(context.Background(), rng)
	expected := "Date,068 641 1128,069 043 3247,069 068 2819,069 066 2955,Total\r\n" +
		"2-Sep,1,0,0,0,1\r\n" +
		"3-Sep,2,0,0,0,2\r\n"
	if string(data) != expected {
		t.Fatalf("expected %q, got %q", expected, data)
	}
	if formatDateParam(source.lastRange.Start) != "2025-09-01" || formatDateParam(source.lastRange.End) != "2025-09-30" {
		t.Fatalf("range not passed to source: %+v", source.lastRange)
	}

	f := openWorkbook(t, svc.TeamLeadVisitsXLSX(context.Background(), rng))
	rows, err := f.GetRows(TeamLeadVisitsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "2-Sep" || rows[2][1] != "2" || rows[2][5] != "2" {
		t.Fatalf("unexpected workbook rows %v", rows)
	}
}

func TestService_UnmatchedUserStaysInDailyPivotOnly(t *testing.T) {
	source := &fakeSource{
		daily: []DailyVisitRecord{
			{UserName: "069 067 6463", VisitDate: date("2025-09-02"), TotalVisits: 1},
			{UserName: "071 000 0000", VisitDate: date("2025-09-02"), TotalVisits: 3},
		},
		responses: []VisitResponseRecord{
			{UserName: "069 067 6463", VisitDate: date("2025-09-02"), Responses: `{"goldrush id": "GR-1"}`},
			{UserName: "071 000 0000", VisitDate: date("2025-09-02"), Responses: `{"goldrush id": "GR-2"}`},
		},
	}
	svc := NewService(source, config.DefaultTeamRoster(), nil)
	ctx := context.Background()

	grid, err := svc.DailyVisitsGrid(ctx, DateRange{})
	if err != nil {
		t.Fatalf("DailyVisitsGrid: %v", err)
	}
	if strings.Join(grid.Users, ",") != "069 067 6463,071 000 0000" {
		t.Fatalf("expected both users in the pivot, got %v", grid.Users)
	}

	report, err := svc.VisitDetails(ctx, DateRange{})
	if err != nil {
		t.Fatalf("VisitDetails: %v", err)
	}
	total := 0
	for _, lead := range report.Leads {
		for _, row := range report.RowsFor(lead) {
			total++
			if row.CustomerID == "GR-2" {
				t.Fatalf("unmatched user leaked into lead %s", lead)
			}
		}
	}
	if total != 1 {
		t.Fatalf("expected one matched row, got %d", total)
	}

	team, err := svc.TeamLeadVisits(ctx, DateRange{})
	if err != nil {
		t.Fatalf("TeamLeadVisits: %v", err)
	}
	if team.Rows[0].Total != 1 {
		t.Fatalf("expected unmatched visits excluded from team totals, got %d", team.Rows[0].Total)
	}
}

func TestService_FailuresDegradeForTeamReports(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("connection refused")}, config.DefaultTeamRoster(), nil)
	ctx := context.Background()

	csv := string(svc.TeamLeadVisitsCSV(ctx, DateRange{}))
	if csv != "Error,Failed to generate report: connection refused\r\n" {
		t.Fatalf("unexpected degraded csv %q", csv)
	}

	f := openWorkbook(t, svc.TeamLeadVisitsXLSX(ctx, DateRange{}))
	rows, err := f.GetRows("Error")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "connection refused" {
		t.Fatalf("unexpected degraded workbook %v", rows)
	}

	if _, err := svc.DailyVisitsCSV(ctx, DateRange{}); err == nil {
		t.Fatalf("expected daily csv to propagate the error")
	}
	if _, err := svc.VisitDetailsXLSX(ctx, DateRange{}); err == nil {
		t.Fatalf("expected visit details xlsx to propagate the error")
	}
}

func TestService_VisitDetailsFiles(t *testing.T) {
	source := &fakeSource{responses: []VisitResponseRecord{
		{UserName: "069 067 6463", VisitDate: date("2025-09-02"), Responses: `{"goldrush id": "GR-1", "customer name": "Thandi"}`},
		{UserName: "063 901 9701", VisitDate: date("2025-09-03"), Responses: `{"goldrush id": "GR-2"}`},
	}}
	svc := NewService(source, config.DefaultTeamRoster(), nil)
	ctx := context.Background()

	data, err := svc.VisitDetailsCSV(ctx, DateRange{})
	if err != nil {
		t.Fatalf("VisitDetailsCSV: %v", err)
	}
	expected := "Team Lead,Date,Goldrush ID,Cust Name\r\n" +
		"068 641 1128,2-Sep,GR-1,Thandi\r\n" +
		"069 043 3247,3-Sep,GR-2,\r\n"
	if string(data) != expected {
		t.Fatalf("expected %q, got %q", expected, data)
	}

	xlsx, err := svc.VisitDetailsLeadXLSX(ctx, DateRange{}, "069-043-3247")
	if err != nil {
		t.Fatalf("VisitDetailsLeadXLSX: %v", err)
	}
	rows, err := openWorkbook(t, xlsx).GetRows(VisitDetailsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[1][2] != "GR-2" {
		t.Fatalf("unexpected lead workbook %v", rows)
	}

	source.err = errors.New("must not query")
	if _, err := svc.VisitDetailsLeadXLSX(ctx, DateRange{}, "no-such-lead"); !errors.Is(err, ErrUnknownTeamLead) {
		t.Fatalf("expected ErrUnknownTeamLead, got %v", err)
	}
}
