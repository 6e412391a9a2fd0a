package reports

import (
	"strings"
	"testing"

	"github.com/salesync/reports_backend/config"
)

func TestLeadSlug(t *testing.T) {
	cases := map[string]string{
		"068 641 1128":     "068-641-1128",
		"  Lead  One (x) ": "lead-one",
	}
	for in, expected := range cases {
		if got := LeadSlug(in); got != expected {
			t.Fatalf("LeadSlug(%q) expected %q, got %q", in, expected, got)
		}
	}
}

func TestVisitDetailsBuilder(t *testing.T) {
	b := NewVisitDetailsBuilder(testRoster(), config.GetLogger())
	records := []VisitResponseRecord{
		{UserName: "Carol", VisitDate: date("2025-09-01"), Responses: `{"goldrush id": "GR-1", "customer name": "Thandi"}`},
		{UserName: "alice (temp)", VisitDate: date("2025-09-02"), Responses: `[{"name":"GoldrushID","value":"123"},{"name":"Surname","value":"Smith"}]`},
		{UserName: "Alice", VisitDate: date("2025-09-03"), Responses: `{broken`},
		{UserName: "Bob", VisitDate: date("2025-09-03"), Responses: "   "},
		{UserName: "Stranger", VisitDate: date("2025-09-03"), Responses: `{"goldrush id": "GR-9"}`},
	}
	for _, rec := range records {
		if err := b.Add(rec); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	report := b.Build()

	if strings.Join(report.Leads, ",") != "Zulu,Alpha" {
		t.Fatalf("unexpected leads %v", report.Leads)
	}
	zulu := report.RowsFor("Zulu")
	if len(zulu) != 2 {
		t.Fatalf("expected 2 Zulu rows (blank payload dropped), got %+v", zulu)
	}
	if zulu[0].CustomerID != "123" || zulu[0].CustomerName != "Smith" {
		t.Fatalf("unexpected first Zulu row %+v", zulu[0])
	}
	if zulu[1].CustomerID != "" || zulu[1].CustomerName != "" {
		t.Fatalf("expected empty fields for malformed payload, got %+v", zulu[1])
	}
	alpha := report.RowsFor("Alpha")
	if len(alpha) != 1 || alpha[0].CustomerID != "GR-1" || alpha[0].CustomerName != "Thandi" {
		t.Fatalf("unexpected Alpha rows %+v", alpha)
	}

	lead, ok := report.LeadForSlug("ZULU")
	if !ok || lead != "Zulu" {
		t.Fatalf("expected slug lookup to find Zulu, got %q %v", lead, ok)
	}
	if _, ok := report.LeadForSlug("nobody"); ok {
		t.Fatalf("expected unknown slug to miss")
	}

	table := report.LeadTable("Alpha")
	if strings.Join(table.Header, ",") != "Team Lead,Date,Goldrush ID,Cust Name" {
		t.Fatalf("unexpected header %v", table.Header)
	}
	if len(table.Rows) != 1 || table.Rows[0][0] != "Alpha" || table.Rows[0][1] != "1-Sep" {
		t.Fatalf("unexpected Alpha table %v", table.Rows)
	}

	combined := report.CombinedTable()
	if combined.SheetName != VisitDetailsSheet || len(combined.Rows) != 3 {
		t.Fatalf("unexpected combined table %v", combined.Rows)
	}
	// Zulu comes first in roster order.
	if combined.Rows[0][0] != "Zulu" || combined.Rows[2][0] != "Alpha" {
		t.Fatalf("expected roster order in combined table, got %v", combined.Rows)
	}
}

func TestVisitDetailsBuilder_EmptyLeadTable(t *testing.T) {
	report := NewVisitDetailsBuilder(testRoster(), nil).Build()
	table := report.LeadTable("Zulu")
	if len(table.Rows) != 0 || len(table.Header) != 4 {
		t.Fatalf("expected header only table, got %v", table.Rows)
	}
}

func TestBuildVisitDetailsQuery(t *testing.T) {
	schema := sampleSchema()
	if _, _, err := BuildVisitDetailsQuery(schema, DateRange{}); err == nil {
		t.Fatalf("expected error without a visit response table")
	}
	schema.VisitResponseTable = "visit_responses"
	schema.VisitResponseCheckinID = "checkin_id"
	schema.ResponsesColumn = "responses"

	sql, params, err := BuildVisitDetailsQuery(schema, DateRange{Start: datePtr("2025-09-01")})
	if err != nil {
		t.Fatalf("BuildVisitDetailsQuery: %v", err)
	}
	for _, want := range []string{
		"vr.`responses` AS responses",
		"JOIN `visit_responses` AS vr ON vr.`checkin_id` = c.`id`",
		"vr.`responses` IS NOT NULL",
		"AND vr.`responses` <> ''",
		"AND DATE(c.`timestamp`) >= @startDate",
		"DATE(c.`timestamp`) ASC,\n    c.`id` ASC",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("expected query to contain %q, got:\n%s", want, sql)
		}
	}
	if strings.Contains(sql, "@endDate") {
		t.Fatalf("expected no end filter:\n%s", sql)
	}
	if params["startDate"] != "2025-09-01" {
		t.Fatalf("unexpected params %v", params)
	}
}
