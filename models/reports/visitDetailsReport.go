package reports

import (
	"strings"
	"time"

	"github.com/salesync/reports_backend/config"
	"github.com/salesync/reports_backend/utils"
	"github.com/sirupsen/logrus"
)

const VisitDetailsSheet = "Visit Details"

var visitDetailsHeader = []string{"Team Lead", "Date", "Goldrush ID", "Cust Name"}

// VisitResponseRecord is one check-in with its raw survey payload.
type VisitResponseRecord struct {
	UserName  string
	VisitDate time.Time
	Responses string
}

type VisitDetailRow struct {
	TeamLead     string
	VisitDate    time.Time
	CustomerID   string
	CustomerName string
}

func (r VisitDetailRow) cells() []interface{} {
	return []interface{}{r.TeamLead, r.VisitDate.Format(teamDateLayout), r.CustomerID, r.CustomerName}
}

// LeadSlug is the URL and file name form of a lead key, e.g.
// "068 641 1128" -> "068-641-1128".
func LeadSlug(lead string) string {
	return strings.ReplaceAll(utils.NormalizeNameForMatch(lead), " ", "-")
}

// VisitDetailsReport holds visit detail rows per team lead, in roster order.
type VisitDetailsReport struct {
	Leads []string
	rows  map[string][]VisitDetailRow
}

func (r *VisitDetailsReport) RowsFor(lead string) []VisitDetailRow {
	return r.rows[lead]
}

// LeadForSlug finds the lead whose slug is slug.
func (r *VisitDetailsReport) LeadForSlug(slug string) (string, bool) {
	return leadForSlug(r.Leads, slug)
}

func leadForSlug(leads []string, slug string) (string, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, lead := range leads {
		if LeadSlug(lead) == slug {
			return lead, true
		}
	}
	return "", false
}

func (r *VisitDetailsReport) LeadTable(lead string) *Table {
	rows := r.rows[lead]
	t := &Table{SheetName: VisitDetailsSheet, Header: visitDetailsHeader, Rows: make([][]interface{}, 0, len(rows))}
	for _, row := range rows {
		t.Rows = append(t.Rows, row.cells())
	}
	return t
}

// CombinedTable has every lead's rows under one header, leads in roster
// order.
func (r *VisitDetailsReport) CombinedTable() *Table {
	t := &Table{SheetName: VisitDetailsSheet, Header: visitDetailsHeader}
	for _, lead := range r.Leads {
		for _, row := range r.rows[lead] {
			t.Rows = append(t.Rows, row.cells())
		}
	}
	return t
}

// VisitDetailsBuilder assigns response records to team leads by normalized
// user name and extracts customer fields. Users outside the roster are
// dropped.
type VisitDetailsBuilder struct {
	leads      []string
	userToLead map[string]string
	rows       map[string][]VisitDetailRow
	logger     *logrus.Logger
}

func NewVisitDetailsBuilder(roster *config.TeamRoster, logger *logrus.Logger) *VisitDetailsBuilder {
	b := &VisitDetailsBuilder{
		leads:      roster.LeadOrder(),
		userToLead: make(map[string]string),
		rows:       make(map[string][]VisitDetailRow, len(roster.Leads)),
		logger:     logger,
	}
	for _, lead := range roster.Leads {
		for _, member := range lead.Members {
			norm := utils.NormalizeNameForMatch(member)
			if _, ok := b.userToLead[norm]; !ok {
				b.userToLead[norm] = lead.Key
			}
		}
	}
	return b
}

// Add has the signature of an EachVisitResponse callback. Malformed payloads
// keep the row with empty customer fields.
func (b *VisitDetailsBuilder) Add(rec VisitResponseRecord) error {
	if strings.TrimSpace(rec.Responses) == "" {
		return nil
	}
	lead, ok := b.userToLead[utils.NormalizeNameForMatch(rec.UserName)]
	if !ok {
		return nil
	}
	flat, err := FlattenResponsesJSON(rec.Responses)
	if err != nil && b.logger != nil {
		b.logger.WithFields(logrus.Fields{
			"module": "reports",
			"user":   rec.UserName,
		}).Debug("unparseable visit response: " + err.Error())
	}
	id, name := ExtractCustomerFields(flat)
	b.rows[lead] = append(b.rows[lead], VisitDetailRow{
		TeamLead:     lead,
		VisitDate:    dateOnly(rec.VisitDate),
		CustomerID:   id,
		CustomerName: name,
	})
	return nil
}

func (b *VisitDetailsBuilder) Build() *VisitDetailsReport {
	rows := make(map[string][]VisitDetailRow, len(b.rows))
	for lead, r := range b.rows {
		rows[lead] = append([]VisitDetailRow(nil), r...)
	}
	return &VisitDetailsReport{Leads: append([]string(nil), b.leads...), rows: rows}
}

const visitDetailsSQL = `
SELECT
    {{.nameExpr}} AS user_name,
    DATE(c.{{.timeCol}}) AS visit_date,
    vr.{{.responsesCol}} AS responses
FROM
    {{.usersTable}} AS u
    JOIN {{.checkinsTable}} AS c ON c.{{.userIdCol}} = u.{{.usersPk}}
    JOIN {{.vrTable}} AS vr ON vr.{{.vrCheckinIdCol}} = c.{{.checkinsPk}}
WHERE
    vr.{{.responsesCol}} IS NOT NULL
    AND vr.{{.responsesCol}} <> ''
    {{- if .hasStart }} AND DATE(c.{{.timeCol}}) >= @startDate {{- end }}
    {{- if .hasEnd }} AND DATE(c.{{.timeCol}}) <= @endDate {{- end }}
ORDER BY
    DATE(c.{{.timeCol}}) ASC,
    c.{{.checkinsPk}} ASC`

// BuildVisitDetailsQuery renders the check-in plus payload query. The schema
// must have been inspected with responses.
func BuildVisitDetailsQuery(schema *VisitSchema, rng DateRange) (string, map[string]interface{}, error) {
	if !schema.HasVisitResponse() || schema.ResponsesColumn == "" {
		return "", nil, ErrVisitResponseTableMissing
	}
	sql, err := utils.ExecTemplate(visitDetailsSQL, map[string]interface{}{
		"nameExpr":       schema.UsersNameExpr,
		"timeCol":        quoteIdentifier(schema.Checkins.Time),
		"checkinsPk":     quoteIdentifier(schema.Checkins.PK),
		"usersTable":     quoteIdentifier(schema.UsersTable),
		"usersPk":        quoteIdentifier(schema.UsersPK),
		"checkinsTable":  quoteIdentifier(schema.CheckinsTable),
		"userIdCol":      quoteIdentifier(schema.Checkins.UserID),
		"vrTable":        quoteIdentifier(schema.VisitResponseTable),
		"vrCheckinIdCol": quoteIdentifier(schema.VisitResponseCheckinID),
		"responsesCol":   quoteIdentifier(schema.ResponsesColumn),
		"hasStart":       rng.Start != nil,
		"hasEnd":         rng.End != nil,
	})
	if err != nil {
		return "", nil, err
	}
	return sql, map[string]interface{}{
		"startDate": formatDateParam(rng.Start),
		"endDate":   formatDateParam(rng.End),
	}, nil
}
