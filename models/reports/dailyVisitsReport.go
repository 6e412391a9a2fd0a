package reports

import (
	"time"

	"github.com/salesync/reports_backend/utils"
)

// DateRange is an inclusive range of calendar dates. A nil bound is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ParseDateRange parses YYYY-MM-DD bounds; malformed values are treated as
// absent.
func ParseDateRange(start, end string) DateRange {
	return DateRange{
		Start: utils.ParseDateLenient(start),
		End:   utils.ParseDateLenient(end),
	}
}

// ParseDateRangeStrict is ParseDateRange that rejects malformed values.
func ParseDateRangeStrict(start, end string) (DateRange, error) {
	s, err := utils.ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := utils.ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}

// DailyVisitRecord is one user's visit count for one date.
type DailyVisitRecord struct {
	UserName    string
	VisitDate   time.Time
	TotalVisits int
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDateParam(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(utils.DateLayout)
}

const earliestCheckinSQL = `SELECT DATE(MIN({{.timeCol}})) AS earliest FROM {{.checkinsTable}}`

const dailyVisitsSQL = `
SELECT
    {{.nameExpr}} AS user_name,
    DATE(c.{{.timeCol}}) AS visit_date,
    COUNT(DISTINCT c.{{.checkinsPk}}) AS total_visits
FROM
    {{.usersTable}} AS u
    JOIN {{.checkinsTable}} AS c ON c.{{.userIdCol}} = u.{{.usersPk}}
    {{- if .vrTable }}
    LEFT JOIN {{.vrTable}} AS vr ON vr.{{.vrCheckinIdCol}} = c.{{.checkinsPk}}
    {{- end }}
WHERE
    1 = 1
    {{- if .hasStart }} AND DATE(c.{{.timeCol}}) >= @startDate {{- end }}
    {{- if .hasEnd }} AND DATE(c.{{.timeCol}}) <= @endDate {{- end }}
GROUP BY
    {{.nameExpr}},
    DATE(c.{{.timeCol}})
ORDER BY
    {{.nameExpr}} ASC,
    DATE(c.{{.timeCol}}) ASC`

// BuildEarliestCheckinQuery renders the lookup of the first check-in date.
func BuildEarliestCheckinQuery(schema *VisitSchema) (string, error) {
	return utils.ExecTemplate(earliestCheckinSQL, map[string]interface{}{
		"timeCol":       quoteIdentifier(schema.Checkins.Time),
		"checkinsTable": quoteIdentifier(schema.CheckinsTable),
	})
}

// BuildDailyVisitsQuery renders the per user, per date count query and its
// named parameters.
func BuildDailyVisitsQuery(schema *VisitSchema, rng DateRange) (string, map[string]interface{}, error) {
	data := map[string]interface{}{
		"nameExpr":      schema.UsersNameExpr,
		"timeCol":       quoteIdentifier(schema.Checkins.Time),
		"checkinsPk":    quoteIdentifier(schema.Checkins.PK),
		"usersTable":    quoteIdentifier(schema.UsersTable),
		"usersPk":       quoteIdentifier(schema.UsersPK),
		"checkinsTable": quoteIdentifier(schema.CheckinsTable),
		"userIdCol":     quoteIdentifier(schema.Checkins.UserID),
		"hasStart":      rng.Start != nil,
		"hasEnd":        rng.End != nil,
	}
	if schema.HasVisitResponse() {
		data["vrTable"] = quoteIdentifier(schema.VisitResponseTable)
		data["vrCheckinIdCol"] = quoteIdentifier(schema.VisitResponseCheckinID)
	}
	sql, err := utils.ExecTemplate(dailyVisitsSQL, data)
	if err != nil {
		return "", nil, err
	}
	return sql, map[string]interface{}{
		"startDate": formatDateParam(rng.Start),
		"endDate":   formatDateParam(rng.End),
	}, nil
}
