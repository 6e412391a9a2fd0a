package reports

import (
	"time"

	"github.com/salesync/reports_backend/config"
	"github.com/salesync/reports_backend/utils"
)

const (
	TeamLeadVisitsSheet = "Daily Visits by Team Lead"
	// 2-Sep
	teamDateLayout = "2-Jan"
)

type TeamVisitRow struct {
	Date time.Time
	// Counts follows TeamVisitReport.Leads.
	Counts []int
	Total  int
}

// TeamVisitReport has one row per grid date with each team's visit sum.
type TeamVisitReport struct {
	Leads []string
	Rows  []TeamVisitRow
}

// AggregateTeamLeadVisits sums grid columns into teams. A roster member
// matches every grid user with the same normalized name; members with no
// column contribute zero.
func AggregateTeamLeadVisits(grid *VisitGrid, roster *config.TeamRoster) *TeamVisitReport {
	columnsByName := make(map[string][]string, len(grid.Users))
	for _, u := range grid.Users {
		norm := utils.NormalizeNameForMatch(u)
		columnsByName[norm] = append(columnsByName[norm], u)
	}

	teamColumns := make([][]string, len(roster.Leads))
	for i, lead := range roster.Leads {
		names := make([]string, 0, len(lead.Members))
		for _, member := range lead.Members {
			names = append(names, utils.NormalizeNameForMatch(member))
		}
		for _, norm := range utils.UniqueSlice(names) {
			teamColumns[i] = append(teamColumns[i], columnsByName[norm]...)
		}
	}

	report := &TeamVisitReport{
		Leads: roster.LeadOrder(),
		Rows:  make([]TeamVisitRow, 0, len(grid.Dates)),
	}
	for _, d := range grid.Dates {
		row := TeamVisitRow{Date: d, Counts: make([]int, len(teamColumns))}
		for i, cols := range teamColumns {
			for _, col := range cols {
				row.Counts[i] += grid.Count(d, col)
			}
			row.Total += row.Counts[i]
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

func (r *TeamVisitReport) Table() *Table {
	header := make([]string, 0, len(r.Leads)+2)
	header = append(header, "Date")
	header = append(header, r.Leads...)
	header = append(header, "Total")
	rows := make([][]interface{}, 0, len(r.Rows))
	for _, row := range r.Rows {
		cells := make([]interface{}, 0, len(row.Counts)+2)
		cells = append(cells, row.Date.Format(teamDateLayout))
		for _, n := range row.Counts {
			cells = append(cells, n)
		}
		cells = append(cells, row.Total)
		rows = append(rows, cells)
	}
	return &Table{SheetName: TeamLeadVisitsSheet, Header: header, Rows: rows}
}
