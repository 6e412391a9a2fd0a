package reports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/salesync/reports_backend/utils"
)

const (
	DailyVisitsSheet = "Daily Visits"
	// 2-Sep-25
	gridDateLayout = "2-Jan-06"
)

// VisitGrid is the dense date by user matrix of visit counts. Every date row
// has a value for every user; absent pairs are zero.
type VisitGrid struct {
	Users  []string
	Dates  []time.Time
	counts map[time.Time]map[string]int
}

// Count returns the visits of user on date, zero when absent.
func (g *VisitGrid) Count(date time.Time, user string) int {
	return g.counts[dateOnly(date)][user]
}

// UserTotal sums a user's column.
func (g *VisitGrid) UserTotal(user string) int {
	total := 0
	for _, d := range g.Dates {
		total += g.Count(d, user)
	}
	return total
}

func (g *VisitGrid) IsEmpty() bool {
	return len(g.Dates) == 0
}

// Table renders the grid with header Date followed by users.
func (g *VisitGrid) Table() *Table {
	header := make([]string, 0, len(g.Users)+1)
	header = append(header, "Date")
	header = append(header, g.Users...)
	rows := make([][]interface{}, 0, len(g.Dates))
	for _, d := range g.Dates {
		row := make([]interface{}, 0, len(g.Users)+1)
		row = append(row, d.Format(gridDateLayout))
		for _, u := range g.Users {
			row = append(row, g.Count(d, u))
		}
		rows = append(rows, row)
	}
	return &Table{SheetName: DailyVisitsSheet, Header: header, Rows: rows}
}

// VisitGridBuilder accumulates records in a single pass. Duplicate
// (user, date) records are summed.
type VisitGridBuilder struct {
	users  map[string]bool
	counts map[time.Time]map[string]int
}

func NewVisitGridBuilder() *VisitGridBuilder {
	return &VisitGridBuilder{
		users:  make(map[string]bool),
		counts: make(map[time.Time]map[string]int),
	}
}

// Add has the signature of an EachDailyVisit callback.
func (b *VisitGridBuilder) Add(rec DailyVisitRecord) error {
	d := dateOnly(rec.VisitDate)
	b.users[rec.UserName] = true
	byUser, ok := b.counts[d]
	if !ok {
		byUser = make(map[string]int)
		b.counts[d] = byUser
	}
	byUser[rec.UserName] += rec.TotalVisits
	return nil
}

func (b *VisitGridBuilder) Build() *VisitGrid {
	users := make([]string, 0, len(b.users))
	for u := range b.users {
		users = append(users, u)
	}
	sort.Strings(users)
	dates := make([]time.Time, 0, len(b.counts))
	for d := range b.counts {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	counts := make(map[time.Time]map[string]int, len(b.counts))
	for d, byUser := range b.counts {
		cp := make(map[string]int, len(byUser))
		for u, n := range byUser {
			cp[u] = n
		}
		counts[d] = cp
	}
	return &VisitGrid{Users: users, Dates: dates, counts: counts}
}

func BuildVisitGrid(records []DailyVisitRecord) *VisitGrid {
	b := NewVisitGridBuilder()
	for _, rec := range records {
		_ = b.Add(rec)
	}
	return b.Build()
}

// ParseVisitGridCSV reads a pivot written by VisitGrid.Table back into a
// grid. Dates are D-Mon-YY or YYYY-MM-DD; rows with other dates are skipped.
// Blank or non-numeric counts read as zero.
func ParseVisitGridCSV(r io.Reader) (*VisitGrid, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return NewVisitGridBuilder().Build(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pivot header: %w", err)
	}
	if len(header) == 0 || !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")), "Date") {
		return nil, errors.New("pivot csv must start with a Date column")
	}
	users := header[1:]
	b := NewVisitGridBuilder()
	for _, u := range users {
		b.users[u] = true
	}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read pivot row: %w", err)
		}
		date, ok := parseGridDate(rec[0])
		if !ok {
			continue
		}
		for i, u := range users {
			n := 0
			if i+1 < len(rec) {
				n, _ = strconv.Atoi(strings.TrimSpace(rec[i+1]))
			}
			_ = b.Add(DailyVisitRecord{UserName: u, VisitDate: date, TotalVisits: n})
		}
	}
	return b.Build(), nil
}

func parseGridDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{gridDateLayout, utils.DateLayout} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
