// team-lead-visits-report prints visits per team lead per date as tab
// separated text.
//
// Usage:
//
//	go run ./cmd/team-lead-visits-report -from 2025-09-01 -to 2025-09-30 [-write]
//	go run ./cmd/team-lead-visits-report -input reports/visit_details/daily_visits_2025-09-30.csv
//
// -input reads an existing daily pivot csv instead of the database. -write
// also stores team_lead_daily_visits_<today>.csv/.xlsx in the archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/salesync/reports_backend/config"
	"github.com/salesync/reports_backend/models/reports"
)

func loadGrid(ctx context.Context, input string, rng reports.DateRange, roster *config.TeamRoster) (*reports.VisitGrid, error) {
	if input != "" {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("input file not found: %s (run daily-visits-report first): %w", input, err)
		}
		defer f.Close()
		return reports.ParseVisitGridCSV(f)
	}
	if err := config.ConnectDatabase(); err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	svc := reports.NewService(reports.NewSQLVisitSource(config.GetDB, config.SchemaOverridesFromEnv()), roster, config.GetLogger())
	return svc.DailyVisitsGrid(ctx, rng)
}

func tsvRow(row []interface{}) string {
	cells := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case int:
			cells[i] = strconv.Itoa(x)
		default:
			cells[i] = fmt.Sprint(x)
		}
	}
	return strings.Join(cells, "\t")
}

func main() {
	from := flag.String("from", "", "first date (YYYY-MM-DD); default is the first check-in")
	to := flag.String("to", "", "last date, inclusive (YYYY-MM-DD)")
	input := flag.String("input", "", "daily visits pivot csv to read instead of the database")
	write := flag.Bool("write", false, "also write csv and xlsx files to the report archive")
	flag.Parse()

	rng, err := reports.ParseDateRangeStrict(*from, *to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	roster, err := config.TeamRosterFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	grid, err := loadGrid(ctx, *input, rng, roster)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	table := reports.AggregateTeamLeadVisits(grid, roster).Table()

	fmt.Println(strings.Join(table.Header, "\t"))
	for _, row := range table.Rows {
		fmt.Println(tsvRow(row))
	}

	if !*write {
		return
	}
	if err := config.ConnectRedis(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "redis unavailable, writing without lock: %v\n", err)
	}
	defer config.CloseRedis()
	dir, _ := reports.NewReportArchive(config.ReportsDir()).Dir(reports.ReportTypeTeamLeadVisits)
	csvPath := filepath.Join(dir, reports.TeamLeadVisitsFileName(time.Now()))
	paths, err := reports.NewFileWriter(config.GetLogger()).WriteTable(ctx, csvPath, table, reports.ReportFileInfo{
		ReportType: reports.ReportTypeTeamLeadVisits,
		Range:      rng,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\nWrote files:\n%s\n", strings.Join(paths, "\n"))
}
