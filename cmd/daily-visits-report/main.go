// daily-visits-report writes the per user daily visit pivot as csv plus an
// xlsx sibling.
//
// Usage:
//
//	go run ./cmd/daily-visits-report -from 2025-09-01 -to 2025-09-30
//
// Without -out the file goes to $REPORTS_DIR/visit_details/daily_visits_<today>.csv.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/salesync/reports_backend/config"
	"github.com/salesync/reports_backend/models/reports"
)

func main() {
	from := flag.String("from", "", "first date (YYYY-MM-DD); default is the first check-in")
	to := flag.String("to", "", "last date, inclusive (YYYY-MM-DD)")
	out := flag.String("out", "", "csv output path")
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
	if err := config.ConnectDatabase(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect database: %v\n", err)
		os.Exit(1)
	}
	if err := config.ConnectRedis(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "redis unavailable, writing without lock: %v\n", err)
	}
	defer config.CloseRedis()

	logger := config.GetLogger()
	svc := reports.NewService(reports.NewSQLVisitSource(config.GetDB, config.SchemaOverridesFromEnv()), roster, logger)
	grid, err := svc.DailyVisitsGrid(ctx, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build report: %v\n", err)
		os.Exit(1)
	}

	csvPath := *out
	if csvPath == "" {
		dir, _ := reports.NewReportArchive(config.ReportsDir()).Dir(reports.ReportTypeDailyVisits)
		csvPath = filepath.Join(dir, reports.DailyVisitsFileName(time.Now()))
	}
	paths, err := reports.NewFileWriter(logger).WriteTable(ctx, csvPath, grid.Table(), reports.ReportFileInfo{
		ReportType: reports.ReportTypeDailyVisits,
		Range:      rng,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nWrote %d dates x %d users to %s\nExcel file saved: %s\n\n", len(grid.Dates), len(grid.Users), paths[0], paths[1])
}
