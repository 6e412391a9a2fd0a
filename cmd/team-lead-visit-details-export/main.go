// team-lead-visit-details-export writes one visit details csv and xlsx per
// team lead.
//
// Usage:
//
//	go run ./cmd/team-lead-visit-details-export -from 2025-09-01 -to 2025-09-30 [-out-dir dir]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/salesync/reports_backend/config"
	"github.com/salesync/reports_backend/models/reports"
)

func main() {
	from := flag.String("from", "", "first date (YYYY-MM-DD); default is the first check-in")
	to := flag.String("to", "", "last date, inclusive (YYYY-MM-DD)")
	outDir := flag.String("out-dir", "", "output directory (default $REPORTS_DIR/team-lead_visits_details_export)")
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
	report, err := svc.VisitDetails(ctx, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build report: %v\n", err)
		os.Exit(1)
	}

	dir := *outDir
	if dir == "" {
		dir, _ = reports.NewReportArchive(config.ReportsDir()).Dir(reports.ReportTypeTeamLeadVisitDetails)
	}
	writer := reports.NewFileWriter(logger)
	var written []string
	for _, lead := range report.Leads {
		csvPath := filepath.Join(dir, reports.VisitDetailsFileName(lead))
		paths, err := writer.WriteTable(ctx, csvPath, report.LeadTable(lead), reports.ReportFileInfo{
			ReportType: reports.ReportTypeTeamLeadVisitDetails,
			Range:      rng,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to write report for %s: %v\n", lead, err)
			os.Exit(1)
		}
		written = append(written, paths...)
	}
	fmt.Println("\nWrote files:\n" + strings.Join(written, "\n"))
}
