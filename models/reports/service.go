package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/salesync/reports_backend/config"
	"github.com/salesync/reports_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/salesync/reports_backend/models/reports")

// Service builds every report from one VisitSource and team roster.
type Service struct {
	source VisitSource
	roster *config.TeamRoster
	logger *logrus.Logger
}

func NewService(source VisitSource, roster *config.TeamRoster, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = config.GetLogger()
	}
	return &Service{source: source, roster: roster, logger: logger}
}

func (s *Service) Roster() *config.TeamRoster {
	return s.roster
}

func startSpan(ctx context.Context, name string, rng DateRange) (context.Context, trace.Span) {
	ctx = utils.SetReportNameInContext(ctx, name)
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("report.start_date", formatDateParam(rng.Start)),
		attribute.String("report.end_date", formatDateParam(rng.End)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) DailyVisitsGrid(ctx context.Context, rng DateRange) (grid *VisitGrid, err error) {
	ctx, span := startSpan(ctx, "reports.DailyVisitsGrid", rng)
	defer func() { endSpan(span, err) }()
	defer logSlowReport(ctx, s.logger, "daily_visits", time.Now(), rng)

	b := NewVisitGridBuilder()
	if err = s.source.EachDailyVisit(ctx, rng, b.Add); err != nil {
		config.LogError(s.logger, "reports", "DailyVisitsGrid", "aggregating daily visits", rng, err)
		return nil, err
	}
	grid = b.Build()
	config.LoggerWithContext(ctx, s.logger).WithFields(logrus.Fields{
		"users": len(grid.Users),
		"dates": len(grid.Dates),
	}).Debug("daily visit grid built")
	return grid, nil
}

func (s *Service) DailyVisitsCSV(ctx context.Context, rng DateRange) ([]byte, error) {
	return cachedReportBytes(ctx, s.logger, "daily_visits_csv", rng, func() ([]byte, error) {
		grid, err := s.DailyVisitsGrid(ctx, rng)
		if err != nil {
			return nil, err
		}
		return grid.Table().CSVBytes()
	})
}

func (s *Service) DailyVisitsXLSX(ctx context.Context, rng DateRange) ([]byte, error) {
	return cachedReportBytes(ctx, s.logger, "daily_visits_xlsx", rng, func() ([]byte, error) {
		grid, err := s.DailyVisitsGrid(ctx, rng)
		if err != nil {
			return nil, err
		}
		return grid.Table().XLSXBytes()
	})
}

func (s *Service) TeamLeadVisits(ctx context.Context, rng DateRange) (*TeamVisitReport, error) {
	grid, err := s.DailyVisitsGrid(ctx, rng)
	if err != nil {
		return nil, err
	}
	_, span := startSpan(ctx, "reports.AggregateTeamLeadVisits", rng)
	defer span.End()
	return AggregateTeamLeadVisits(grid, s.roster), nil
}

// TeamLeadVisitsCSV never fails: errors become a single Error row.
func (s *Service) TeamLeadVisitsCSV(ctx context.Context, rng DateRange) []byte {
	data, err := cachedReportBytes(ctx, s.logger, "team_lead_visits_csv", rng, func() ([]byte, error) {
		report, err := s.TeamLeadVisits(ctx, rng)
		if err != nil {
			return nil, err
		}
		return report.Table().CSVBytes()
	})
	if err != nil {
		config.LogError(s.logger, "reports", "TeamLeadVisitsCSV", "generating team lead csv", rng, err)
		return errorCSV(err)
	}
	return data
}

// TeamLeadVisitsXLSX never fails: errors become an Error sheet.
func (s *Service) TeamLeadVisitsXLSX(ctx context.Context, rng DateRange) []byte {
	data, err := cachedReportBytes(ctx, s.logger, "team_lead_visits_xlsx", rng, func() ([]byte, error) {
		report, err := s.TeamLeadVisits(ctx, rng)
		if err != nil {
			return nil, err
		}
		return report.Table().XLSXBytes()
	})
	if err != nil {
		config.LogError(s.logger, "reports", "TeamLeadVisitsXLSX", "generating team lead xlsx", rng, err)
		return errorXLSX(err)
	}
	return data
}

func (s *Service) VisitDetails(ctx context.Context, rng DateRange) (report *VisitDetailsReport, err error) {
	ctx, span := startSpan(ctx, "reports.VisitDetails", rng)
	defer func() { endSpan(span, err) }()
	defer logSlowReport(ctx, s.logger, "visit_details", time.Now(), rng)

	b := NewVisitDetailsBuilder(s.roster, s.logger)
	if err = s.source.EachVisitResponse(ctx, rng, b.Add); err != nil {
		config.LogError(s.logger, "reports", "VisitDetails", "extracting visit details", rng, err)
		return nil, err
	}
	return b.Build(), nil
}

func (s *Service) VisitDetailsCSV(ctx context.Context, rng DateRange) ([]byte, error) {
	return cachedReportBytes(ctx, s.logger, "visit_details_csv", rng, func() ([]byte, error) {
		report, err := s.VisitDetails(ctx, rng)
		if err != nil {
			return nil, err
		}
		return report.CombinedTable().CSVBytes()
	})
}

func (s *Service) VisitDetailsXLSX(ctx context.Context, rng DateRange) ([]byte, error) {
	return cachedReportBytes(ctx, s.logger, "visit_details_xlsx", rng, func() ([]byte, error) {
		report, err := s.VisitDetails(ctx, rng)
		if err != nil {
			return nil, err
		}
		return report.CombinedTable().XLSXBytes()
	})
}

// VisitDetailsLeadXLSX renders one lead's rows. Unknown slugs wrap
// ErrUnknownTeamLead.
func (s *Service) VisitDetailsLeadXLSX(ctx context.Context, rng DateRange, slug string) ([]byte, error) {
	lead, ok := leadForSlug(s.roster.LeadOrder(), slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeamLead, slug)
	}
	report, err := s.VisitDetails(ctx, rng)
	if err != nil {
		return nil, err
	}
	return report.LeadTable(lead).XLSXBytes()
}
