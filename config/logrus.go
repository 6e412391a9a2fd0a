package config

import (
	"context"
	"os"
	"strings"

	"github.com/salesync/reports_backend/appctx"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

var (
	logg *logrus.Logger
)

func GetLogger() *logrus.Logger {
	return logg
}

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logLevelFromEnv())
	logg.SetOutput(os.Stdout)
}

// LOG_LEVEL accepts any logrus level name; unknown values fall back to info.
func logLevelFromEnv() logrus.Level {
	v := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if v == "" {
		return logrus.InfoLevel
	}
	lvl, err := logrus.ParseLevel(v)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// LoggerWithContext returns an entry carrying the request correlation id and,
// when a span is recording, its trace id.
func LoggerWithContext(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	fields := logrus.Fields{}
	if cid, ok := appctx.GetString(ctx, appctx.ContextKeyCorrelationId); ok && cid != "" {
		fields["correlation_id"] = cid
	}
	if report, ok := appctx.GetString(ctx, appctx.ContextKeyReportName); ok && report != "" {
		fields["report"] = report
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		fields["trace_id"] = sc.TraceID().String()
	}
	return logger.WithFields(fields)
}

func LogError(logger *logrus.Logger, moduleName string, funcName string, context string, data any, err error) {
	if data != nil {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": funcName,
			"context":  context,
			"data":     data,
		}).Error(err.Error())
	} else {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": funcName,
			"context":  context,
		}).Error(err.Error())
	}
}
