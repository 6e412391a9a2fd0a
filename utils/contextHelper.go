package utils

import (
	"context"

	"github.com/salesync/reports_backend/appctx"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyReportName    = appctx.ContextKeyReportName
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetReportNameInContext(ctx context.Context, name string) context.Context {
	return appctx.Set(ctx, ContextKeyReportName, name)
}
