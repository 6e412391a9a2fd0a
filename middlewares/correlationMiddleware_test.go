package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/salesync/reports_backend/utils"
)

func TestCorrelationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(CorrelationMiddleware())
	r.GET("/", func(c *gin.Context) {
		seen, _ = utils.GetCorrelationIdFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIdHeader, "abc-123")
	r.ServeHTTP(w, req)
	if seen != "abc-123" || w.Header().Get(CorrelationIdHeader) != "abc-123" {
		t.Fatalf("expected caller id to be kept, got ctx=%q header=%q", seen, w.Header().Get(CorrelationIdHeader))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || seen == "abc-123" || w.Header().Get(CorrelationIdHeader) != seen {
		t.Fatalf("expected a generated id, got ctx=%q header=%q", seen, w.Header().Get(CorrelationIdHeader))
	}
}
