package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jonesrussell/quillglow/internal/telemetry"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestRecordProvider(t *testing.T) {
	t.Parallel()
	p := telemetry.NewProvider()

	p.RecordProvider("web", telemetry.OutcomeOK, 120*time.Millisecond)
	p.RecordProvider("web", telemetry.OutcomeOK, 80*time.Millisecond)
	p.RecordProvider("video", telemetry.OutcomeCircuitOpen, 0)

	if got := testutil.ToFloat64(p.Metrics.ProviderRequests.WithLabelValues("web", telemetry.OutcomeOK)); got != 2 {
		t.Errorf("web ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.Metrics.ProviderRequests.WithLabelValues("video", telemetry.OutcomeCircuitOpen)); got != 1 {
		t.Errorf("video circuit_open = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(p.Metrics.ProviderDuration); got != 1 {
		t.Errorf("duration series = %d, want 1 (short-circuited calls are not timed)", got)
	}
}

func TestRecordBlocked(t *testing.T) {
	t.Parallel()
	p := telemetry.NewProvider()

	p.RecordBlocked(telemetry.StageQuery, 1)
	p.RecordBlocked(telemetry.StageResult, 3)
	p.RecordBlocked(telemetry.StageResult, 0)

	if got := testutil.ToFloat64(p.Metrics.ModerationBlocked.WithLabelValues(telemetry.StageResult)); got != 3 {
		t.Errorf("result blocks = %v, want 3", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	t.Parallel()
	p := telemetry.NewProvider()

	p.RecordCacheLookup(true)
	p.RecordCacheLookup(false)
	p.RecordCacheLookup(false)

	if got := testutil.ToFloat64(p.Metrics.SummaryCacheHits); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.Metrics.SummaryCacheMisses); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	t.Parallel()
	p := telemetry.NewProvider()

	router := gin.New()
	router.Use(p.Middleware())
	router.GET("/api/v1/history", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(p.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	if got := testutil.ToFloat64(p.Metrics.RequestsTotal.WithLabelValues("/api/v1/history", "GET", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "study_search_http_requests_total") {
		t.Error("exposition missing http request counter")
	}
}

func TestStartSpan(t *testing.T) {
	t.Parallel()
	p := telemetry.NewProvider()

	ctx, span := p.StartSpan(context.Background(), "search")
	defer span.End()

	if ctx == nil {
		t.Fatal("expected context")
	}
}
