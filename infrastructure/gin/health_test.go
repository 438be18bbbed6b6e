package gin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	ginpkg "github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/quillglow/infrastructure/gin"
)

func okPing(context.Context) error   { return nil }
func downPing(context.Context) error { return errors.New("connection refused") }

func TestHealthRoutes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		dbPing     func(context.Context) error
		redisPing  func(context.Context) error
		wantCode   int
		wantStatus infragin.HealthStatus
	}{
		{name: "all healthy", dbPing: okPing, redisPing: okPing, wantCode: http.StatusOK, wantStatus: infragin.HealthStatusHealthy},
		{name: "redis down degrades", dbPing: okPing, redisPing: downPing, wantCode: http.StatusOK, wantStatus: infragin.HealthStatusDegraded},
		{name: "database down is unhealthy", dbPing: downPing, redisPing: okPing, wantCode: http.StatusServiceUnavailable, wantStatus: infragin.HealthStatusUnhealthy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := ginpkg.New()
			infragin.RegisterHealthRoutes(router, infragin.HealthOptions{
				ServiceName:    "study-search",
				ServiceVersion: "1.2.3",
				Checks: map[string]infragin.HealthChecker{
					"database": infragin.PingHealthChecker("Database", infragin.HealthStatusUnhealthy, tc.dbPing),
					"redis":    infragin.PingHealthChecker("Redis", infragin.HealthStatusDegraded, tc.redisPing),
				},
			})

			for _, path := range []string{"/health", "/ready"} {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))

				if w.Code != tc.wantCode {
					t.Errorf("%s status code = %d, want %d", path, w.Code, tc.wantCode)
				}

				var body infragin.HealthResponse
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode %s: %v", path, err)
				}
				if body.Status != tc.wantStatus {
					t.Errorf("%s status = %q, want %q", path, body.Status, tc.wantStatus)
				}
				if body.Service != "study-search" || body.Version != "1.2.3" {
					t.Errorf("%s identity = %s/%s", path, body.Service, body.Version)
				}
				if len(body.Checks) != 2 {
					t.Errorf("%s checks = %d, want 2", path, len(body.Checks))
				}
			}
		})
	}
}

func TestHealthRoutes_Head(t *testing.T) {
	t.Parallel()

	router := ginpkg.New()
	infragin.RegisterHealthRoutes(router, infragin.HealthOptions{ServiceName: "study-search"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/health", http.NoBody))

	if w.Code != http.StatusOK {
		t.Errorf("HEAD /health = %d, want 200", w.Code)
	}
}
