package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	// Fresh registry per test to avoid duplicate registration
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMiddleware(reg)
	if err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}
	app := fiber.New()
	app.Use(pm.Handler())
	return app, pm, reg
}

func TestPrometheusMiddleware(t *testing.T) {
	app, pm, _ := newPromApp(t)

	app.Get("/files", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Delete("/files/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Post("/auth/login", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	})
	app.Post("/files", func(c *fiber.Ctx) error {
		return errors.New("storage write failed")
	})

	tests := []struct {
		method string
		target string
		labels []string
	}{
		{method: "GET", target: "/files", labels: []string{"GET", "/files", "200"}},
		{method: "DELETE", target: "/files/5f0c", labels: []string{"DELETE", "/files/:id", "204"}},
		{method: "POST", target: "/auth/login", labels: []string{"POST", "/auth/login", "401"}},
		{method: "POST", target: "/files", labels: []string{"POST", "/files", "500"}},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			if _, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil)); err != nil {
				t.Fatalf("request failed: %v", err)
			}
			count := testutil.ToFloat64(pm.requestCount.WithLabelValues(tt.labels...))
			if count != 1 {
				t.Errorf("expected count 1 for %v, got %f", tt.labels, count)
			}
		})
	}

	if n := testutil.CollectAndCount(pm.requestDuration); n != len(tests) {
		t.Errorf("expected %d histogram series, got %d", len(tests), n)
	}
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, _, reg := newPromApp(t)

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/metrics", nil))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if len(mf.GetMetric()) > 0 {
			t.Errorf("expected no series for %s, got %d", mf.GetName(), len(mf.GetMetric()))
		}
	}
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMiddleware(reg); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := NewPrometheusMiddleware(reg); err == nil {
		t.Error("expected error on second registration")
	}
}
