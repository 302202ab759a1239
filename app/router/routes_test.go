package router

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverycalc/quote-gateway/app/middleware"
	"github.com/deliverycalc/quote-gateway/config"
)

type stubCatalogHandler struct{}

func (stubCatalogHandler) Status(c fiber.Ctx) error          { return c.SendStatus(fiber.StatusOK) }
func (stubCatalogHandler) Categories(c fiber.Ctx) error      { return c.SendStatus(fiber.StatusOK) }
func (stubCatalogHandler) Factories(c fiber.Ctx) error       { return c.SendStatus(fiber.StatusOK) }
func (stubCatalogHandler) Tariffs(c fiber.Ctx) error         { return c.SendStatus(fiber.StatusOK) }
func (stubCatalogHandler) SpecialVehicles(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
func (stubCatalogHandler) Export(c fiber.Ctx) error          { return c.SendStatus(fiber.StatusOK) }

type stubQuoteHandler struct{}

func (stubQuoteHandler) SubmitQuote(c fiber.Ctx) error   { return c.SendStatus(fiber.StatusOK) }
func (stubQuoteHandler) GetSession(c fiber.Ctx) error    { return c.SendStatus(fiber.StatusOK) }
func (stubQuoteHandler) SelectVariant(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
func (stubQuoteHandler) History(c fiber.Ctx) error       { return c.SendStatus(fiber.StatusOK) }

type stubAdminHandler struct{}

func (stubAdminHandler) Reload(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

func newTestRouter(metrics config.MetricsConfig) Router {
	security := config.SecurityConfig{
		AllowedOrigins:  []string{"*"},
		GlobalRateLimit: 100,
		AdminRateLimit:  10,
		RateLimitWindow: time.Minute,
	}
	r := NewFiberRouter(
		stubCatalogHandler{},
		stubQuoteHandler{},
		stubAdminHandler{},
		middleware.NewAdminAuthMiddleware(""),
		security,
		metrics,
	)
	r.SetupRoutes()
	return r
}

func TestMetricsEndpointEnabled(t *testing.T) {
	r := newTestRouter(config.MetricsConfig{Enabled: true, Path: "/metrics"})

	resp, err := r.GetApp().Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMetricsEndpointDisabled(t *testing.T) {
	r := newTestRouter(config.MetricsConfig{Enabled: false, Path: "/metrics"})

	resp, err := r.GetApp().Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpointCustomPath(t *testing.T) {
	r := newTestRouter(config.MetricsConfig{Enabled: true, Path: "/internal/metrics"})

	resp, err := r.GetApp().Test(httptest.NewRequest("GET", "/internal/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
