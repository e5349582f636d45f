package api

import (
	"context"
	"net/http"
	"time"

	models "FinDash/internal/domain/models"
	xhttp "FinDash/pkg/http"

	"github.com/labstack/echo/v4"
)

// Configurable is any vendor client that can run without credentials.
type Configurable interface {
	Configured() bool
}

// HealthCheck pings a backing store.
type HealthCheck func(ctx context.Context) error

// StatusHandler reports which providers are live and serves liveness.
type StatusHandler struct {
	realEstate   Configurable
	quotes       Configurable
	cacheBackend string
	sinkBackend  string
	checks       map[string]HealthCheck
}

func NewStatusHandler(realEstate, quotes Configurable, cacheBackend, sinkBackend string, checks map[string]HealthCheck) *StatusHandler {
	return &StatusHandler{
		realEstate:   realEstate,
		quotes:       quotes,
		cacheBackend: cacheBackend,
		sinkBackend:  sinkBackend,
		checks:       checks,
	}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/status", h.Status)
	e.GET("/healthz", h.Health)
}

func (h *StatusHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.StatusReport{
		Providers: []models.ProviderStatus{
			providerStatus("realestate", h.realEstate.Configured()),
			providerStatus("finnhub", h.quotes.Configured()),
			providerStatus("coingecko", true),
		},
		CacheBackend: h.cacheBackend,
		SinkBackend:  h.sinkBackend,
		Timestamp:    time.Now().UTC(),
	})
}

// Health returns 503 when any registered backend check fails.
func (h *StatusHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, failed)
	}
	return xhttp.SuccessResponse(c, "ok")
}

func providerStatus(name string, configured bool) models.ProviderStatus {
	mode := "demo"
	if configured {
		mode = "live"
	}
	return models.ProviderStatus{Name: name, Configured: configured, Mode: mode}
}
