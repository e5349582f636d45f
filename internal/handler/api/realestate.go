package api

import (
	"net/http"

	models "FinDash/internal/domain/models"
	"FinDash/internal/usecase"
	xhttp "FinDash/pkg/http"
	xlogger "FinDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RealEstateHandler serves aggregated housing market snapshots.
type RealEstateHandler struct {
	logger    *xlogger.Logger
	agg       *usecase.MarketAggregator
	locations []models.Location
}

func NewRealEstateHandler(logger *xlogger.Logger, agg *usecase.MarketAggregator, locations []models.Location) *RealEstateHandler {
	return &RealEstateHandler{logger: logger, agg: agg, locations: locations}
}

func (h *RealEstateHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/realestate")
	g.GET("/markets", h.Markets)
	g.POST("/aggregate", h.Aggregate)
}

// Markets aggregates the tracked locations and applies a view and search.
func (h *RealEstateHandler) Markets(c echo.Context) error {
	req := &models.MarketsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snapshots := h.agg.AggregateMarketData(c.Request().Context(), h.locations)
	rows := usecase.SelectView(snapshots, req.View, req.Q)

	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Aggregate runs an aggregation for caller-supplied locations.
func (h *RealEstateHandler) Aggregate(c echo.Context) error {
	req := &models.AggregateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report := h.agg.AggregateWithReport(c.Request().Context(), req.Locations)
	h.logger.Debug("aggregate request served",
		xlogger.Int("locations", len(req.Locations)),
		xlogger.Int("snapshots", len(report.Snapshots)),
	)
	return xhttp.DataResponse(c, http.StatusOK, report)
}
