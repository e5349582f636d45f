package api

import (
	"errors"
	"time"

	models "FinDash/internal/domain/models"
	"FinDash/internal/usecase"
	xhttp "FinDash/pkg/http"
	xlogger "FinDash/pkg/logger"
	"FinDash/pkg/util"

	"github.com/labstack/echo/v4"
)

// MarketsHandler serves the equities, calendar and crypto panels.
type MarketsHandler struct {
	logger *xlogger.Logger
	board  *usecase.MarketBoard
}

func NewMarketsHandler(logger *xlogger.Logger, board *usecase.MarketBoard) *MarketsHandler {
	return &MarketsHandler{logger: logger, board: board}
}

func (h *MarketsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/markets/overview", h.Overview)
	g.GET("/markets/movers", h.Movers)
	g.GET("/calendar/earnings", h.Earnings)
	g.GET("/calendar/economic", h.Economic)
	g.GET("/crypto/markets", h.Crypto)
}

func (h *MarketsHandler) Overview(c echo.Context) error {
	quotes := h.board.Overview(c.Request().Context())
	return xhttp.ListResponse(c, quotes, int64(len(quotes)))
}

func (h *MarketsHandler) Movers(c echo.Context) error {
	req := &models.MoversRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.board.Movers(c.Request().Context(), req.Industry)
	if errors.Is(err, usecase.ErrUnknownIndustry) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unknown industry %q", req.Industry).
			WithParam("options", h.board.Industries()))
	}
	if err != nil {
		h.logger.Error("movers usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketsHandler) Earnings(c echo.Context) error {
	req := &models.EarningsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from := util.ParseDateDefault(req.From, time.Time{})
	to := util.ParseDateDefault(req.To, time.Time{})
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("to must not be before from"))
	}

	rows := h.board.Earnings(c.Request().Context(), from, to)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *MarketsHandler) Economic(c echo.Context) error {
	events := h.board.Economic(c.Request().Context())
	return xhttp.ListResponse(c, events, int64(len(events)))
}

func (h *MarketsHandler) Crypto(c echo.Context) error {
	req := &models.CryptoRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	coins := h.board.Crypto(c.Request().Context(), req.Limit)
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=60")
	return xhttp.ListResponse(c, coins, int64(len(coins)))
}
