package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "mellow/internal/errors"
	"mellow/internal/service"
)

// DealsHandler serves the venue feed.
type DealsHandler struct {
	dealsService service.DealsService
}

// NewDealsHandler creates a new deals handler.
func NewDealsHandler(dealsService service.DealsService) *DealsHandler {
	return &DealsHandler{dealsService: dealsService}
}

// Deals godoc
// @Summary Venue deals feed
// @Tags deals
// @Produce json
// @Success 200 {array} model.VenueListing
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/deals [get]
func (h *DealsHandler) Deals(c echo.Context) error {
	feed, err := h.dealsService.Feed(c.Request().Context())
	if err != nil {
		return apperrors.MapErrorToHTTP(err)
	}
	return c.JSONBlob(http.StatusOK, feed)
}
