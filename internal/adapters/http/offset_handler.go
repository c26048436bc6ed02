package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/taskgrid/internal/domain/offset"
	"github.com/taskmaster/taskgrid/internal/ports"
)

// OffsetHandler exposes the offset engine
type OffsetHandler struct {
	engine *offset.Engine
}

func NewOffsetHandler(engine *offset.Engine) *OffsetHandler {
	return &OffsetHandler{engine: engine}
}

// Apply godoc
// @Summary Apply an offset token to a local timestamp
// @Tags offsets
// @Produce json
// @Param base query string true "YYYY-MM-DDTHH:mm"
// @Param token query string true "Offset token such as +3h"
// @Success 200 {object} ports.ApplyOffsetResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/offset/apply [get]
func (h *OffsetHandler) Apply(c echo.Context) error {
	base, token := c.QueryParam("base"), c.QueryParam("token")

	result, err := h.engine.Derive(base, token)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, ports.ApplyOffsetResponse{
		Base:   base,
		Token:  token,
		Result: result,
		Label:  h.engine.Label(token),
	})
}

// Label godoc
// @Summary Render an offset token for display
// @Tags offsets
// @Produce json
// @Param token query string true "Offset token"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/offset/label [get]
func (h *OffsetHandler) Label(c echo.Context) error {
	token := c.QueryParam("token")
	return c.JSON(http.StatusOK, map[string]string{
		"token": token,
		"label": h.engine.Label(token),
	})
}

// Chain godoc
// @Summary List the date/time fields in reference order
// @Tags offsets
// @Produce json
// @Success 200 {object} map[string][]string
// @Security BearerAuth
// @Router /api/offset/chain [get]
func (h *OffsetHandler) Chain(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"fields": h.engine.Chain().Fields(),
	})
}
