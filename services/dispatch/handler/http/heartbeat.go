package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/internal/utils"
)

// Heartbeat handles a client liveness signal
func (h *DispatchHandler) Heartbeat(c echo.Context) error {
	var req models.HeartbeatRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}
	if req.UserID == "" {
		return utils.BadRequestResponse(c, "User ID is required")
	}
	if req.UserType == "" {
		return utils.BadRequestResponse(c, "User type is required")
	}

	resp, err := h.dispatchUC.Heartbeat(c.Request().Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Heartbeat acknowledged", resp)
}
