package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/internal/utils"
)

// UpdateDriverLocation ingests a driver position report
func (h *DispatchHandler) UpdateDriverLocation(c echo.Context) error {
	return h.updateLocation(c, models.UserTypeDriver)
}

// UpdateCustomerLocation ingests a customer position report
func (h *DispatchHandler) UpdateCustomerLocation(c echo.Context) error {
	return h.updateLocation(c, models.UserTypeCustomer)
}

func (h *DispatchHandler) updateLocation(c echo.Context, userType string) error {
	userID := c.Param("id")
	if userID == "" {
		return utils.BadRequestResponse(c, "User ID is required")
	}

	var sample models.LocationSample
	if err := c.Bind(&sample); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	tripID, err := h.dispatchUC.UpdateLocation(c.Request().Context(), userType, userID, &sample)
	if err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Location updated",
		models.LocationUpdateResponse{TripID: tripID})
}

// GetUserActiveTrip returns the trip a user is currently bound to
func (h *DispatchHandler) GetUserActiveTrip(c echo.Context) error {
	userType := c.Param("type")
	userID := c.Param("id")
	if userID == "" {
		return utils.BadRequestResponse(c, "User ID is required")
	}

	tripID, err := h.dispatchUC.GetUserActiveTrip(c.Request().Context(), userType, userID)
	if err != nil {
		return errorResponse(c, err)
	}
	if tripID == "" {
		return utils.NotFoundResponse(c, "No active trip")
	}
	return utils.SuccessResponse(c, http.StatusOK, "Active trip found",
		models.LocationUpdateResponse{TripID: tripID})
}
