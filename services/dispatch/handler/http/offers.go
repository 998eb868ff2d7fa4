package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/internal/utils"
)

// SetAvailability toggles the driver's availability beacon
func (h *DispatchHandler) SetAvailability(c echo.Context) error {
	driverID := c.Param("id")
	if driverID == "" {
		return utils.BadRequestResponse(c, "Driver ID is required")
	}

	var req models.AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	if err := h.dispatchUC.SetDriverAvailability(c.Request().Context(), driverID, req.Available); err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Availability updated", nil)
}

// EnqueueOffer places a trip offer on a driver's queue directly.
// The matcher normally publishes offers over the message bus; this is
// the synchronous fallback.
func (h *DispatchHandler) EnqueueOffer(c echo.Context) error {
	driverID := c.Param("id")
	if driverID == "" {
		return utils.BadRequestResponse(c, "Driver ID is required")
	}

	var offer models.TripOfferEvent
	if err := c.Bind(&offer); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}
	if offer.TripID == "" {
		return utils.BadRequestResponse(c, "Trip ID is required")
	}
	offer.DriverID = driverID

	if err := h.dispatchUC.EnqueueOffer(c.Request().Context(), &offer); err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusCreated, "Trip offer enqueued", nil)
}

// NextOffer moves the driver's queue head into the processing slot
func (h *DispatchHandler) NextOffer(c echo.Context) error {
	driverID := c.Param("id")
	if driverID == "" {
		return utils.BadRequestResponse(c, "Driver ID is required")
	}

	item, err := h.dispatchUC.NextOffer(c.Request().Context(), driverID)
	if err != nil {
		return errorResponse(c, err)
	}
	if item == nil {
		return utils.SuccessResponse(c, http.StatusOK, "No offer available", nil)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Offer moved to processing", item)
}

// ResolveOffer settles the driver's in-flight offer
func (h *DispatchHandler) ResolveOffer(c echo.Context) error {
	driverID := c.Param("id")
	if driverID == "" {
		return utils.BadRequestResponse(c, "Driver ID is required")
	}

	var req models.ResolveOfferRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	if err := h.dispatchUC.ResolveOffer(c.Request().Context(), driverID, req.Outcome); err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Offer resolved", nil)
}

// CompleteTrip tears down an active trip's dispatch state
func (h *DispatchHandler) CompleteTrip(c echo.Context) error {
	tripID := c.Param("id")
	if tripID == "" {
		return utils.BadRequestResponse(c, "Trip ID is required")
	}

	if err := h.dispatchUC.CompleteTrip(c.Request().Context(), tripID); err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Trip completed", nil)
}
