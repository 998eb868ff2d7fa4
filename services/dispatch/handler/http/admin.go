package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/internal/utils"
)

// ListQueuedDrivers lists drivers holding queued or in-flight offers
func (h *DispatchHandler) ListQueuedDrivers(c echo.Context) error {
	ids, err := h.dispatchUC.ListQueuedDrivers(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Queued drivers listed", echo.Map{
		"driver_ids": ids,
		"count":      len(ids),
	})
}

// QueueOverview returns every driver's queue snapshot with aggregates
func (h *DispatchHandler) QueueOverview(c echo.Context) error {
	overview, err := h.dispatchUC.QueueOverview(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Queue overview", overview)
}

// NearbyDrivers queries the driver geo index around a point.
// Query params: lat, lng, radius_km (optional).
func (h *DispatchHandler) NearbyDrivers(c echo.Context) error {
	lat, errLat := strconv.ParseFloat(c.QueryParam("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if errLat != nil || errLng != nil {
		return utils.ErrorResponseHandler(c, http.StatusBadRequest, "lat and lng query params are required")
	}

	radiusKm := 0.0
	if raw := c.QueryParam("radius_km"); raw != "" {
		var err error
		if radiusKm, err = strconv.ParseFloat(raw, 64); err != nil {
			return utils.ErrorResponseHandler(c, http.StatusBadRequest, "invalid radius_km")
		}
	}

	drivers, err := h.dispatchUC.NearbyDrivers(c.Request().Context(),
		models.GeoLocation{Latitude: lat, Longitude: lng}, radiusKm)
	if err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Nearby drivers", echo.Map{
		"drivers": drivers,
		"count":   len(drivers),
	})
}

// RunCleanup triggers a fast sweep on demand
func (h *DispatchHandler) RunCleanup(c echo.Context) error {
	result, err := h.dispatchUC.RunFastSweep(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Cleanup finished", result)
}
