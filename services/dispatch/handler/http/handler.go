package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/utils"
	"github.com/openride/dispatch/services/dispatch"
)

// DispatchHandler handles HTTP requests for dispatch operations
type DispatchHandler struct {
	dispatchUC dispatch.DispatchUC
}

// NewDispatchHandler creates a new dispatch HTTP handler
func NewDispatchHandler(dispatchUC dispatch.DispatchUC) *DispatchHandler {
	return &DispatchHandler{dispatchUC: dispatchUC}
}

// errorResponse translates usecase sentinels into HTTP responses
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, dispatch.ErrDriverNotFound),
		errors.Is(err, dispatch.ErrTripNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, dispatch.ErrDriverOnTrip),
		errors.Is(err, dispatch.ErrDriverNotAvailable),
		errors.Is(err, dispatch.ErrDriverOffline),
		errors.Is(err, dispatch.ErrNoOfferInFlight):
		return utils.ConflictResponse(c, err.Error())
	case errors.Is(err, dispatch.ErrInvalidUserType),
		errors.Is(err, dispatch.ErrInvalidCoordinates),
		errors.Is(err, dispatch.ErrInvalidOutcome):
		return utils.BadRequestResponse(c, err.Error())
	default:
		return utils.ErrorResponseHandler(c, http.StatusInternalServerError, err.Error())
	}
}
