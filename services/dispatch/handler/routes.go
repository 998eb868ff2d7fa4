package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/pkg/health"
	"github.com/openride/dispatch/internal/pkg/middleware"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
	httpHandler "github.com/openride/dispatch/services/dispatch/handler/http"
	nsqHandler "github.com/openride/dispatch/services/dispatch/handler/nsq"
)

// Handler combines all handlers for the dispatch service
type Handler struct {
	dispatchHTTP *httpHandler.DispatchHandler
	dispatchNSQ  *nsqHandler.DispatchHandler
	dispatchWS   *WebSocketHandler
	serviceName  string
}

// NewHandler creates a new combined handler
func NewHandler(
	dispatchUC dispatch.DispatchUC,
	wsManager WebSocketManager,
	nsqCfg models.NSQConfig,
	serviceName string,
) *Handler {
	return &Handler{
		dispatchHTTP: httpHandler.NewDispatchHandler(dispatchUC),
		dispatchNSQ:  nsqHandler.NewDispatchHandler(dispatchUC, nsqCfg),
		dispatchWS:   NewWebSocketHandler(dispatchUC, wsManager),
		serviceName:  serviceName,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(e *echo.Echo, apiKeyValidator *middleware.APIKeyValidator) {
	e.GET("/health", health.NewPingHandler(h.serviceName))
	e.POST("/heartbeat", h.dispatchHTTP.Heartbeat)
	e.GET("/ws", h.dispatchWS.HandleWebSocket)

	// Internal routes for service-to-service communication (API key required)
	internal := e.Group("/internal",
		apiKeyValidator.ValidateAPIKey("match-service", "trip-service", "admin-panel"))

	drivers := internal.Group("/drivers")
	drivers.POST("/:id/location", h.dispatchHTTP.UpdateDriverLocation)
	drivers.POST("/:id/availability", h.dispatchHTTP.SetAvailability)
	drivers.POST("/:id/offers", h.dispatchHTTP.EnqueueOffer)
	drivers.POST("/:id/offers/next", h.dispatchHTTP.NextOffer)
	drivers.POST("/:id/offers/resolve", h.dispatchHTTP.ResolveOffer)

	customers := internal.Group("/customers")
	customers.POST("/:id/location", h.dispatchHTTP.UpdateCustomerLocation)

	trips := internal.Group("/trips")
	trips.POST("/:id/complete", h.dispatchHTTP.CompleteTrip)

	users := internal.Group("/users")
	users.GET("/:type/:id/trip", h.dispatchHTTP.GetUserActiveTrip)

	admin := internal.Group("/dispatch")
	admin.GET("/queues", h.dispatchHTTP.ListQueuedDrivers)
	admin.GET("/queues/snapshot", h.dispatchHTTP.QueueOverview)
	admin.GET("/drivers/nearby", h.dispatchHTTP.NearbyDrivers)
	admin.POST("/cleanup", h.dispatchHTTP.RunCleanup)
}

// InitNSQConsumers starts all NSQ consumers
func (h *Handler) InitNSQConsumers() error {
	return h.dispatchNSQ.InitConsumers()
}

// StopNSQConsumers stops all NSQ consumers
func (h *Handler) StopNSQConsumers() {
	h.dispatchNSQ.Stop()
}
