package gateway

import (
	"context"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/internal/pkg/nsq"
	"github.com/openride/dispatch/internal/pkg/websocket"
	"github.com/openride/dispatch/services/dispatch"
)

// DispatchGW publishes dispatch events to NSQ and pushes real-time
// updates over WebSocket.
type DispatchGW struct {
	producer  *nsq.Producer
	wsManager *websocket.Manager
}

// NewDispatchGW creates a new dispatch gateway
func NewDispatchGW(producer *nsq.Producer, wsManager *websocket.Manager) dispatch.DispatchGW {
	return &DispatchGW{
		producer:  producer,
		wsManager: wsManager,
	}
}

// PublishDriverOffline announces a reaper eviction to downstream services
func (g *DispatchGW) PublishDriverOffline(ctx context.Context, event *models.DriverOfflineEvent) error {
	return g.producer.Publish(constants.TopicDriverOffline, event)
}

// PublishOfferResolved announces an offer resolution to the matcher
func (g *DispatchGW) PublishOfferResolved(ctx context.Context, event *models.OfferResolvedEvent) error {
	return g.producer.Publish(constants.TopicOfferResolved, event)
}

// PublishLocationUpdate announces an on-trip location sample
func (g *DispatchGW) PublishLocationUpdate(ctx context.Context, event *models.LocationEvent) error {
	return g.producer.Publish(constants.TopicLocationUpdated, event)
}

// NotifyUser pushes an event to a connected user, fire-and-forget
func (g *DispatchGW) NotifyUser(userID, event string, payload interface{}) {
	g.wsManager.NotifyClient(userID, event, payload)
}
