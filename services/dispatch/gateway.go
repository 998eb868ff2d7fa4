package dispatch

import (
	"context"

	"github.com/openride/dispatch/internal/pkg/models"
)

// DispatchGW defines outbound event publication and real-time push
type DispatchGW interface {
	PublishDriverOffline(ctx context.Context, event *models.DriverOfflineEvent) error
	PublishOfferResolved(ctx context.Context, event *models.OfferResolvedEvent) error
	PublishLocationUpdate(ctx context.Context, event *models.LocationEvent) error

	// NotifyUser pushes over the real-time channel, fire-and-forget:
	// a failed push is logged, never retried.
	NotifyUser(userID, event string, payload interface{})
}
