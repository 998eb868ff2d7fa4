package nsq

import (
	"context"
	"errors"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/logger"
	"github.com/openride/dispatch/internal/pkg/models"
	nsqpkg "github.com/openride/dispatch/internal/pkg/nsq"
	"github.com/openride/dispatch/services/dispatch"
)

// DispatchHandler consumes matcher events from NSQ
type DispatchHandler struct {
	dispatchUC dispatch.DispatchUC
	cfg        models.NSQConfig
	consumers  []*nsqpkg.Consumer
}

// NewDispatchHandler creates a new dispatch NSQ handler
func NewDispatchHandler(dispatchUC dispatch.DispatchUC, cfg models.NSQConfig) *DispatchHandler {
	return &DispatchHandler{
		dispatchUC: dispatchUC,
		cfg:        cfg,
	}
}

// InitConsumers starts all NSQ consumers for the dispatch service
func (h *DispatchHandler) InitConsumers() error {
	consumer, err := nsqpkg.NewConsumer(
		constants.TopicTripOffer,
		constants.ChannelDispatch,
		h.cfg.NSQDAddress,
		h.handleTripOffer,
	)
	if err != nil {
		return err
	}
	if h.cfg.LookupdAddress != "" {
		if err := consumer.ConnectToLookupd([]string{h.cfg.LookupdAddress}); err != nil {
			return err
		}
	}
	h.consumers = append(h.consumers, consumer)
	return nil
}

// Stop stops all consumers
func (h *DispatchHandler) Stop() {
	for _, c := range h.consumers {
		c.Stop()
	}
}

// handleTripOffer enqueues a matcher offer onto the target driver's
// queue. Offers for drivers no longer available are dropped, not
// requeued: the matcher learns the truth from the resolution event.
func (h *DispatchHandler) handleTripOffer(message []byte) error {
	var offer models.TripOfferEvent
	if err := nsqpkg.UnmarshalMessage(message, &offer); err != nil {
		logger.Error("Malformed trip offer dropped", logger.Err(err))
		return nil
	}
	if offer.TripID == "" || offer.DriverID == "" {
		logger.Warn("Trip offer missing identifiers, dropped",
			logger.String("trip_id", offer.TripID),
			logger.String("driver_id", offer.DriverID))
		return nil
	}

	err := h.dispatchUC.EnqueueOffer(context.Background(), &offer)
	if errors.Is(err, dispatch.ErrDriverNotAvailable) {
		logger.Info("Trip offer dropped, driver not available",
			logger.String("trip_id", offer.TripID),
			logger.String("driver_id", offer.DriverID))
		return nil
	}
	return err
}
