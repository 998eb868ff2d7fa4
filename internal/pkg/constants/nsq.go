package constants

// NSQ topics
const (
	// Consumed: offers fanned out by the external matcher
	TopicTripOffer = "dispatch.trip.offer"

	// Produced
	TopicDriverOffline   = "dispatch.driver.offline"
	TopicOfferResolved   = "dispatch.offer.resolved"
	TopicLocationUpdated = "dispatch.location.updated"
)

// NSQ channel for this service's consumers
const ChannelDispatch = "dispatch-service"
