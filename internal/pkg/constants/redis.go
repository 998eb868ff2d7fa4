package constants

// Redis key formats
const (
	// Dispatch lock
	KeyTripLock = "dispatch:lock:%s" // Format: dispatch:lock:{resource}

	// Driver liveness
	KeyDriverStatus     = "driver:status:%s" // Format: driver:status:{driver_id}
	KeyConnectedDrivers = "drivers:connected"
	KeyAvailableDrivers = "drivers:available"

	// Customer liveness (not availability-tracked)
	KeyCustomerPresence = "customer:presence:%s" // Format: customer:presence:{customer_id}

	// Trip queue
	KeyDriverQueue      = "driver:queue:%s"       // ZSET, member = trip_id, score = priority|enqueue time
	KeyDriverQueueItems = "driver:queue:items:%s" // HASH, trip_id -> QueueItem JSON
	KeyProcessingSlot   = "driver:processing:%s"  // HASH, the single in-flight offer

	// Location relay
	KeyUserLocation = "user:location:%s:%s" // Format: user:location:{user_type}:{user_id}
	KeyDriverGeo    = "drivers:geo"         // GeoHash set of last-known driver positions

	// Active-trip index
	KeyActiveTrip  = "user:activetrip:%s:%s" // Format: user:activetrip:{user_type}:{user_id}
	KeyTripParties = "trip:parties:%s"       // Format: trip:parties:{trip_id}
)

// Redis hash fields
const (
	FieldStatus           = "status"
	FieldLastHeartbeat    = "last_heartbeat"
	FieldAppState         = "app_state"
	FieldAppStateSince    = "app_state_since"
	FieldCurrentTripID    = "current_trip_id"
	FieldPrevAvailability = "prev_availability"

	FieldTripID    = "trip_id"
	FieldStartedAt = "started_at"
	FieldItem      = "item"

	FieldLatitude   = "lat"
	FieldLongitude  = "lng"
	FieldGeohash    = "geohash"
	FieldAccuracy   = "accuracy"
	FieldHeading    = "heading"
	FieldSpeed      = "speed"
	FieldTimestamp  = "ts"
	FieldDriverID   = "driver_id"
	FieldCustomerID = "customer_id"
)
