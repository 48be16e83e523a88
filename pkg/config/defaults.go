package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Slot lock tuning. Wait must stay comfortably under the request
	// timeout so a blocked caller gets a Busy error, not a 503 from the
	// timeout middleware.
	DefaultLockWaitTimeout   = 5 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond
	DefaultLockTTL           = 10 * time.Second

	DefaultRoomsBaseURL        = "http://localhost:8081"
	DefaultRequestersBaseURL   = "http://localhost:8082"
	DefaultReservationsBaseURL = "http://localhost:8080"

	DefaultEventsEnabled = false
	DefaultEventsTopic   = "roomly.reservation.events"

	DefaultPaginationLimit = 100
)
