package models

// Config represents application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	NSQ      NSQConfig      `mapstructure:"nsq"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	APIKeys  APIKeyConfig   `mapstructure:"api_keys"`
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// NSQConfig contains NSQ connection configuration
type NSQConfig struct {
	NSQDAddress    string `mapstructure:"nsqd_address"`
	LookupdAddress string `mapstructure:"lookupd_address"`
}

// JWTConfig contains JWT authentication configuration
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// DispatchConfig contains tuning for the dispatch coordination layer.
// Durations are seconds unless noted otherwise.
type DispatchConfig struct {
	HeartbeatInterval    int `mapstructure:"heartbeat_interval"`     // suggested client heartbeat cadence
	HeartbeatTimeout     int `mapstructure:"heartbeat_timeout"`      // heartbeat age after which the reaper forces OFFLINE
	BackgroundDemoteSec  int `mapstructure:"background_demote_sec"`  // backgrounded-while-AVAILABLE threshold before demotion to BUSY
	OfferResponseTimeout int `mapstructure:"offer_response_timeout"` // expected accept/reject window for a processing slot
	LockTTL              int `mapstructure:"lock_ttl"`
	LockRetries          int `mapstructure:"lock_retries"`
	LockRetryDelayMs     int `mapstructure:"lock_retry_delay_ms"`
	LocationTTLHours     int `mapstructure:"location_ttl_hours"`
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// APIKeyConfig contains API keys for service-to-service calls
type APIKeyConfig struct {
	MatchService string `mapstructure:"match_service"`
	TripService  string `mapstructure:"trip_service"`
	AdminPanel   string `mapstructure:"admin_panel"`
}
