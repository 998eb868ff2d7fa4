package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/openride/dispatch/internal/pkg/models"
)

// InitConfig loads configuration from environment variables, optionally
// seeded from a local config file when APP_ENV is "local".
func InitConfig() *models.Config {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if v.GetString("app.environment") == "local" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			log.Println("error loading config from file", err)
		}
	}

	configs := &models.Config{}
	if err := v.Unmarshal(configs); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return configs
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "dispatch-service")
	v.SetDefault("app.environment", "local")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "")

	// Server
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 9994)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.shutdown_timeout", 30)

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	// NSQ
	v.SetDefault("nsq.nsqd_address", "localhost:4150")
	v.SetDefault("nsq.lookupd_address", "localhost:4161")

	// JWT
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "dispatch-service")

	// Dispatch tuning. The heartbeat timeout is independent of the lock TTL:
	// the lock protects one assignment decision, the timeout bounds liveness.
	v.SetDefault("dispatch.heartbeat_interval", 30)
	v.SetDefault("dispatch.heartbeat_timeout", 120)
	v.SetDefault("dispatch.background_demote_sec", 300)
	v.SetDefault("dispatch.offer_response_timeout", 30)
	v.SetDefault("dispatch.lock_ttl", 30)
	v.SetDefault("dispatch.lock_retries", 1)
	v.SetDefault("dispatch.lock_retry_delay_ms", 200)
	v.SetDefault("dispatch.location_ttl_hours", 24)

	// Logger
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	// API keys
	v.SetDefault("api_keys.match_service", "")
	v.SetDefault("api_keys.trip_service", "")
	v.SetDefault("api_keys.admin_panel", "")
}
