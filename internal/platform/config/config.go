// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// Postgres captures the relational-store connection settings.
type Postgres struct {
	DSN string
}

// Identity captures the external identity-store admin API settings. An
// empty BaseURL selects the in-memory identity store (local development).
type Identity struct {
	BaseURL    string
	ServiceKey string
}

// Redis captures the revoked-token list connection settings. An empty URL
// disables revocation checks.
type Redis struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures the audit sink settings. Empty brokers select the
// in-memory audit sink.
type Kafka struct {
	Brokers []string
	Topic   string
}

type Config struct {
	Server   Server
	Postgres Postgres
	Identity Identity
	Redis    Redis
	Kafka    Kafka
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("INNKEEPER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "innkeeper.audit"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Server: Server{
			Addr:          addr,
			JWTSigningKey: jwtSigningKey,
		},
		Postgres: Postgres{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Identity: Identity{
			BaseURL:    os.Getenv("IDENTITY_BASE_URL"),
			ServiceKey: os.Getenv("IDENTITY_SERVICE_KEY"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
