package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration pulled from the environment so
// main stays lean.
type Server struct {
	Addr          string
	PostgresURL   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	AdminJWTKey   string
	ScopeLockTTL  time.Duration
	ShutdownGrace time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("PROCURA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	auditTopic := os.Getenv("PROCURA_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "procura.audit"
	}

	jwtKey := os.Getenv("PROCURA_ADMIN_JWT_KEY")
	if jwtKey == "" {
		// Development default - must be overridden in production
		jwtKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("PROCURA_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          addr,
		PostgresURL:   os.Getenv("PROCURA_POSTGRES_URL"),
		RedisURL:      os.Getenv("PROCURA_REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    auditTopic,
		AdminJWTKey:   jwtKey,
		ScopeLockTTL:  10 * time.Second,
		ShutdownGrace: 10 * time.Second,
	}
}
