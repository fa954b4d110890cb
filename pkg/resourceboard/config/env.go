package config

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/opencurate/resource-board/pkg/resourceboard"
)

// envConfig is the environment surface of the service, read with cleanenv.
//
//	PORT                 - Server port (default: "8080")
//	ENVIRONMENT          - Runtime environment (default: "development")
//	DATABASE_URL         - "memory" or a postgresql:// connection string
//	DB_SCHEMA            - Postgres schema (default: "resourceboard")
//	SESSION_SECRET       - HS256 signing secret for session tokens
//	SUPERUSER_KEY_SHA256 - hex SHA-256 digest of the superuser key
//	SEED_TOPICS          - "uuid:name,uuid:name" topics for the in-memory
//	                       directory (dev and test runs only)
type envConfig struct {
	Port               string `env:"PORT"`
	Environment        string `env:"ENVIRONMENT"`
	DatabaseURL        string `env:"DATABASE_URL"`
	DBSchema           string `env:"DB_SCHEMA"`
	SessionSecret      string `env:"SESSION_SECRET"`
	SuperuserKeySHA256 string `env:"SUPERUSER_KEY_SHA256"`
	SeedTopics         string `env:"SEED_TOPICS"`
}

// WithEnv applies environment variable overrides on top of the defaults.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.DBSchema != "" {
			c.DBSchema = env.DBSchema
		}
		if env.SessionSecret != "" {
			c.SessionSecret = env.SessionSecret
		}
		if env.SuperuserKeySHA256 != "" {
			c.SuperuserKeySHA256 = env.SuperuserKeySHA256
		}

		if err := applyDatabaseEnv(env.DatabaseURL, c); err != nil {
			return err
		}

		if env.SeedTopics != "" {
			topics, err := parseSeedTopics(env.SeedTopics)
			if err != nil {
				return err
			}
			c.SeedTopics = topics
		}

		return nil
	}
}

// applyDatabaseEnv derives the database type from the connection string
func applyDatabaseEnv(dbURL string, c *ServerConfig) error {
	if dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}

	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

// parseSeedTopics parses a "uuid:name,uuid:name" list
func parseSeedTopics(raw string) ([]resourceboard.Topic, error) {
	var topics []resourceboard.Topic
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, name, found := strings.Cut(entry, ":")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid SEED_TOPICS entry: %s (use 'uuid:name')", entry)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid topic id in SEED_TOPICS entry %s: %w", entry, err)
		}
		topics = append(topics, resourceboard.Topic{ID: parsed, Name: name})
	}
	return topics, nil
}
