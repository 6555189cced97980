package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server's environment configuration
type Config struct {
	// ListenAddr is the HTTP and websocket listen address
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// RedisAddr is the Redis server address. Redis is both the
	// persisted store and the broadcast backplane.
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// RedisPassword is the Redis password, empty for none
	RedisPassword string `env:"REDIS_PASSWORD"`

	// RedisDB is the Redis database number
	RedisDB int `env:"REDIS_DB" envDefault:"0"`

	// RoomListWindow is how far back the public room listing looks
	RoomListWindow time.Duration `env:"ROOM_LIST_WINDOW" envDefault:"15m"`

	// RoomListLimit caps the public room listing
	RoomListLimit int `env:"ROOM_LIST_LIMIT" envDefault:"15"`

	// SelectionOptionCount is how many questions a selector is offered
	SelectionOptionCount int `env:"SELECTION_OPTION_COUNT" envDefault:"3"`

	// TokenLength is the length of user and room tokens
	TokenLength int `env:"TOKEN_LENGTH" envDefault:"8"`

	// MessageWindow is how many recent messages a room snapshot carries
	MessageWindow int `env:"MESSAGE_WINDOW" envDefault:"50"`

	// IconCount is how many icon names the /icons endpoint returns
	IconCount int `env:"ICON_COUNT" envDefault:"15"`

	// QuestionsFile is an optional starter question catalog, one
	// question per line. Loaded into the pool at startup when the pool
	// is empty.
	QuestionsFile string `env:"QUESTIONS_FILE"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env when present, then parses the environment
func Load() (*Config, error) {
	// A missing .env is fine; the environment may be set directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
