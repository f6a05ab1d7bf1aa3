// Package config reads server settings from the environment (YAHT_*),
// an optional .env file and command-line flags, in that order of precedence
// from lowest to highest.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const EnvPrefix = "YAHT_"

type Config struct {
	Addr             string        `env:"ADDR" envDefault:"0.0.0.0:9876"`
	AdminAddr        string        `env:"ADMIN_ADDR" envDefault:":9877"`
	AllowedOrigins   []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	MaxConnections   int           `env:"MAX_CONNECTIONS" envDefault:"256"`
	QueueSize        int           `env:"QUEUE_SIZE" envDefault:"64"`
	MaxFrame         int           `env:"MAX_FRAME" envDefault:"65536"`
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT" envDefault:"10s"`
	PruneInterval    time.Duration `env:"PRUNE_INTERVAL" envDefault:"30s"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	ArchiveQueue     int           `env:"ARCHIVE_QUEUE" envDefault:"128"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"json"`
}

// LoadDotEnv exports the variables in path without overriding ones already
// set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Parse reads the environment, then lets flags in args override it.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "game server TCP address")
	fs.StringVar(&cfg.AdminAddr, "admin-addr", cfg.AdminAddr, "HTTP/WebSocket address, empty disables")
	fs.IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "concurrent client limit")
	fs.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "outbound messages buffered per client")
	fs.IntVar(&cfg.MaxFrame, "max-frame", cfg.MaxFrame, "largest accepted frame in bytes")
	fs.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "time allowed for Hello")
	fs.DurationVar(&cfg.PruneInterval, "prune-interval", cfg.PruneInterval, "empty room sweep interval, 0 disables")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres DSN for the results archive, empty disables")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "json or console")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr is required")
	case c.MaxConnections <= 0:
		return fmt.Errorf("max connections must be positive, got %d", c.MaxConnections)
	case c.QueueSize <= 0:
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	case c.MaxFrame <= 0:
		return fmt.Errorf("max frame must be positive, got %d", c.MaxFrame)
	case c.HandshakeTimeout <= 0:
		return fmt.Errorf("handshake timeout must be positive, got %s", c.HandshakeTimeout)
	case c.PruneInterval < 0:
		return fmt.Errorf("prune interval must not be negative, got %s", c.PruneInterval)
	case c.LogFormat != "json" && c.LogFormat != "console":
		return fmt.Errorf("log format must be json or console, got %q", c.LogFormat)
	}
	return nil
}
