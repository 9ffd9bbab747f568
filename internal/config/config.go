package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	ConstructionDir string        `envconfig:"CONSTRUCTION_DIR" default:"./data/constructions"`
	TokenSecret     string        `envconfig:"TOKEN_SECRET" default:"dev-secret-change-in-production"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
	AllowedOrigins  string        `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	FontPath        string        `envconfig:"FONT_PATH"`
	SnapshotWidth   int           `envconfig:"SNAPSHOT_WIDTH" default:"800"`
	SnapshotHeight  int           `envconfig:"SNAPSHOT_HEIGHT" default:"800"`
	HitRadiusPx     float64       `envconfig:"HIT_RADIUS_PX" default:"12"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level maps LogLevel onto a slog level; unknown names mean info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
