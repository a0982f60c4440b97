package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/seatplan"
	"github.com/arloliu/seatplan/internal/blobstore"
	"github.com/arloliu/seatplan/types"
)

// RedisConfig selects the Redis artifact store.
type RedisConfig struct {
	// Enabled uses Redis instead of the in-memory store.
	Enabled bool `yaml:"enabled"`

	blobstore.RedisOptions `yaml:",inline"`
}

// ServerConfig is the configuration of the seatplan service.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`

	// PublicURL prefixes download links printed in QR codes. Empty keeps links relative.
	PublicURL string `yaml:"publicUrl"`

	// SolverURL is the base URL of the solver and export service. Empty disables solving and exporting.
	SolverURL string `yaml:"solverUrl"`

	// TokenSecret signs download links. Empty generates a random secret at startup.
	TokenSecret string `yaml:"tokenSecret"`

	// ArtifactTTL is how long rendered artifacts stay downloadable.
	ArtifactTTL time.Duration `yaml:"artifactTtl"`

	// SessionIdleTTL closes sessions that saw no request for this long.
	SessionIdleTTL time.Duration `yaml:"sessionIdleTtl"`

	// MaxSessions caps the number of open sessions.
	MaxSessions int `yaml:"maxSessions"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// LogFormat is text or json.
	LogFormat string `yaml:"logFormat"`

	Redis RedisConfig `yaml:"redis"`

	// Editor configures every session.
	Editor seatplan.Config `yaml:"editor"`
}

// DefaultServerConfig returns the service defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ArtifactTTL:     blobstore.DefaultTTL,
		SessionIdleTTL:  2 * time.Hour,
		MaxSessions:     1000,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		LogFormat:       "text",
		Editor:          seatplan.DefaultConfig(),
	}
}

// SetServerDefaults fills zero fields with defaults.
func SetServerDefaults(cfg *ServerConfig) {
	defaults := DefaultServerConfig()

	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.ArtifactTTL == 0 {
		cfg.ArtifactTTL = defaults.ArtifactTTL
	}
	if cfg.SessionIdleTTL == 0 {
		cfg.SessionIdleTTL = defaults.SessionIdleTTL
	}
	if cfg.MaxSessions == 0 {
		cfg.MaxSessions = defaults.MaxSessions
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaults.LogFormat
	}
	seatplan.SetDefaults(&cfg.Editor)
}

// Validate checks the service configuration.
func (c *ServerConfig) Validate() error {
	if c.ArtifactTTL < 0 {
		return fmt.Errorf("%w: artifactTtl must not be negative", types.ErrInvalidConfig)
	}
	if c.SessionIdleTTL < 0 {
		return fmt.Errorf("%w: sessionIdleTtl must not be negative", types.ErrInvalidConfig)
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("%w: maxSessions must not be negative", types.ErrInvalidConfig)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: shutdownTimeout must not be negative", types.ErrInvalidConfig)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("%w: redis db must not be negative", types.ErrInvalidConfig)
	}

	return c.Editor.Validate()
}

// LoadServerConfig reads the service configuration.
//
// Values come from, in increasing precedence: defaults, the YAML file at path
// (skipped when path is empty), then environment variables. Env files are
// loaded into the environment first; missing env files are ignored and
// variables already set are kept.
//
// Environment variables:
//   - SEATPLAN_ADDR, SEATPLAN_PUBLIC_URL, SEATPLAN_SOLVER_URL, SEATPLAN_TOKEN_SECRET
//   - SEATPLAN_LOG_LEVEL, SEATPLAN_LOG_FORMAT
//   - REDIS_ADDR (enables Redis), REDIS_PASSWORD, REDIS_DB
//
// Returns:
//   - ServerConfig: Validated configuration
//   - error: Read, parse or validation error
func LoadServerConfig(path string, envFiles ...string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return ServerConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ServerConfig{}, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return ServerConfig{}, err
	}

	SetServerDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *ServerConfig, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SEATPLAN_ADDR":         &cfg.Addr,
		"SEATPLAN_PUBLIC_URL":   &cfg.PublicURL,
		"SEATPLAN_SOLVER_URL":   &cfg.SolverURL,
		"SEATPLAN_TOKEN_SECRET": &cfg.TokenSecret,
		"SEATPLAN_LOG_LEVEL":    &cfg.LogLevel,
		"SEATPLAN_LOG_FORMAT":   &cfg.LogFormat,
		"REDIS_PASSWORD":        &cfg.Redis.Password,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: REDIS_DB %q: %w", types.ErrInvalidConfig, v, err)
		}
		cfg.Redis.DB = db
	}

	return nil
}
