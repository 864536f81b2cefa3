package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends for the identity record snapshot.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Server captures process level configuration.
type Server struct {
	Addr      string `env:"BIOGATE_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL"    envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"   envDefault:"json"`
	// AdminAPIToken guards the admin routes; empty leaves them unmounted.
	AdminAPIToken  string        `env:"ADMIN_API_TOKEN"`
	CaptureTimeout time.Duration `env:"CAPTURE_TIMEOUT" envDefault:"5s"`
	// AuditCapacity bounds the in-memory audit log; the oldest events are dropped first.
	AuditCapacity  int           `env:"AUDIT_CAPACITY" envDefault:"10000"`

	Store StoreConfig
	Redis RedisConfig
}

// StoreConfig selects and locates the snapshot backend.
type StoreConfig struct {
	Backend      string `env:"STORE_BACKEND" envDefault:"file"`
	Path         string `env:"STORE_PATH"    envDefault:"user_db.json"`
	DatabaseURL  string `env:"DATABASE_URL"`
	SnapshotName string `env:"SNAPSHOT_NAME" envDefault:"identity_records"`
}

// RedisConfig configures the Redis snapshot backend.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	KeyPrefix    string        `env:"REDIS_KEY_PREFIX"     envDefault:"biogate"`
	PoolSize     int           `env:"REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return parse(env.Options{})
}

// FromMap builds a Server config from an explicit environment.
func FromMap(environment map[string]string) (Server, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot start.
func (c Server) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, errors.New("STORE_PATH is required for the "+c.Store.Backend+" backend"))
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}
	if c.Store.Backend != BackendFile && strings.TrimSpace(c.Store.SnapshotName) == "" {
		errs = append(errs, errors.New("SNAPSHOT_NAME is required"))
	}
	if c.AuditCapacity <= 0 {
		errs = append(errs, errors.New("AUDIT_CAPACITY must be positive"))
	}
	if c.CaptureTimeout < 0 {
		errs = append(errs, errors.New("CAPTURE_TIMEOUT must not be negative"))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
