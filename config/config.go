package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultMaxRequestBodySize = "100KB"
	defaultTokenTTL           = 24 * time.Hour

	// DefaultBcryptCost is the bcrypt work factor used when auth.bcryptCost is unset.
	// Each increment doubles the hashing time.
	DefaultBcryptCost = 12

	// Argon2id defaults, used when the corresponding auth.argon2id fields are unset.
	DefaultArgon2MemoryKiB   = 64 * 1024
	DefaultArgon2Iterations  = 3
	DefaultArgon2Parallelism = 2

	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Store StoreConfig `json:"store" yaml:"store"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey SecretKeyConfig `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	Metrics *MetricsConfig `json:"metrics" yaml:"metrics"`
}

// StoreConfig selects the account store backend.
type StoreConfig struct {
	Driver      string `json:"driver" yaml:"driver"`
	AutoMigrate bool   `json:"autoMigrate" yaml:"autoMigrate"`
}

// SecretKeyConfig holds the token signing secret. It is never logged.
type SecretKeyConfig struct {
	Access string `json:"access" yaml:"access"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	TokenTTL   time.Duration  `json:"tokenTTL" yaml:"tokenTTL"`
	Hasher     string         `json:"hasher" yaml:"hasher"`
	BcryptCost int            `json:"bcryptCost" yaml:"bcryptCost"`
	Argon2id   Argon2idConfig `json:"argon2id" yaml:"argon2id"`
}

// Argon2idConfig tunes the Argon2id work factor.
type Argon2idConfig struct {
	MemoryKiB   uint32 `json:"memoryKiB" yaml:"memoryKiB"`
	Iterations  uint32 `json:"iterations" yaml:"iterations"`
	Parallelism uint8  `json:"parallelism" yaml:"parallelism"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if cfg.Postgres != nil {
		// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreDriverPostgres
	}
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = defaultTokenTTL
	}
	if cfg.Auth.Hasher == "" {
		cfg.Auth.Hasher = HasherBcrypt
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = DefaultBcryptCost
	}
	if cfg.Auth.Argon2id.MemoryKiB == 0 {
		cfg.Auth.Argon2id.MemoryKiB = DefaultArgon2MemoryKiB
	}
	if cfg.Auth.Argon2id.Iterations == 0 {
		cfg.Auth.Argon2id.Iterations = DefaultArgon2Iterations
	}
	if cfg.Auth.Argon2id.Parallelism == 0 {
		cfg.Auth.Argon2id.Parallelism = DefaultArgon2Parallelism
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{Enabled: true}
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// Validate rejects configurations the service must not start with.
// A missing signing secret is fatal: tokens would otherwise be signed with an empty key.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.SecretKey.Access) == "" {
		return errors.New("secretKey.access must be provided")
	}

	switch cfg.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverPostgres:
		if cfg.Postgres == nil {
			return errors.New("postgres configuration is required for the postgres store driver")
		}
	default:
		return errors.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}

	if cfg.Auth != nil {
		switch cfg.Auth.Hasher {
		case HasherBcrypt, HasherArgon2id:
		default:
			return errors.Errorf("unknown password hasher: %s", cfg.Auth.Hasher)
		}
	}

	return nil
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
