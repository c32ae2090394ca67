package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
env:
  serviceName: identity
  log:
    level: debug
http:
  port: 4000
store:
  driver: memory
secretKey:
  access: ""
auth:
  tokenTTL: 2h
  bcryptCost: 10
`

func TestLoadWithEnv_OverlaysEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfigYAML), 0o600))
	t.Chdir(dir)
	t.Setenv("SECRETKEY_ACCESS", "from-env-secret")
	t.Setenv("HTTP_PORT", "8081")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "from-env-secret", cfg.SecretKey.Access)
	assert.Equal(t, 8081, cfg.HTTP.Port)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("does-not-exist")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found in any search path")
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, HasherBcrypt, cfg.Auth.Hasher)
	assert.Equal(t, DefaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Equal(t, uint32(DefaultArgon2MemoryKiB), cfg.Auth.Argon2id.MemoryKiB)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Store.Driver = StoreDriverMemory
		cfg.SecretKey.Access = "secret"
		cfg.applyDefaults()

		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := valid()
		cfg.SecretKey.Access = "   "
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secretKey.access")
	})

	t.Run("postgres driver without postgres section", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Driver = StoreDriverPostgres
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := valid()
		cfg.Store.Driver = "mongo"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown hasher", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.Hasher = "md5"
		assert.Error(t, cfg.Validate())
	})
}
