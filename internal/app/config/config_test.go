package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.True(t, cfg.IsTest())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./uploads/imoveis", cfg.Storage.Path)
	assert.Equal(t, 4326, cfg.Geo.DefaultSourceEpsg)
	assert.Equal(t, "V", cfg.Geo.VertexPrefix)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadRedisEnabledWhenConfigured(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestGetDatabaseURLPrefersTestURLInTest(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "postgres://main")
	t.Setenv("DATABASE_URL_TEST", "postgres://test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://test", cfg.GetDatabaseURL())

	t.Setenv("ENVIRONMENT", "development")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://main", cfg.GetDatabaseURL())
}

func TestProductionRequiresDatabaseURL(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_URL_TEST", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestInvalidSourceEpsgRejected(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("GEO_DEFAULT_SOURCE_EPSG", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
