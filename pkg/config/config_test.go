package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_DRIVER", "SESSION_MAX_AGE", "REDEMPTION_DELAY", "REDIS_ADDR", "CHAT_GATEWAY_URL", "CHAT_API_KEY", "BASE_PATH"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "/api", cfg.BasePath)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 2*time.Second, cfg.RedemptionDelay)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.ChatEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/eco")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("BOARD_TTL", "3600")
	t.Setenv("BOARD_MAX", "not-a-number")
	t.Setenv("CHAT_API_KEY", "k")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, time.Hour, cfg.BoardTTL, "bare numbers are seconds")
	assert.Equal(t, 10000, cfg.BoardMax, "bad numbers fall back")
	assert.True(t, cfg.ChatEnabled())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "memory", cfg: Config{StorageDriver: DriverMemory}},
		{name: "sqlite", cfg: Config{StorageDriver: DriverSQLite, SQLitePath: "x.db"}},
		{name: "sqlite without path", cfg: Config{StorageDriver: DriverSQLite}, wantErr: ErrSQLitePathRequired},
		{name: "postgres without url", cfg: Config{StorageDriver: DriverPostgres}, wantErr: ErrDatabaseURLRequired},
		{name: "unknown driver", cfg: Config{StorageDriver: "mongo"}, wantErr: ErrUnknownDriver},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate()
			if test.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, test.wantErr)
		})
	}
}
