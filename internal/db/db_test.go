package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := poolConfig("postgres://u:p@localhost:5432/campus", PoolConfig{})
		require.NoError(t, err)
		assert.Equal(t, int32(4), cfg.MaxConns)
		assert.Equal(t, 5*time.Minute, cfg.MaxConnIdleTime)
		assert.Equal(t, "campus-booking", cfg.ConnConfig.RuntimeParams["application_name"])
	})

	t.Run("Overrides", func(t *testing.T) {
		cfg, err := poolConfig("postgres://u:p@localhost:5432/campus?application_name=reports",
			PoolConfig{MaxConns: 10, HealthCheckPeriod: 30 * time.Second})
		require.NoError(t, err)
		assert.Equal(t, int32(10), cfg.MaxConns)
		assert.Equal(t, 30*time.Second, cfg.HealthCheckPeriod)
		assert.Equal(t, "reports", cfg.ConnConfig.RuntimeParams["application_name"])
	})

	t.Run("Bad DSN", func(t *testing.T) {
		_, err := poolConfig("postgres://u:p@localhost:notaport/campus", PoolConfig{})
		assert.Error(t, err)
	})
}
