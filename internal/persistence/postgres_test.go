package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/config"
)

func TestPoolConfig(t *testing.T) {
	poolCfg, err := PoolConfig(config.PostgresConfig{
		DSN:            "postgres://diaspora:secret@db:5432/diaspora?sslmode=disable",
		MaxConns:       12,
		MinConns:       3,
		ConnMaxIdleSec: 45,
		ConnMaxLifeSec: 600,
	}, "diaspora-service")
	require.NoError(t, err)

	assert.Equal(t, int32(12), poolCfg.MaxConns)
	assert.Equal(t, int32(3), poolCfg.MinConns)
	assert.Equal(t, 45*time.Second, poolCfg.MaxConnIdleTime)
	assert.Equal(t, 10*time.Minute, poolCfg.MaxConnLifetime)
	assert.Equal(t, "db", poolCfg.ConnConfig.Host)
	assert.Equal(t, "UTC", poolCfg.ConnConfig.RuntimeParams["timezone"])
	assert.Equal(t, "diaspora-service", poolCfg.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfigErrors(t *testing.T) {
	_, err := PoolConfig(config.PostgresConfig{}, "svc")
	assert.ErrorIs(t, err, ErrNoDSN)

	_, err = PoolConfig(config.PostgresConfig{DSN: "postgres://%zz"}, "svc")
	assert.Error(t, err)
}

type flakyDB struct {
	failures int
	calls    int
}

func (f *flakyDB) Ping(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingRetriesUntilReady(t *testing.T) {
	prev := connectBackoff
	connectBackoff = time.Millisecond
	t.Cleanup(func() { connectBackoff = prev })

	db := &flakyDB{failures: 2}
	require.NoError(t, ping(context.Background(), db, 5, zap.NewNop()))
	assert.Equal(t, 3, db.calls)

	db = &flakyDB{failures: 10}
	err := ping(context.Background(), db, 3, zap.NewNop())
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, 3, db.calls)

	db = &flakyDB{failures: 10}
	require.Error(t, ping(context.Background(), db, 0, zap.NewNop()))
	assert.Equal(t, 1, db.calls)
}
