//go:build integration

package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

func TestClickHouseAcceptance(t *testing.T) {
	Run(t, NewClickHouseFixture())
}

func TestPostgresAcceptance(t *testing.T) {
	Run(t, NewPostgresFixture())
}

func TestMySQLAcceptance(t *testing.T) {
	Run(t, NewMySQLFixture())
}

func TestClickHouseFixture_SetupBuildsConfig(t *testing.T) {
	ctx := context.Background()
	f := NewClickHouseFixture()
	require.NoError(t, f.Setup(ctx))
	t.Cleanup(func() { _ = f.TearDown(context.Background()) })

	cfg := f.Config()
	assert.NotEmpty(t, cfg.Host)
	assert.NotZero(t, cfg.Port)
	assert.Equal(t, "default", cfg.Database)
	assert.Equal(t, "default", cfg.Username)
	assert.False(t, cfg.SSL)

	status := f.Source().Check(ctx, cfg)
	assert.Equal(t, protocol.StatusSucceeded, status.Status, status.Message)
}

func TestClickHouseFixture_UnhealthyContainer(t *testing.T) {
	f := NewClickHouseFixture()
	// Alpine never answers /ping.
	f.Image = "alpine:3.20"
	f.StartupTimeout = 5 * time.Second

	err := f.Setup(context.Background())
	assert.ErrorIs(t, err, srcerrors.ErrContainerFailed)
	assert.NoError(t, f.TearDown(context.Background()))
}
