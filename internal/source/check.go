package source

import (
	"context"
	"time"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	contextutil "github.com/carlosnayan/source-clickhouse/internal/context"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

// Check verifies that cfg reaches a database that answers queries. Failures
// are reported in the status, never returned.
func (s *Source) Check(ctx context.Context, cfg *config.Config) protocol.ConnectionStatus {
	ctx, cancel := contextutil.WithTimeout(ctx)
	defer cancel()

	db, err := s.Connect(ctx, cfg)
	if err != nil {
		return s.failed(err)
	}
	defer db.Close()

	start := time.Now()
	if err := checkHealth(ctx, db); err != nil {
		return s.failed(err)
	}
	s.log.Info("connection check succeeded against %s in %v", cfg, time.Since(start))

	return protocol.ConnectionStatus{Status: protocol.StatusSucceeded}
}

func (s *Source) failed(err error) protocol.ConnectionStatus {
	err = srcerrors.Classify(err)
	s.log.Warn("connection check failed: %v", err)
	return protocol.ConnectionStatus{
		Status:  protocol.StatusFailed,
		Message: srcerrors.SanitizeError(err).Error(),
	}
}

// checkHealth pings, then runs SELECT 1 within the query timeout.
func checkHealth(ctx context.Context, db driver.DB) error {
	ctx, cancel := contextutil.WithQueryTimeout(ctx)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		return err
	}

	var result int
	if err := db.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return err
	}
	return nil
}
