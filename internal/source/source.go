// Package source implements a generic SQL source over pluggable engines:
// connection checks, catalog discovery and full-refresh or incremental reads.
package source

import (
	"context"
	_ "embed"
	"time"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/logger"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

//go:embed spec.json
var connectionSpecification []byte

// DocumentationURL is published in the connector specification.
const DocumentationURL = "https://docs.airbyte.com/integrations/sources/clickhouse"

// EmitFunc receives every message produced by a read, in order.
type EmitFunc func(protocol.Message) error

// Source runs the connector operations against one engine.
type Source struct {
	engine Engine
	log    *logger.Logger
	now    func() time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithLogger replaces the package default logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Source) { s.log = l }
}

// WithClock fixes the emission time of records, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

func New(engine Engine, opts ...Option) *Source {
	s := &Source{
		engine: engine,
		log:    logger.GetDefaultLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClickHouseSource is the source this connector ships.
func NewClickHouseSource(opts ...Option) *Source {
	return New(NewClickHouse(), opts...)
}

func (s *Source) Engine() Engine {
	return s.engine
}

// DriverName is the database/sql driver the engine registers.
func (s *Source) DriverName() string {
	return s.engine.DriverName()
}

// Spec returns the connector specification.
func (s *Source) Spec() protocol.ConnectorSpecification {
	spec := make([]byte, len(connectionSpecification))
	copy(spec, connectionSpecification)
	return protocol.ConnectorSpecification{
		DocumentationURL:        DocumentationURL,
		ConnectionSpecification: spec,
		SupportsIncremental:     true,
		SupportedSyncModes:      []protocol.SyncMode{protocol.SyncModeFullRefresh, protocol.SyncModeIncremental},
	}
}

// Connect validates cfg and opens a connection. Callers must Close it.
func (s *Source) Connect(ctx context.Context, cfg *config.Config) (driver.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := s.engine.Open(ctx, cfg)
	if err != nil {
		return nil, srcerrors.Classify(err)
	}
	return db, nil
}
