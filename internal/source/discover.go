package source

import (
	"context"
	"encoding/json"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	contextutil "github.com/carlosnayan/source-clickhouse/internal/context"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

// Discover lists every readable table as a stream.
func (s *Source) Discover(ctx context.Context, cfg *config.Config) (*protocol.Catalog, error) {
	ctx, cancel := contextutil.WithTimeout(ctx)
	defer cancel()

	db, err := s.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tables, err := s.tables(ctx, db, cfg)
	if err != nil {
		return nil, err
	}

	catalog := &protocol.Catalog{Streams: make([]protocol.Stream, 0, len(tables))}
	for _, t := range tables {
		stream, err := toStream(t)
		if err != nil {
			return nil, srcerrors.Wrap(srcerrors.ErrDiscoverFailed, err)
		}
		catalog.Streams = append(catalog.Streams, stream)
	}
	s.log.Info("discovered %d streams", len(catalog.Streams))
	return catalog, nil
}

// tables introspects and drops internal namespaces.
func (s *Source) tables(ctx context.Context, db driver.DB, cfg *config.Config) ([]Table, error) {
	all, err := s.engine.Introspect(ctx, db, cfg)
	if err != nil {
		return nil, srcerrors.Wrap(srcerrors.ErrDiscoverFailed, srcerrors.Classify(err))
	}

	tables := make([]Table, 0, len(all))
	for _, t := range all {
		if isExcluded(s.engine, t.Namespace) || len(t.Columns) == 0 {
			continue
		}
		tables = append(tables, t)
	}
	sortTables(tables)
	return tables, nil
}

func toStream(t Table) (protocol.Stream, error) {
	schema, err := jsonSchema(t)
	if err != nil {
		return protocol.Stream{}, err
	}

	stream := protocol.Stream{
		Name:               t.Name,
		Namespace:          t.Namespace,
		JSONSchema:         schema,
		SupportedSyncModes: []protocol.SyncMode{protocol.SyncModeFullRefresh, protocol.SyncModeIncremental},
	}
	for _, col := range t.PrimaryKey {
		stream.SourceDefinedPrimaryKey = append(stream.SourceDefinedPrimaryKey, []string{col})
	}
	return stream, nil
}

func jsonSchema(t Table) (json.RawMessage, error) {
	properties := make(map[string]interface{}, len(t.Columns))
	for _, col := range t.Columns {
		properties[col.Name] = columnSchema(col.Type)
	}
	return json.Marshal(map[string]interface{}{
		"type":       "object",
		"properties": properties,
	})
}

func columnSchema(typ dialect.JSONType) map[string]string {
	schema := map[string]string{"type": typ.Type}
	if typ.Format != "" {
		schema["format"] = typ.Format
	}
	return schema
}
