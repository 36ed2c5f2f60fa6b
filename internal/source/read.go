package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/logger"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

// streamPlan is one configured stream resolved against the live schema.
type streamPlan struct {
	key      protocol.StreamKey
	table    Table
	columns  []Column
	mode     protocol.SyncMode
	cursor   *Column
	previous *string
	since    interface{}
}

func (p *streamPlan) incremental() bool {
	return p.mode == protocol.SyncModeIncremental
}

// Read emits the records of every configured stream, followed for
// incremental streams by a STATE message carrying the whole updated state.
// The input state is not modified.
func (s *Source) Read(ctx context.Context, cfg *config.Config, catalog *protocol.ConfiguredCatalog, state *protocol.DBState, emit EmitFunc) error {
	if catalog == nil {
		return srcerrors.Wrapf(srcerrors.ErrInvalidCatalog, nil, "catalog is missing")
	}

	db, err := s.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tables, err := s.tables(ctx, db, cfg)
	if err != nil {
		return err
	}
	index := make(map[protocol.StreamKey]Table, len(tables))
	for _, t := range tables {
		index[t.Key()] = t
	}

	current := state.Clone()
	if current == nil {
		current = &protocol.DBState{}
	}

	// Validate the whole catalog before emitting anything.
	plans := make([]*streamPlan, 0, len(catalog.Streams))
	for _, cs := range catalog.Streams {
		plan, err := s.plan(cs, cfg, index, current)
		if err != nil {
			return err
		}
		plans = append(plans, plan)
	}

	log := s.log.WithField("sync_id", uuid.NewString())
	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			return srcerrors.Wrap(srcerrors.ErrReadFailed, srcerrors.Classify(err))
		}
		if err := s.readStream(ctx, db, log, plan, current, emit); err != nil {
			return err
		}
	}
	return nil
}

// ReadAll runs Read and collects the messages.
func (s *Source) ReadAll(ctx context.Context, cfg *config.Config, catalog *protocol.ConfiguredCatalog, state *protocol.DBState) ([]protocol.Message, error) {
	var messages []protocol.Message
	err := s.Read(ctx, cfg, catalog, state, func(m protocol.Message) error {
		messages = append(messages, m)
		return nil
	})
	return messages, err
}

func (s *Source) plan(cs protocol.ConfiguredStream, cfg *config.Config, index map[protocol.StreamKey]Table, state *protocol.DBState) (*streamPlan, error) {
	key := cs.Key()
	if key.Namespace == "" {
		key.Namespace = s.engine.DefaultNamespace(cfg)
	}

	table, ok := index[key]
	if !ok {
		return nil, srcerrors.Wrapf(srcerrors.ErrUnknownStream, nil, "%s", key)
	}

	columns, err := projectColumns(table, cs.Stream.JSONSchema)
	if err != nil {
		return nil, err
	}

	plan := &streamPlan{key: key, table: table, columns: columns, mode: cs.SyncMode}
	switch cs.SyncMode {
	case protocol.SyncModeFullRefresh, "":
		plan.mode = protocol.SyncModeFullRefresh
		return plan, nil
	case protocol.SyncModeIncremental:
	default:
		return nil, srcerrors.Wrapf(srcerrors.ErrInvalidCatalog, nil, "%s: unknown sync mode %q", key, cs.SyncMode)
	}

	cursorField := cs.CursorField
	if len(cursorField) == 0 {
		cursorField = cs.Stream.DefaultCursorField
	}
	if len(cursorField) != 1 {
		return nil, srcerrors.Wrapf(srcerrors.ErrInvalidCursor, nil, "%s: incremental sync needs exactly one cursor field, got %v", key, cursorField)
	}
	cursor, ok := table.Column(cursorField[0])
	if !ok {
		return nil, srcerrors.Wrapf(srcerrors.ErrInvalidCursor, nil, "%s: cursor field %q does not exist", key, cursorField[0])
	}
	plan.cursor = &cursor

	// A saved cursor only applies while the cursor field is unchanged.
	if saved, ok := state.Find(key); ok && sameCursorField(saved.CursorField, cursor.Name) && saved.Cursor != nil {
		since, err := parseCursor(*saved.Cursor, cursor.Type)
		if err != nil {
			return nil, err
		}
		plan.previous = saved.Cursor
		plan.since = since
	}
	return plan, nil
}

func sameCursorField(saved []string, field string) bool {
	return len(saved) == 1 && saved[0] == field
}

// projectColumns keeps the table columns named in the configured schema, in
// table order. A schema without properties selects every column.
func projectColumns(table Table, schema []byte) ([]Column, error) {
	properties := gjson.GetBytes(schema, "properties")
	if !properties.IsObject() {
		return table.Columns, nil
	}

	selected := make(map[string]bool)
	properties.ForEach(func(key, _ gjson.Result) bool {
		selected[key.String()] = true
		return true
	})

	var columns []Column
	for _, col := range table.Columns {
		if selected[col.Name] {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return nil, srcerrors.Wrapf(srcerrors.ErrInvalidCatalog, nil, "%s: none of the configured fields exist", table.Key())
	}
	return columns, nil
}

// buildQuery returns the SELECT for plan and its arguments.
func buildQuery(d dialect.Dialect, plan *streamPlan) (string, []interface{}, []Column) {
	selected := append([]Column(nil), plan.columns...)
	if plan.incremental() {
		found := false
		for _, c := range selected {
			if c.Name == plan.cursor.Name {
				found = true
				break
			}
		}
		if !found {
			selected = append(selected, *plan.cursor)
		}
	}

	names := make([]string, len(selected))
	for i, c := range selected {
		names[i] = d.QuoteIdentifier(c.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(names, ", "), d.QualifiedName(plan.key.Namespace, plan.key.Name))

	var args []interface{}
	if plan.incremental() {
		cursor := d.QuoteIdentifier(plan.cursor.Name)
		if plan.previous != nil {
			fmt.Fprintf(&b, " WHERE %s > %s", cursor, d.Placeholder(1))
			args = append(args, plan.since)
		}
		fmt.Fprintf(&b, " ORDER BY %s ASC", cursor)
	}
	return b.String(), args, selected
}

func (s *Source) readStream(ctx context.Context, db driver.DB, log *logger.Logger, plan *streamPlan, state *protocol.DBState, emit EmitFunc) error {
	query, args, selected := buildQuery(s.engine.Dialect(), plan)

	start := time.Now()
	rows, err := db.Query(ctx, query, args...)
	log.Query(query, args, time.Since(start))
	if err != nil {
		return srcerrors.Wrapf(srcerrors.ErrReadFailed, srcerrors.Classify(err), "%s", plan.key)
	}
	defer rows.Close()

	projected := make(map[string]bool, len(plan.columns))
	for _, c := range plan.columns {
		projected[c.Name] = true
	}

	var maxCursor interface{}
	count := 0
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return srcerrors.Wrapf(srcerrors.ErrReadFailed, err, "%s", plan.key)
		}

		data := make(map[string]interface{}, len(plan.columns))
		for i, col := range selected {
			v := normalizeValue(values[i], col.Type)
			if projected[col.Name] {
				data[col.Name] = v
			}
			if plan.incremental() && col.Name == plan.cursor.Name && v != nil {
				if maxCursor == nil || compareCursor(v, maxCursor, col.Type) > 0 {
					maxCursor = v
				}
			}
		}

		msg, err := protocol.NewRecordMessage(plan.key, data, s.now())
		if err != nil {
			return srcerrors.Wrapf(srcerrors.ErrReadFailed, err, "%s", plan.key)
		}
		if err := emit(msg); err != nil {
			return err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return srcerrors.Wrapf(srcerrors.ErrReadFailed, srcerrors.Classify(err), "%s", plan.key)
	}

	log.WithField("stream", plan.key.String()).Info("read %d records (%s)", count, plan.mode)

	if !plan.incremental() {
		return nil
	}

	entry := protocol.DBStreamState{
		StreamName:      plan.key.Name,
		StreamNamespace: plan.key.Namespace,
		CursorField:     []string{plan.cursor.Name},
		Cursor:          plan.previous,
	}
	if maxCursor != nil {
		c := cursorString(maxCursor, plan.cursor.Type)
		entry.Cursor = &c
	}
	state.Upsert(entry)
	return emit(protocol.NewStateMessage(state))
}
