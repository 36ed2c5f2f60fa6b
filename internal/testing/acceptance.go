package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	"github.com/carlosnayan/source-clickhouse/internal/driver"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
	"github.com/carlosnayan/source-clickhouse/internal/source"
)

const (
	SchemaName = "jdbc_integration_test1"

	TableName             = "id_and_name"
	TableNameWithoutPK    = "id_and_name_without_pk"
	TableNameCompositePK  = "full_name_composite_pk"
	TableNameWithSpaces   = "id and name"
	ColumnClause          = "id INTEGER, name VARCHAR(200), updated_at DATE"
	ColumnClauseComposite = "first_name VARCHAR(200), last_name VARCHAR(200), updated_at DATE"
)

// Run executes the acceptance suite against fixture.
func Run(t *testing.T, fixture Fixture) {
	suite.Run(t, &AcceptanceSuite{Fixture: fixture})
}

// AcceptanceSuite exercises spec, check, discover and read of a SQL source
// against the canonical tables, independent of the database behind Fixture.
type AcceptanceSuite struct {
	suite.Suite

	Fixture Fixture

	ctx       context.Context
	config    *config.Config
	source    *source.Source
	dialect   dialect.Dialect
	db        driver.DB
	namespace string
	created   []string
}

// SetupTest starts the fixture, then creates and fills the canonical tables.
func (s *AcceptanceSuite) SetupTest() {
	s.ctx = context.Background()
	s.created = nil

	require.NoError(s.T(), s.Fixture.Setup(s.ctx), "fixture setup")

	s.config = s.Fixture.Config()
	s.source = s.Fixture.Source()
	s.dialect = s.source.Engine().Dialect()

	db, err := s.source.Connect(s.ctx, s.config)
	require.NoError(s.T(), err)
	s.db = db

	if s.Fixture.SupportsSchemas() {
		s.namespace = SchemaName
		s.exec(s.dialect.CreateSchemaQuery(SchemaName))
	} else {
		s.namespace = s.source.Engine().DefaultNamespace(s.config)
	}

	s.createTable(TableName, ColumnClause, []string{"id"})
	s.insert(TableName, "id, name, updated_at",
		"(1,'picard', '2004-10-19')",
		"(2, 'crusher', '2005-10-19')",
		"(3, 'vash', '2006-10-19')")

	s.createTable(TableNameWithoutPK, ColumnClause, nil)
	s.insert(TableNameWithoutPK, "id, name, updated_at",
		"(1,'picard', '2004-10-19')",
		"(2, 'crusher', '2005-10-19')",
		"(3, 'vash', '2006-10-19')")

	s.createTable(TableNameCompositePK, ColumnClauseComposite, []string{"first_name", "last_name"})
	s.insert(TableNameCompositePK, "first_name, last_name, updated_at",
		"('first', 'picard', '2004-10-19')",
		"('second', 'crusher', '2005-10-19')",
		"('third', 'vash', '2006-10-19')")
}

// TearDownTest drops what SetupTest created, closes the connection and only
// then lets the fixture release the database.
func (s *AcceptanceSuite) TearDownTest() {
	if s.db != nil {
		if s.Fixture.SupportsSchemas() {
			_, _ = s.db.Exec(s.ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", s.dialect.QuoteIdentifier(SchemaName)))
		} else {
			for _, table := range s.created {
				_, _ = s.db.Exec(s.ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
			}
		}
		_ = s.db.Close()
		s.db = nil
	}
	s.NoError(s.Fixture.TearDown(context.Background()), "fixture teardown")
}

func (s *AcceptanceSuite) exec(query string) {
	_, err := s.db.Exec(s.ctx, query)
	require.NoError(s.T(), err, query)
}

// tableName quotes name, qualifying it when the suite owns a schema.
func (s *AcceptanceSuite) tableName(name string) string {
	if s.Fixture.SupportsSchemas() {
		return s.dialect.QualifiedName(s.namespace, name)
	}
	return s.dialect.QuoteIdentifier(name)
}

func (s *AcceptanceSuite) createTable(name, columns string, pk []string) {
	table := s.tableName(name)
	s.exec(s.Fixture.CreateTableQuery(table, columns, s.Fixture.PrimaryKeyClause(pk)))
	s.created = append(s.created, table)
}

func (s *AcceptanceSuite) insert(name, columns string, rows ...string) {
	for _, row := range rows {
		s.exec(fmt.Sprintf("INSERT INTO %s(%s) VALUES %s", s.tableName(name), columns, row))
	}
}

func (s *AcceptanceSuite) discover() *protocol.Catalog {
	catalog, err := s.source.Discover(s.ctx, s.config)
	require.NoError(s.T(), err)
	return catalog
}

func (s *AcceptanceSuite) stream(catalog *protocol.Catalog, name string) protocol.Stream {
	stream, ok := catalog.Find(s.namespace, name)
	require.True(s.T(), ok, "stream %s.%s not discovered", s.namespace, name)
	return *stream
}

func (s *AcceptanceSuite) configured(name string, mode protocol.SyncMode, cursor ...string) protocol.ConfiguredStream {
	return protocol.ConfiguredStream{
		Stream:              s.stream(s.discover(), name),
		SyncMode:            mode,
		CursorField:         cursor,
		DestinationSyncMode: protocol.DestinationSyncModeAppend,
	}
}

func (s *AcceptanceSuite) read(state *protocol.DBState, streams ...protocol.ConfiguredStream) []protocol.Message {
	messages, err := s.source.ReadAll(s.ctx, s.config, &protocol.ConfiguredCatalog{Streams: streams}, state)
	require.NoError(s.T(), err)
	return messages
}

// records decodes RECORD data so numbers compare independently of the
// driver's integer width.
func (s *AcceptanceSuite) records(messages []protocol.Message) []map[string]interface{} {
	var out []map[string]interface{}
	for _, m := range messages {
		if m.Type != protocol.MessageRecord {
			continue
		}
		var row map[string]interface{}
		require.NoError(s.T(), json.Unmarshal(m.Record.Data, &row))
		out = append(out, row)
	}
	return out
}

func (s *AcceptanceSuite) cursorAfter(messages []protocol.Message, name string) *string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Type != protocol.MessageState {
			continue
		}
		entry, ok := messages[i].State.Data.Find(protocol.StreamKey{Namespace: s.namespace, Name: name})
		require.True(s.T(), ok, "state has no entry for %s", name)
		return entry.Cursor
	}
	s.T().Fatalf("no STATE message emitted")
	return nil
}

func row(id int, name, updatedAt string) map[string]interface{} {
	return map[string]interface{}{"id": float64(id), "name": name, "updated_at": updatedAt}
}

func canonicalRows() []map[string]interface{} {
	return []map[string]interface{}{
		row(1, "picard", "2004-10-19"),
		row(2, "crusher", "2005-10-19"),
		row(3, "vash", "2006-10-19"),
	}
}

func (s *AcceptanceSuite) TestSpec() {
	spec := s.source.Spec()
	s.True(spec.SupportsIncremental)

	var required []string
	for _, r := range gjson.GetBytes(spec.ConnectionSpecification, "required").Array() {
		required = append(required, r.String())
	}
	s.Subset(required, []string{"host", "port", "database", "username"})
	s.True(gjson.GetBytes(spec.ConnectionSpecification, "properties.password.airbyte_secret").Bool())
}

func (s *AcceptanceSuite) TestCheckSuccess() {
	status := s.source.Check(s.ctx, s.config)
	s.Equal(protocol.StatusSucceeded, status.Status, status.Message)
}

func (s *AcceptanceSuite) TestCheckFailure() {
	status := s.source.Check(s.ctx, s.missingDatabaseConfig())
	s.Equal(protocol.StatusFailed, status.Status)
	s.NotEmpty(status.Message)
}

// MissingDatabaseConfigurer is implemented by fixtures whose engine would
// create a database that is merely named but absent, such as SQLite files.
type MissingDatabaseConfigurer interface {
	MissingDatabaseConfig() *config.Config
}

// MissingDatabaseDefault names a database no fixture creates.
const MissingDatabaseDefault = "does_not_exist"

func (s *AcceptanceSuite) missingDatabaseConfig() *config.Config {
	if f, ok := s.Fixture.(MissingDatabaseConfigurer); ok {
		return f.MissingDatabaseConfig()
	}
	bad := s.config.Clone()
	bad.Database = MissingDatabaseDefault
	return bad
}

func (s *AcceptanceSuite) TestConfigIsACopy() {
	cfg := s.Fixture.Config()
	cfg.Host = "mutated.invalid"
	s.NotEqual("mutated.invalid", s.Fixture.Config().Host)
}

func (s *AcceptanceSuite) TestDriverName() {
	s.Equal(s.Fixture.DriverName(), s.source.DriverName())
}

func (s *AcceptanceSuite) TestDiscover() {
	catalog := s.discover()

	var names []string
	for _, st := range catalog.Streams {
		if st.Namespace == s.namespace {
			names = append(names, st.Name)
		}
	}
	s.ElementsMatch([]string{TableName, TableNameWithoutPK, TableNameCompositePK}, names)

	withPK := s.stream(catalog, TableName)
	s.JSONEq(`{"type":"object","properties":{
		"id":{"type":"integer"},
		"name":{"type":"string"},
		"updated_at":{"type":"string","format":"date"}}}`, string(withPK.JSONSchema))
	s.Equal([][]string{{"id"}}, withPK.SourceDefinedPrimaryKey)
	s.ElementsMatch([]protocol.SyncMode{protocol.SyncModeFullRefresh, protocol.SyncModeIncremental}, withPK.SupportedSyncModes)

	s.Empty(s.stream(catalog, TableNameWithoutPK).SourceDefinedPrimaryKey)
	s.Equal([][]string{{"first_name"}, {"last_name"}}, s.stream(catalog, TableNameCompositePK).SourceDefinedPrimaryKey)
}

func (s *AcceptanceSuite) TestReadSuccess() {
	messages := s.read(nil, s.configured(TableName, protocol.SyncModeFullRefresh))

	s.ElementsMatch(canonicalRows(), s.records(messages))
	for _, m := range messages {
		s.Equal(protocol.MessageRecord, m.Type, "full refresh emits only records")
		s.Equal(TableName, m.Record.Stream)
		s.Equal(s.namespace, m.Record.Namespace)
	}
}

func (s *AcceptanceSuite) TestReadOneColumn() {
	stream := s.configured(TableName, protocol.SyncModeFullRefresh)
	stream.Stream.JSONSchema = json.RawMessage(`{"type":"object","properties":{"id":{"type":"integer"}}}`)

	s.ElementsMatch([]map[string]interface{}{
		{"id": float64(1)}, {"id": float64(2)}, {"id": float64(3)},
	}, s.records(s.read(nil, stream)))
}

func (s *AcceptanceSuite) TestReadMultipleTables() {
	messages := s.read(nil,
		s.configured(TableName, protocol.SyncModeFullRefresh),
		s.configured(TableNameCompositePK, protocol.SyncModeFullRefresh),
	)

	perStream := map[string]int{}
	for _, m := range messages {
		perStream[m.Record.Stream]++
	}
	s.Equal(map[string]int{TableName: 3, TableNameCompositePK: 3}, perStream)
}

func (s *AcceptanceSuite) TestTablesWithQuoting() {
	columns := fmt.Sprintf("id INTEGER, %s VARCHAR(200)", s.dialect.QuoteIdentifier("last name"))
	s.createTable(TableNameWithSpaces, columns, []string{"id"})
	s.insert(TableNameWithSpaces, fmt.Sprintf("id, %s", s.dialect.QuoteIdentifier("last name")),
		"(1,'picard')", "(2, 'crusher')", "(3, 'vash')")

	stream := s.configured(TableNameWithSpaces, protocol.SyncModeFullRefresh)
	s.ElementsMatch([]map[string]interface{}{
		{"id": float64(1), "last name": "picard"},
		{"id": float64(2), "last name": "crusher"},
		{"id": float64(3), "last name": "vash"},
	}, s.records(s.read(nil, stream)))
}

// incrementalCursorCheck reads TableName incrementally from initial and
// checks the emitted rows and the resulting cursor.
func (s *AcceptanceSuite) incrementalCursorCheck(initialField, cursorField, initial, endCursor string, expected []map[string]interface{}) {
	state := &protocol.DBState{Streams: []protocol.DBStreamState{{
		StreamName:      TableName,
		StreamNamespace: s.namespace,
		CursorField:     []string{initialField},
		Cursor:          &initial,
	}}}

	messages := s.read(state, s.configured(TableName, protocol.SyncModeIncremental, cursorField))
	s.ElementsMatch(expected, s.records(messages))

	cursor := s.cursorAfter(messages, TableName)
	s.Require().NotNil(cursor)
	s.Equal(endCursor, *cursor)
	s.Equal(protocol.MessageState, messages[len(messages)-1].Type)
}

func (s *AcceptanceSuite) TestIncrementalIntCheckCursor() {
	s.incrementalCursorCheck("id", "id", "2", "3", []map[string]interface{}{row(3, "vash", "2006-10-19")})
}

func (s *AcceptanceSuite) TestIncrementalStringCheckCursor() {
	s.incrementalCursorCheck("name", "name", "patent", "vash", []map[string]interface{}{
		row(1, "picard", "2004-10-19"),
		row(3, "vash", "2006-10-19"),
	})
}

func (s *AcceptanceSuite) TestIncrementalDateCheckCursor() {
	s.incrementalCursorCheck("updated_at", "updated_at", "2005-10-18", "2006-10-19", []map[string]interface{}{
		row(2, "crusher", "2005-10-19"),
		row(3, "vash", "2006-10-19"),
	})
}

func (s *AcceptanceSuite) TestIncrementalCursorChanges() {
	// The saved cursor belongs to another field, so the read starts over.
	s.incrementalCursorCheck("id", "name", "2", "vash", canonicalRows())
}

func (s *AcceptanceSuite) TestIncrementalNoNewRows() {
	s.incrementalCursorCheck("id", "id", "3", "3", nil)
}

func (s *AcceptanceSuite) TestReadOneTableIncrementallyTwice() {
	stream := s.configured(TableName, protocol.SyncModeIncremental, "id")

	first := s.read(nil, stream)
	s.ElementsMatch(canonicalRows(), s.records(first))
	s.Require().NotNil(s.cursorAfter(first, TableName))
	s.Equal("3", *s.cursorAfter(first, TableName))

	s.insert(TableName, "id, name, updated_at",
		"(4,'riker', '2006-10-19')",
		"(5, 'data', '2006-10-19')")

	state := first[len(first)-1].State.Data
	second := s.read(state, stream)
	s.ElementsMatch([]map[string]interface{}{
		row(4, "riker", "2006-10-19"),
		row(5, "data", "2006-10-19"),
	}, s.records(second))
	s.Equal("5", *s.cursorAfter(second, TableName))
}

func (s *AcceptanceSuite) TestReadUnknownStream() {
	stream := s.configured(TableName, protocol.SyncModeFullRefresh)
	stream.Stream.Name = "does_not_exist"

	_, err := s.source.ReadAll(s.ctx, s.config, &protocol.ConfiguredCatalog{Streams: []protocol.ConfiguredStream{stream}}, nil)
	s.Error(err)
}
