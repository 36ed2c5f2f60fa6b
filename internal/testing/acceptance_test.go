package testing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	contextutil "github.com/carlosnayan/source-clickhouse/internal/context"
	"github.com/carlosnayan/source-clickhouse/internal/logger"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
	"github.com/carlosnayan/source-clickhouse/internal/source"
)

func TestMain(m *testing.M) {
	logger.SetLogLevels(logger.LevelsFromEnv())
	os.Exit(m.Run())
}

func TestSQLiteAcceptance(t *testing.T) {
	Run(t, NewSQLiteFixture())
}

func TestClickHouseFixture_PrimaryKeyClause(t *testing.T) {
	f := NewClickHouseFixture()

	tests := []struct {
		columns  []string
		expected string
	}{
		{nil, ""},
		{[]string{}, ""},
		{[]string{"id"}, "(id)"},
		{[]string{"first_name", "last_name"}, "(first_name,last_name)"},
		{[]string{"z", "a"}, "(z,a)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, f.PrimaryKeyClause(tt.columns), "columns %v", tt.columns)
	}
}

func TestClickHouseFixture_CreateTableQuery(t *testing.T) {
	f := NewClickHouseFixture()

	assert.Equal(t,
		"CREATE TABLE id_and_name_without_pk(id INTEGER, name VARCHAR(200), updated_at DATE) Engine = TinyLog",
		f.CreateTableQuery("id_and_name_without_pk", ColumnClause, f.PrimaryKeyClause(nil)))

	assert.Equal(t,
		"CREATE TABLE id_and_name(id INTEGER, name VARCHAR(200), updated_at DATE) ENGINE = MergeTree() ORDER BY (id) PRIMARY KEY (id)",
		f.CreateTableQuery("id_and_name", ColumnClause, f.PrimaryKeyClause([]string{"id"})))

	assert.Equal(t,
		"CREATE TABLE full_name_composite_pk(first_name VARCHAR(200), last_name VARCHAR(200), updated_at DATE) ENGINE = MergeTree() ORDER BY (first_name,last_name) PRIMARY KEY (first_name,last_name)",
		f.CreateTableQuery("full_name_composite_pk", ColumnClauseComposite, f.PrimaryKeyClause([]string{"first_name", "last_name"})))
}

func TestClickHouseFixture_ConfigIsDefensiveCopy(t *testing.T) {
	f := NewClickHouseFixture()
	assert.Nil(t, f.Config(), "no config before Setup")

	f.config = &config.Config{Host: "localhost", Port: 32768, Database: "default", Username: "default"}

	first := f.Config()
	require.NotNil(t, first)
	assert.NotSame(t, f.config, first)
	assert.Equal(t, *f.config, *first)

	first.Host = "elsewhere"
	first.Port = 1
	assert.Equal(t, "localhost", f.Config().Host)
	assert.Equal(t, 32768, f.Config().Port)
	assert.NotSame(t, first, f.Config())
}

func TestClickHouseFixture_Source(t *testing.T) {
	f := NewClickHouseFixture()

	assert.False(t, f.SupportsSchemas())
	assert.Equal(t, "clickhouse", f.DriverName())
	assert.Equal(t, source.NewClickHouse().DriverName(), f.Source().DriverName())
	assert.NotSame(t, f.Source(), f.Source(), "each call returns a new source")
}

func TestClickHouseFixture_ContainerRequest(t *testing.T) {
	f := NewClickHouseFixture()
	req := f.containerRequest()

	assert.Equal(t, "clickhouse/clickhouse-server:22.5", req.Image)
	assert.Equal(t, []string{"8123/tcp"}, req.ExposedPorts)
	assert.Empty(t, req.Env)

	httpWait, ok := req.WaitingFor.(*wait.HTTPStrategy)
	require.True(t, ok, "readiness is an HTTP check, got %T", req.WaitingFor)
	assert.Equal(t, "/ping", httpWait.Path)
	assert.Equal(t, "8123/tcp", string(httpWait.Port))
	assert.True(t, httpWait.StatusCodeMatcher(200))
	assert.False(t, httpWait.StatusCodeMatcher(503))
	assert.Equal(t, contextutil.ContainerStartupTimeout, *httpWait.Timeout())

	f.Password = "secret"
	assert.Equal(t, map[string]string{"CLICKHOUSE_USER": "default", "CLICKHOUSE_PASSWORD": "secret"}, f.containerRequest().Env)
}

func TestClickHouseFixture_TearDownWithoutSetup(t *testing.T) {
	assert.NoError(t, NewClickHouseFixture().TearDown(context.Background()))
}

func TestBaseFixture_Defaults(t *testing.T) {
	b := NewBaseFixture(source.NewSQLite())

	assert.False(t, b.SupportsSchemas())
	assert.Equal(t, "sqlite3", b.DriverName())
	assert.Equal(t, "", b.PrimaryKeyClause(nil))
	assert.Equal(t, "PRIMARY KEY (a,b)", b.PrimaryKeyClause([]string{"a", "b"}))
	assert.Equal(t, "CREATE TABLE t(id INTEGER, PRIMARY KEY (id))", b.CreateTableQuery("t", "id INTEGER", "PRIMARY KEY (id)"))
	assert.NoError(t, b.Setup(context.Background()))
	assert.NoError(t, b.TearDown(context.Background()))

	assert.True(t, NewPostgresFixture().SupportsSchemas())
	assert.False(t, NewMySQLFixture().SupportsSchemas())
}

func TestSQLiteFixture_MissingDatabaseConfig(t *testing.T) {
	f := NewSQLiteFixture()
	require.NoError(t, f.Setup(context.Background()))
	t.Cleanup(func() { _ = f.TearDown(context.Background()) })

	var _ MissingDatabaseConfigurer = f

	bad := f.MissingDatabaseConfig()
	assert.Equal(t, filepath.Join(f.dir, "missing", "does_not_exist.db"), bad.Database)
	assert.NotEqual(t, f.Config().Database, bad.Database)
	assert.Equal(t, f.Config().Host, bad.Host)

	status := f.Source().Check(context.Background(), bad)
	assert.Equal(t, protocol.StatusFailed, status.Status)
	assert.NotEmpty(t, status.Message)

	assert.Equal(t, protocol.StatusSucceeded, f.Source().Check(context.Background(), f.Config()).Status)
}
