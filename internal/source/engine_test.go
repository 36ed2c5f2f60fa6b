package source

import (
	"net/url"
	"strings"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

func TestClickHouse_Options(t *testing.T) {
	cfg := &config.Config{
		Host: "localhost", Port: 8123, Database: "default",
		Username: "default", Password: "secret",
		JDBCURLParams: "max_execution_time=60",
	}

	opts, err := NewClickHouse().Options(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:8123"}, opts.Addr)
	assert.Equal(t, clickhouse.HTTP, opts.Protocol)
	assert.Equal(t, "default", opts.Auth.Database)
	assert.Equal(t, "secret", opts.Auth.Password)
	assert.Nil(t, opts.TLS)
	assert.Equal(t, "60", opts.Settings["max_execution_time"])

	cfg.SSL = true
	opts, err = NewClickHouse().Options(cfg)
	require.NoError(t, err)
	assert.NotNil(t, opts.TLS)

	cfg.JDBCURLParams = "broken"
	_, err = NewClickHouse().Options(cfg)
	assert.ErrorIs(t, err, srcerrors.ErrInvalidConfig)
}

func TestClickHouse_Namespaces(t *testing.T) {
	e := NewClickHouse()
	assert.Equal(t, "analytics", e.DefaultNamespace(&config.Config{Database: "analytics"}))
	assert.ElementsMatch(t, []string{"system", "information_schema", "INFORMATION_SCHEMA"}, e.ExcludedNamespaces())
	assert.True(t, isExcluded(e, "system"))
	assert.False(t, isExcluded(e, "default"))
	assert.Equal(t, "clickhouse", e.DriverName())
}

func TestPostgreSQL_ConnectionString(t *testing.T) {
	dsn, err := NewPostgreSQL().ConnectionString(&config.Config{
		Host: "localhost", Port: 5432, Database: "test",
		Username: "user", Password: "p@ss word",
	})
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "/test", u.Path)
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss word", password)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestMySQL_DSN(t *testing.T) {
	dsn, err := NewMySQL().DSN(&config.Config{
		Host: "127.0.0.1", Port: 3306, Database: "test",
		Username: "root", Password: "pw", JDBCURLParams: "charset=utf8mb4",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "root:pw@tcp(127.0.0.1:3306)/test?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestBuildQuery(t *testing.T) {
	table := Table{
		Namespace: "default",
		Name:      "id and name",
		Columns: []Column{
			{Name: "id", Type: dialect.JSONType{Type: dialect.TypeInteger}},
			{Name: "name", Type: dialect.JSONType{Type: dialect.TypeString}},
		},
	}
	ch := dialect.GetDialect("clickhouse")

	full := &streamPlan{key: table.Key(), table: table, columns: table.Columns, mode: protocol.SyncModeFullRefresh}
	query, args, _ := buildQuery(ch, full)
	assert.Equal(t, "SELECT `id`, `name` FROM `default`.`id and name`", query)
	assert.Empty(t, args)

	cursor := table.Columns[0]
	previous := "2"
	incremental := &streamPlan{
		key: table.Key(), table: table, columns: table.Columns[1:], mode: protocol.SyncModeIncremental,
		cursor: &cursor, previous: &previous, since: int64(2),
	}
	query, args, selected := buildQuery(ch, incremental)
	assert.Equal(t, "SELECT `name`, `id` FROM `default`.`id and name` WHERE `id` > ? ORDER BY `id` ASC", query)
	assert.Equal(t, []interface{}{int64(2)}, args)
	assert.Len(t, selected, 2, "cursor column is selected even when not projected")

	pg := dialect.GetDialect("postgresql")
	incremental.key.Namespace = "public"
	query, _, _ = buildQuery(pg, incremental)
	assert.Equal(t, `SELECT "name", "id" FROM "public"."id and name" WHERE "id" > $1 ORDER BY "id" ASC`, query)
}

func TestSplitKeyExpression(t *testing.T) {
	assert.Equal(t, []string{"id"}, splitKeyExpression("id"))
	assert.Equal(t, []string{"first_name", "last_name"}, splitKeyExpression("first_name, last_name"))
	assert.Equal(t, []string{"a", "b"}, splitKeyExpression("(a,b)"))
	assert.Nil(t, splitKeyExpression(""))
}
