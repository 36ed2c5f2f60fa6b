package testing

import (
	"context"
	"net/http"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	contextutil "github.com/carlosnayan/source-clickhouse/internal/context"
	"github.com/carlosnayan/source-clickhouse/internal/dialect"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/logger"
	"github.com/carlosnayan/source-clickhouse/internal/source"
)

const (
	ClickHouseImage    = "clickhouse/clickhouse-server:22.5"
	clickHouseHTTPPort = "8123/tcp"
)

// ClickHouseFixture runs the acceptance suite against a throwaway ClickHouse
// server reached over HTTP.
type ClickHouseFixture struct {
	BaseFixture

	Image          string
	Username       string
	Password       string
	StartupTimeout time.Duration

	dialect   dialect.Dialect
	container testcontainers.Container
	config    *config.Config
}

func NewClickHouseFixture() *ClickHouseFixture {
	return &ClickHouseFixture{
		BaseFixture:    NewBaseFixture(source.NewClickHouse()),
		Image:          ClickHouseImage,
		Username:       "default",
		StartupTimeout: contextutil.ContainerStartupTimeout,
		dialect:        dialect.GetDialect("clickhouse"),
	}
}

// containerRequest describes the server container. Readiness is the HTTP
// /ping endpoint answering 200.
func (f *ClickHouseFixture) containerRequest() testcontainers.ContainerRequest {
	req := testcontainers.ContainerRequest{
		Image:        f.Image,
		ExposedPorts: []string{clickHouseHTTPPort},
		WaitingFor: wait.ForHTTP("/ping").
			WithPort(clickHouseHTTPPort).
			WithStatusCodeMatcher(func(status int) bool { return status == http.StatusOK }).
			WithStartupTimeout(f.StartupTimeout),
	}
	if f.Username != "default" || f.Password != "" {
		req.Env = map[string]string{
			"CLICKHOUSE_USER":     f.Username,
			"CLICKHOUSE_PASSWORD": f.Password,
		}
	}
	return req
}

// Setup starts the container and records its config. A container that does
// not become healthy in time is terminated and reported as an error.
func (f *ClickHouseFixture) Setup(ctx context.Context) error {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: f.containerRequest(),
		Started:          true,
	})
	if err != nil {
		if container != nil {
			_ = container.Terminate(ctx)
		}
		return srcerrors.Wrapf(srcerrors.ErrContainerFailed, err, "%s", f.Image)
	}
	f.container = container

	host, err := container.Host(ctx)
	if err != nil {
		return srcerrors.Wrap(srcerrors.ErrContainerFailed, err)
	}
	port, err := container.MappedPort(ctx, clickHouseHTTPPort)
	if err != nil {
		return srcerrors.Wrap(srcerrors.ErrContainerFailed, err)
	}

	f.config = &config.Config{
		Host:     host,
		Port:     port.Int(),
		Database: "default",
		Username: f.Username,
		Password: f.Password,
		SSL:      false,
	}
	logger.Info("clickhouse container ready at %s", f.config.Address())
	return nil
}

// TearDown stops and removes the container.
func (f *ClickHouseFixture) TearDown(ctx context.Context) error {
	if f.container == nil {
		return nil
	}
	ctx, cancel := contextutil.WithTeardownTimeout(ctx)
	defer cancel()

	err := f.container.Terminate(ctx)
	f.container = nil
	return err
}

// Config returns a copy; mutating it does not affect the fixture.
func (f *ClickHouseFixture) Config() *config.Config {
	return f.config.Clone()
}

func (f *ClickHouseFixture) CreateTableQuery(table, columns, primaryKey string) string {
	return f.dialect.CreateTableQuery(table, columns, primaryKey)
}

func (f *ClickHouseFixture) PrimaryKeyClause(columns []string) string {
	return f.dialect.PrimaryKeyClause(columns)
}
