package testing

import (
	"context"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	contextutil "github.com/carlosnayan/source-clickhouse/internal/context"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/source"
)

const PostgresImage = "postgres:16-alpine"

// PostgresFixture runs the suite against PostgreSQL, the one engine here
// with schemas below the database.
type PostgresFixture struct {
	BaseFixture

	Image string

	container *postgres.PostgresContainer
	config    *config.Config
}

func NewPostgresFixture() *PostgresFixture {
	return &PostgresFixture{
		BaseFixture: NewBaseFixture(source.NewPostgreSQL()),
		Image:       PostgresImage,
	}
}

func (f *PostgresFixture) Setup(ctx context.Context) error {
	container, err := postgres.Run(ctx, f.Image,
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(contextutil.ContainerStartupTimeout),
		),
	)
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
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return srcerrors.Wrap(srcerrors.ErrContainerFailed, err)
	}

	f.config = &config.Config{
		Host:     host,
		Port:     port.Int(),
		Database: "test",
		Username: "test",
		Password: "test",
	}
	return nil
}

func (f *PostgresFixture) TearDown(ctx context.Context) error {
	if f.container == nil {
		return nil
	}
	ctx, cancel := contextutil.WithTeardownTimeout(ctx)
	defer cancel()

	err := f.container.Terminate(ctx)
	f.container = nil
	return err
}

func (f *PostgresFixture) Config() *config.Config {
	return f.config.Clone()
}

func (f *PostgresFixture) SupportsSchemas() bool {
	return true
}
