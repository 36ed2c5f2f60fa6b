package testing

import (
	"context"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carlosnayan/source-clickhouse/internal/config"
	contextutil "github.com/carlosnayan/source-clickhouse/internal/context"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/source"
)

const (
	MySQLImage    = "mysql:8.0"
	mysqlPort     = "3306/tcp"
	mysqlPassword = "test"
)

// MySQLFixture runs the suite against MySQL, where the database is the
// namespace.
type MySQLFixture struct {
	BaseFixture

	Image string

	container testcontainers.Container
	config    *config.Config
}

func NewMySQLFixture() *MySQLFixture {
	return &MySQLFixture{
		BaseFixture: NewBaseFixture(source.NewMySQL()),
		Image:       MySQLImage,
	}
}

func (f *MySQLFixture) Setup(ctx context.Context) error {
	// The entrypoint starts a temporary server without networking first, so
	// the second "ready for connections" is the real one.
	req := testcontainers.ContainerRequest{
		Image:        f.Image,
		ExposedPorts: []string{mysqlPort},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("ready for connections").
				WithOccurrence(2).
				WithStartupTimeout(contextutil.ContainerStartupTimeout*2),
			wait.ForListeningPort(mysqlPort).
				WithStartupTimeout(contextutil.ContainerStartupTimeout),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
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
	port, err := container.MappedPort(ctx, mysqlPort)
	if err != nil {
		return srcerrors.Wrap(srcerrors.ErrContainerFailed, err)
	}

	f.config = &config.Config{
		Host:     host,
		Port:     port.Int(),
		Database: "test",
		Username: "root",
		Password: mysqlPassword,
	}
	return nil
}

func (f *MySQLFixture) TearDown(ctx context.Context) error {
	if f.container == nil {
		return nil
	}
	ctx, cancel := contextutil.WithTeardownTimeout(ctx)
	defer cancel()

	err := f.container.Terminate(ctx)
	f.container = nil
	return err
}

func (f *MySQLFixture) Config() *config.Config {
	return f.config.Clone()
}
