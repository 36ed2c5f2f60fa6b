package cmd

import (
	"context"

	"github.com/carlosnayan/source-clickhouse/cli"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

var discoverCmd = &cli.Command{
	Name:  "discover",
	Short: "Print the catalog of readable tables",
	Usage: "source-clickhouse discover --config FILE",
	Flags: []*cli.Flag{configFlag()},
	Run:   runDiscover,
}

func runDiscover(args []string) error {
	src, err := newSource()
	if err != nil {
		return fail(err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	catalog, err := src.Discover(context.Background(), cfg)
	if err != nil {
		return fail(err)
	}
	return encoder.Emit(protocol.NewCatalogMessage(*catalog))
}
