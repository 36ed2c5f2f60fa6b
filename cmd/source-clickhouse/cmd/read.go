package cmd

import (
	"context"

	"github.com/carlosnayan/source-clickhouse/cli"
)

var readCmd = &cli.Command{
	Name:  "read",
	Short: "Read the configured streams",
	Long: `Emits RECORD messages for every configured stream. Incremental streams
are followed by a STATE message holding the state of all streams.`,
	Usage: "source-clickhouse read --config FILE --catalog FILE [--state FILE]",
	Flags: []*cli.Flag{
		configFlag(),
		{
			Name:     "catalog",
			Usage:    "Path to the configured catalog",
			Required: true,
			Value:    &catalogPath,
		},
		{
			Name:  "state",
			Usage: "Path to the state of a previous read",
			Value: &statePath,
		},
	},
	Run: runRead,
}

func runRead(args []string) error {
	src, err := newSource()
	if err != nil {
		return fail(err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}
	catalog, err := loadCatalog()
	if err != nil {
		return fail(err)
	}
	state, err := loadState()
	if err != nil {
		return fail(err)
	}

	if err := src.Read(context.Background(), cfg, catalog, state, encoder.Emit); err != nil {
		return fail(err)
	}
	return nil
}
