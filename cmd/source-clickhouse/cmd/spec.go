package cmd

import (
	"github.com/carlosnayan/source-clickhouse/cli"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

var specCmd = &cli.Command{
	Name:  "spec",
	Short: "Print the connector specification",
	Usage: "source-clickhouse spec",
	Run:   runSpec,
}

func runSpec(args []string) error {
	src, err := newSource()
	if err != nil {
		return fail(err)
	}
	return encoder.Emit(protocol.NewSpecMessage(src.Spec()))
}
