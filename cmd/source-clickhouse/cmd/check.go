package cmd

import (
	"context"

	"github.com/carlosnayan/source-clickhouse/cli"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
)

var checkCmd = &cli.Command{
	Name:  "check",
	Short: "Test the connection",
	Long: `Connects with the given config and runs a health-check query.
A failed check is reported as a CONNECTION_STATUS message, not an error.`,
	Usage: "source-clickhouse check --config FILE",
	Flags: []*cli.Flag{configFlag()},
	Run:   runCheck,
}

func runCheck(args []string) error {
	src, err := newSource()
	if err != nil {
		return fail(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		// Config errors are a failed check too.
		status := protocol.ConnectionStatus{
			Status:  protocol.StatusFailed,
			Message: srcerrors.SanitizeError(err).Error(),
		}
		return encoder.Emit(protocol.NewConnectionStatusMessage(status))
	}

	status := src.Check(context.Background(), cfg)
	return encoder.Emit(protocol.NewConnectionStatusMessage(status))
}
