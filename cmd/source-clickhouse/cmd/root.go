package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	sourceclickhouse "github.com/carlosnayan/source-clickhouse"
	"github.com/carlosnayan/source-clickhouse/cli"
	"github.com/carlosnayan/source-clickhouse/internal/config"
	srcerrors "github.com/carlosnayan/source-clickhouse/internal/errors"
	"github.com/carlosnayan/source-clickhouse/internal/logger"
	"github.com/carlosnayan/source-clickhouse/internal/protocol"
	"github.com/carlosnayan/source-clickhouse/internal/source"
)

var (
	configPath  string
	catalogPath string
	statePath   string
	engineName  string
	verbose     bool

	// stdout carries protocol messages only; logs go to stderr.
	stdout  io.Writer = os.Stdout
	stderr  io.Writer = os.Stderr
	encoder *protocol.Encoder
)

// Execute runs the connector with the process arguments.
func Execute() error {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes one connector command writing messages to out and logs to errOut.
func Run(args []string, out, errOut io.Writer) error {
	configPath, catalogPath, statePath = "", "", ""
	engineName, verbose = "clickhouse", false
	stdout, stderr = out, errOut
	encoder = protocol.NewEncoder(out)

	app := cli.NewApp(
		"source-clickhouse",
		sourceclickhouse.Version,
		"ClickHouse source connector",
	)
	app.Out = out
	app.Err = errOut

	app.AddGlobalFlag(&cli.Flag{
		Name:  "engine",
		Usage: "Database engine: clickhouse, postgresql, mysql or sqlite (default: clickhouse)",
		Value: &engineName,
	})
	app.AddGlobalFlag(&cli.Flag{
		Name:  "verbose",
		Short: "v",
		Usage: "Log every query to stderr",
		Value: &verbose,
	})

	app.AddCommand(specCmd)
	app.AddCommand(checkCmd)
	app.AddCommand(discoverCmd)
	app.AddCommand(readCmd)

	return app.Run(args)
}

// newSource builds the source for --engine, logging at LOG_LEVEL or
// everything under --verbose.
func newSource() (*source.Source, error) {
	engine, err := source.GetEngine(engineName)
	if err != nil {
		return nil, err
	}

	levels := logger.LevelsFromEnv()
	if verbose {
		levels = []string{"query", "info", "warn", "error"}
	}
	return source.New(engine, source.WithLogger(logger.NewLogger(levels, stderr))), nil
}

func configFlag() *cli.Flag {
	return &cli.Flag{
		Name:     "config",
		Short:    "c",
		Usage:    "Path to the connection config (.json or .toml)",
		Required: true,
		Value:    &configPath,
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func loadCatalog() (*protocol.ConfiguredCatalog, error) {
	data, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", catalogPath, err)
	}
	var catalog protocol.ConfiguredCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, srcerrors.Wrapf(srcerrors.ErrInvalidCatalog, err, "failed to parse %s", catalogPath)
	}
	return &catalog, nil
}

// loadState returns an empty state when no --state was given.
func loadState() (*protocol.DBState, error) {
	if statePath == "" {
		return &protocol.DBState{}, nil
	}
	data, err := os.ReadFile(statePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read state %s: %w", statePath, err)
	}
	return protocol.ParseState(data)
}

// fail reports err as a LOG message before returning it, so the platform
// sees the reason even when it only reads stdout.
func fail(err error) error {
	msg := srcerrors.SanitizeError(err).Error()
	if emitErr := encoder.Emit(protocol.NewLogMessage("ERROR", msg)); emitErr != nil {
		return emitErr
	}
	return err
}
