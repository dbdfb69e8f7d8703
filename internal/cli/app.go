// Package cli wires the tonelli command: flag and config resolution, logging,
// metrics, and one subcommand per operation.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"tonelli/internal/config"
	"tonelli/internal/log"
	"tonelli/internal/metrics"
)

// Automatically set through -ldflags
// Example: go install -ldflags "-X tonelli/internal/cli.version=`git describe --tags`"
var version = "master"

const envKey = "env"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Load settings from a .toml, .yaml or .yml `FILE`.",
	EnvVars: []string{"TONELLI_CONFIG"},
}

var formatFlag = &cli.StringFlag{
	Name:  "format",
	Value: string(config.FormatText),
	Usage: "Output format: text or json.",
}

var logLevelFlag = &cli.StringFlag{
	Name:  "log-level",
	Value: "info",
	Usage: "Log level: debug, info, warn or error.",
}

var logJSONFlag = &cli.BoolFlag{
	Name:  "log-json",
	Usage: "Write logs as JSON instead of console text.",
}

var strictFlag = &cli.BoolFlag{
	Name:  "strict",
	Usage: "Reject a modulus that fails a probabilistic primality test before computing.",
}

var metricsFileFlag = &cli.StringFlag{
	Name:  "metrics-file",
	Usage: "Write Prometheus metrics to `FILE` (textfile collector format) on exit.",
}

// env is what every command action needs; built once in Before.
type env struct {
	cfg *config.Config
	log log.Logger
	rec *metrics.Recorder
	out io.Writer
}

// NewApp builds the command. out receives results, errOut receives logs.
func NewApp(out, errOut io.Writer) *cli.App {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	app := cli.NewApp()
	app.Name = "tonelli"
	app.Usage = "square roots modulo a prime (Tonelli–Shanks)"
	app.Version = version
	app.Writer = out
	app.ErrWriter = errOut
	app.Flags = []cli.Flag{configFlag, formatFlag, logLevelFlag, logJSONFlag, strictFlag, metricsFileFlag}
	app.Commands = appCommands
	app.Metadata = map[string]interface{}{}
	app.Before = func(c *cli.Context) error {
		e, err := newEnv(c, out, errOut)
		if err != nil {
			return err
		}
		c.App.Metadata[envKey] = e
		return nil
	}
	app.After = func(c *cli.Context) error {
		e, ok := c.App.Metadata[envKey].(*env)
		if !ok {
			return nil
		}
		defer e.log.Sync() //nolint:errcheck
		if e.cfg.MetricsFile == "" {
			return nil
		}
		if err := e.rec.WriteTextfile(e.cfg.MetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		e.log.Debugw("metrics written", "path", e.cfg.MetricsFile)
		return nil
	}
	// errors are returned from Run; the caller decides how to exit
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

// resolveConfig applies the flags the user set over the config file over the
// defaults.
func resolveConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if c.IsSet(formatFlag.Name) {
		cfg.Format = config.Format(c.String(formatFlag.Name))
	}
	if c.IsSet(logLevelFlag.Name) {
		cfg.LogLevel = c.String(logLevelFlag.Name)
	}
	if c.IsSet(logJSONFlag.Name) {
		cfg.LogJSON = c.Bool(logJSONFlag.Name)
	}
	if c.IsSet(strictFlag.Name) {
		cfg.Strict = c.Bool(strictFlag.Name)
	}
	if c.IsSet(metricsFileFlag.Name) {
		cfg.MetricsFile = c.String(metricsFileFlag.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// normalise aliases such as "txt"
	cfg.Format, _ = config.ParseFormat(string(cfg.Format))
	return cfg, nil
}

func newEnv(c *cli.Context, out, errOut io.Writer) (*env, error) {
	cfg, err := resolveConfig(c)
	if err != nil {
		return nil, err
	}
	l := log.New(zapcore.AddSync(errOut), cfg.Level(), cfg.LogJSON).Named("tonelli")
	l.Debugw("configuration resolved",
		"format", cfg.Format, "strict", cfg.Strict, "table_limit", cfg.TableLimit,
		"metrics_file", cfg.MetricsFile)
	return &env{
		cfg: cfg,
		log: l,
		rec: metrics.NewRecorder(nil),
		out: out,
	}, nil
}

func envFrom(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}
