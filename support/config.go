// Package support holds the process level configuration shared by the
// binaries: environment, logging and tracing setup.
package support

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	plate "github.com/weegigs/steel-plate-go"
)

const (
	CountBaseVariable = "STEEL_PLATE_COUNT_BASE"
	AddrVariable      = "STEEL_PLATE_ADDR"
	DefaultAddr       = "127.0.0.1:8082"

	HoneycombTeamVariable    = "HONEYCOMB_API_KEY"
	HoneycombDatasetVariable = "HONEYCOMB_DATASET"
)

// LoadEnv reads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to load .env")
	}

	return nil
}

// CountBase returns the seed for the in-memory counter. An unset variable
// seeds zero; a value that is not an unsigned 32 bit integer is an error.
func CountBase() (plate.Total, error) {
	raw, ok := os.LookupEnv(CountBaseVariable)
	if !ok {
		return 0, nil
	}

	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "%s=%q is not a valid count", CountBaseVariable, raw)
	}

	return plate.Total(value), nil
}

func Addr() string {
	if addr := os.Getenv(AddrVariable); addr != "" {
		return addr
	}

	return DefaultAddr
}

// Logger returns a JSON logger at level, stamped with the application name.
func Logger(app string, level string) (zerolog.Logger, error) {
	lv, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "invalid log level %q", level)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(os.Stderr).Level(lv).With().Timestamp().Str("app", app).Logger(), nil
}

// Tracing installs the exporter named by kind ("none", "console", "otlp" or
// "honeycomb") and returns the provider shutdown function.
func Tracing(ctx context.Context, app string, kind string) (func(context.Context) error, error) {
	switch kind {
	case "", "none":
		return func(context.Context) error { return nil }, nil
	case "console":
		exporter, err := plate.ConsoleExporter()
		if err != nil {
			return nil, errors.Wrap(err, "failed to create console exporter")
		}
		return plate.InstallTracing(app, exporter), nil
	case "otlp":
		exporter, err := plate.OTLPExporter(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create otlp exporter")
		}
		return plate.InstallTracing(app, exporter), nil
	case "honeycomb":
		team := os.Getenv(HoneycombTeamVariable)
		if team == "" {
			return nil, errors.Errorf("%s is required for honeycomb tracing", HoneycombTeamVariable)
		}
		dataset := os.Getenv(HoneycombDatasetVariable)
		if dataset == "" {
			dataset = app
		}

		exporter, err := plate.HoneycombExporter(ctx, team, dataset)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create honeycomb exporter")
		}
		return plate.InstallTracing(app, exporter), nil
	default:
		return nil, errors.Errorf("unknown trace exporter %q", kind)
	}
}
