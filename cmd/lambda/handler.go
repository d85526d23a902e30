package main

import (
	"context"
	"os"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	plate "github.com/weegigs/steel-plate-go"
	"github.com/weegigs/steel-plate-go/connectors/gateway"
	"github.com/weegigs/steel-plate-go/site"
	"github.com/weegigs/steel-plate-go/stores/ds"
	"github.com/weegigs/steel-plate-go/support"
)

const (
	ServiceName   = "steel-plate-lambda"
	TraceVariable = "STEEL_PLATE_TRACE"
)

// Logger writes JSON lines to stdout, which Lambda forwards to CloudWatch.
func Logger() *zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	return &logger
}

// Tracing installs the exporter named by STEEL_PLATE_TRACE, "none" when
// unset, so the handler and DynamoDB spans leave the function.
func Tracing(ctx context.Context) (func(context.Context) error, error) {
	return support.Tracing(ctx, ServiceName, os.Getenv(TraceVariable))
}

func createHandler(handler *plate.Handler, log *zerolog.Logger) gateway.Handler {
	return gateway.NewHandler(handler, gateway.Logger(log))
}

var Live = wire.NewSet(
	ds.Live,
	site.Load,
	wire.Bind(new(plate.Site), new(*site.Site)),
	Logger,
	plate.NewHandler,
	createHandler,
)
