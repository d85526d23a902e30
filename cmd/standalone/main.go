package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	plate "github.com/weegigs/steel-plate-go"
	"github.com/weegigs/steel-plate-go/connectors/platehttp"
	"github.com/weegigs/steel-plate-go/site"
	"github.com/weegigs/steel-plate-go/stores/ds"
	"github.com/weegigs/steel-plate-go/stores/rds"
	"github.com/weegigs/steel-plate-go/support"
)

var myName = filepath.Base(os.Args[0])

var (
	optAddr     = flag.String("addr", "", "listen address (default $"+support.AddrVariable+" or "+support.DefaultAddr+")")
	optStore    = flag.String("store", "local", "local|dynamo|redis")
	optRedis    = flag.String("redis", "localhost:6379", "addr:port of redis")
	optRedisKey = flag.String("redis-key", rds.DefaultKey, "key of the counter in redis")
	optPrefix   = flag.String("prefix", "", "path prefix stripped before routing")
	optLogLevel = flag.String("log-level", "info", "debug|info|warn|error")
	optTrace    = flag.String("trace", "none", "none|console|otlp|honeycomb")
)

func main() {
	flag.Parse()

	if err := support.LoadEnv(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	logger, err := support.Logger(myName, *optLogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := support.Tracing(ctx, myName, *optTrace)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	content, err := site.Load()
	if err != nil {
		return err
	}

	store, cleanup, err := openStore(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	handler := plate.NewHandler(store, content, &logger)

	addr := *optAddr
	if addr == "" {
		addr = support.Addr()
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           platehttp.NewHandler(handler, platehttp.Logger(&logger), platehttp.Prefix(*optPrefix)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("store", *optStore).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdown)
	})

	return g.Wait()
}

func openStore(ctx context.Context, logger zerolog.Logger) (plate.CounterStore, func(), error) {
	nothing := func() {}

	switch *optStore {
	case "local":
		base, err := support.CountBase()
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Uint32("base", uint32(base)).Msg("using in-memory counter")
		return plate.NewLocalStore(base), nothing, nil

	case "dynamo":
		settings, err := ds.LiveSettings()
		if err != nil {
			return nil, nil, err
		}
		table := ds.LiveTableName()
		logger.Info().Str("table", table.String()).Str("consistency", string(settings.Consistency)).Msg("using dynamodb counter")

		if os.Getenv("DYNAMODB_ENDPOINT") != "" {
			store, err := ds.LocalCounterStore(ctx, table, settings)
			if err != nil {
				return nil, nil, err
			}
			return store, nothing, nil
		}
		return ds.LazyCounterStore(table, settings), nothing, nil

	case "redis":
		client := rds.Client(*optRedis)
		logger.Info().Str("redis", *optRedis).Str("key", *optRedisKey).Msg("using redis counter")
		return rds.NewCounterStore(client, *optRedisKey), func() { _ = client.Close() }, nil

	default:
		return nil, nil, errors.Errorf("unknown store %q", *optStore)
	}
}
