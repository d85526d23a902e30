package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
)

func main() {
	shutdownTracing, err := Tracing(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure tracing")
	}

	handler, err := live()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure handler")
	}

	// the runtime sends SIGTERM before shutting the execution environment
	// down, which is the last chance to flush batched spans
	lambda.StartWithOptions(handler, lambda.WithEnableSIGTERM(func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to flush traces")
		}
	}))
}
