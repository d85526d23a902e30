package ds

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/wire"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	plate "github.com/weegigs/steel-plate-go"
)

const DefaultTableName = TableName("steel-plate")

// Live builds a lazily connected store for the serverless shape. The AWS
// config and client are created on first use and shared by every invocation
// the execution environment serves.
var Live = wire.NewSet(
	LiveTableName,
	LiveSettings,
	LazyCounterStore,
	wire.Bind(new(plate.CounterStore), new(*plate.LazyStore)),
)

func LiveTableName() TableName {
	table := os.Getenv("DYNAMODB_COUNTER_TABLE_NAME")
	if len(table) == 0 {
		return DefaultTableName
	}

	return TableName(table)
}

func LiveSettings() (Settings, error) {
	settings := DefaultSettings()

	switch consistency := Consistency(os.Getenv("DYNAMODB_COUNTER_CONSISTENCY")); consistency {
	case "":
	case ReadModifyWrite, Optimistic:
		settings.Consistency = consistency
	default:
		return Settings{}, errors.Errorf("DYNAMODB_COUNTER_CONSISTENCY %q is not one of %q, %q", consistency, ReadModifyWrite, Optimistic)
	}

	return settings, nil
}

func DefaultAWSConfig(ctx context.Context) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx)
}

func Client(cfg aws.Config) *dynamodb.Client {
	return newClient(cfg)
}

func newClient(cfg aws.Config, optFns ...func(*dynamodb.Options)) *dynamodb.Client {
	otelaws.AppendMiddlewares(&cfg.APIOptions)
	return dynamodb.NewFromConfig(cfg, optFns...)
}

func LazyCounterStore(table TableName, settings Settings) *plate.LazyStore {
	return plate.NewLazyStore(func(ctx context.Context) (plate.CounterStore, error) {
		cfg, err := DefaultAWSConfig(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load aws config")
		}

		return NewCounterStore(Client(cfg), table, settings), nil
	})
}
