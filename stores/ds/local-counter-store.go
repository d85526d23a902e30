package ds

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultLocalEndpoint = "http://localhost:8000"

func LocalCounterStore(ctx context.Context, table TableName, settings Settings) (*CounterStore, error) {
	endpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if endpoint == "" {
		endpoint = DefaultLocalEndpoint
	}

	client, err := EndpointClient(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if err := EnsureTable(ctx, client, table); err != nil {
		return nil, err
	}

	store := NewCounterStore(client, table, settings)
	if _, err := store.Seed(ctx, 0); err != nil {
		return nil, err
	}

	return store, nil
}

// EndpointClient returns a client for a DynamoDB compatible endpoint such as
// DynamoDB Local, using static dummy credentials.
func EndpointClient(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			"dummy", "dummy", "dummy",
		)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load local aws config")
	}

	return newClient(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// EnsureTable creates the counter table when it does not exist yet.
func EnsureTable(ctx context.Context, client *dynamodb.Client, table TableName) error {
	exists, err := tableExists(ctx, client, table)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return createTable(ctx, client, table)
}

func tableExists(ctx context.Context, client *dynamodb.Client, name TableName) (bool, error) {
	required := &dynamodb.DescribeTableInput{TableName: aws.String(name.String())}
	description, err := client.DescribeTable(ctx, required)
	if err != nil {
		var errorType *types.ResourceNotFoundException
		if errors.As(err, &errorType) {
			return false, nil
		}
		return false, err
	}

	if description.Table.TableStatus != types.TableStatusActive {
		return false, errors.Errorf("counter table %s exists but is not active", name)
	}

	return true, nil
}

func createTable(ctx context.Context, client *dynamodb.Client, table TableName) error {
	log.Info().Str("table", table.String()).Msg("creating counter table")

	_, err := client.CreateTable(
		ctx, &dynamodb.CreateTableInput{
			TableName: aws.String(table.String()),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(KeyAttribute), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(KeyAttribute), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to create counter table %s", table)
	}

	return waitForTable(ctx, client, table)
}

func waitForTable(ctx context.Context, client *dynamodb.Client, name TableName) error {
	required := &dynamodb.DescribeTableInput{TableName: aws.String(name.String())}
	return dynamodb.NewTableExistsWaiter(client).Wait(ctx, required, 2*time.Minute)
}
