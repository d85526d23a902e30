// Package dstest runs DynamoDB Local in a container for tests.
package dstest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/weegigs/steel-plate-go/stores/ds"
)

const image = "amazon/dynamodb-local"

// DynamoTestStore starts DynamoDB Local, creates a uniquely named counter
// table and returns a store over it. The record is not seeded. The returned
// function terminates the container.
func DynamoTestStore(ctx context.Context, settings ds.Settings) (*ds.CounterStore, func(), error) {
	db, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        image,
				ExposedPorts: []string{"8000/tcp"},
				WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(time.Minute),
			},
			Started: true,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	tearDown := func() {
		if err := db.Terminate(context.Background()); err != nil {
			panic(err)
		}
	}

	host, err := db.Host(ctx)
	if err != nil {
		tearDown()
		return nil, nil, err
	}

	port, err := db.MappedPort(ctx, "8000/tcp")
	if err != nil {
		tearDown()
		return nil, nil, err
	}

	client, err := ds.EndpointClient(ctx, fmt.Sprintf("http://%s:%s", host, port.Port()))
	if err != nil {
		tearDown()
		return nil, nil, err
	}

	table := ds.TableName("test-counter-" + strings.ToLower(ulid.Make().String()))
	if err := ds.EnsureTable(ctx, client, table); err != nil {
		tearDown()
		return nil, nil, err
	}

	return ds.NewCounterStore(client, table, settings), tearDown, nil
}
