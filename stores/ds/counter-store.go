package ds

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"

	plate "github.com/weegigs/steel-plate-go"
)

// API is the part of the DynamoDB client the counter store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type TableName string

func (name TableName) String() string {
	return string(name)
}

type Consistency string

const (
	// ReadModifyWrite reads the total, adds locally and writes the sum back
	// unconditionally. Concurrent adds can overwrite each other.
	ReadModifyWrite Consistency = "read-modify-write"
	// Optimistic conditions the write on the value read and retries the whole
	// sequence when another writer got there first.
	Optimistic Consistency = "optimistic"
)

type Settings struct {
	Consistency Consistency
	// Timeout bounds each individual DynamoDB call.
	Timeout time.Duration
	// Attempts caps optimistic retries.
	Attempts uint
}

func DefaultSettings() Settings {
	return Settings{
		Consistency: ReadModifyWrite,
		Timeout:     3 * time.Second,
		Attempts:    8,
	}
}

var _ plate.CounterStore = (*CounterStore)(nil)

type CounterStore struct {
	db       API
	table    string
	settings Settings
}

func NewCounterStore(db API, table TableName, settings Settings) *CounterStore {
	defaults := DefaultSettings()
	if settings.Consistency == "" {
		settings.Consistency = defaults.Consistency
	}
	if settings.Timeout <= 0 {
		settings.Timeout = defaults.Timeout
	}
	if settings.Attempts == 0 {
		settings.Attempts = defaults.Attempts
	}

	return &CounterStore{db: db, table: string(table), settings: settings}
}

func (s *CounterStore) Table() TableName {
	return TableName(s.table)
}

func (s *CounterStore) Total(ctx context.Context) (plate.Total, error) {
	total, _, err := s.read(ctx)
	return total, err
}

// read returns the total together with the attribute it was decoded from, so
// a conditional write can compare against exactly what is stored.
func (s *CounterStore) read(ctx context.Context) (plate.Total, types.AttributeValue, error) {
	const op = "get-total"

	key, err := counterKey()
	if err != nil {
		return 0, nil, plate.NewStoreError(plate.Unavailable, op, err)
	}

	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name(ValueAttribute))).
		Build()
	if err != nil {
		return 0, nil, plate.NewStoreError(plate.Unavailable, op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(s.table),
		Key:                      key,
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return 0, nil, unavailable(op, err)
	}

	total, err := totalFrom(op, out.Item)
	if err != nil {
		return 0, nil, err
	}

	return total, out.Item[ValueAttribute], nil
}

func (s *CounterStore) Add(ctx context.Context, delta plate.Delta) (plate.Total, error) {
	if delta < plate.MinDelta {
		return s.Total(ctx)
	}

	if s.settings.Consistency == Optimistic {
		return s.addOptimistic(ctx, delta)
	}

	return s.addReadModifyWrite(ctx, delta)
}

// addReadModifyWrite is deliberately not atomic: two adds that read the same
// total both write current+delta and one of the increments is lost.
func (s *CounterStore) addReadModifyWrite(ctx context.Context, delta plate.Delta) (plate.Total, error) {
	current, err := s.Total(ctx)
	if err != nil {
		return 0, err
	}

	next, err := sum("add", current, delta)
	if err != nil {
		return 0, err
	}

	return s.write(ctx, next, nil)
}

func (s *CounterStore) addOptimistic(ctx context.Context, delta plate.Delta) (plate.Total, error) {
	var total plate.Total

	err := retry.Do(
		func() error {
			current, stored, err := s.read(ctx)
			if err != nil {
				return err
			}

			next, err := sum("add", current, delta)
			if err != nil {
				return err
			}

			total, err = s.write(ctx, next, stored)
			return err
		},
		retry.RetryIf(isConflict),
		retry.Attempts(s.settings.Attempts),
		retry.Delay(5*time.Millisecond),
		retry.MaxDelay(250*time.Millisecond),
		retry.MaxJitter(20*time.Millisecond),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		if !plate.IsStoreError(err) {
			return 0, plate.NewStoreError(plate.Unavailable, "add", err)
		}
		return 0, err
	}

	return total, nil
}

// write stores next as the counter value. When expected is set the write only
// succeeds if the stored attribute still equals it, type included.
func (s *CounterStore) write(ctx context.Context, next plate.Total, expected types.AttributeValue) (plate.Total, error) {
	const op = "add"

	key, err := counterKey()
	if err != nil {
		return 0, plate.NewStoreError(plate.Unavailable, op, err)
	}

	builder := expression.NewBuilder().WithUpdate(
		expression.Set(expression.Name(ValueAttribute), expression.Value(uint32(next))),
	)
	if expected != nil {
		builder = builder.WithCondition(
			expression.Name(ValueAttribute).Equal(expression.Value(expected)),
		)
	}

	expr, err := builder.Build()
	if err != nil {
		return 0, plate.NewStoreError(plate.Unavailable, op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	out, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		if isConditionFailure(err) {
			return 0, plate.NewStoreError(plate.Conflict, op, err)
		}
		return 0, unavailable(op, err)
	}

	if len(out.Attributes) == 0 {
		return 0, plate.NewStoreError(plate.AttributeMissing, op, errors.New("update returned no attributes"))
	}

	return totalFrom(op, out.Attributes)
}

// Seed creates the counter record with base unless it already exists. It
// reports whether the record was created.
func (s *CounterStore) Seed(ctx context.Context, base plate.Total) (bool, error) {
	const op = "seed"

	item, err := attributevalue.MarshalMap(record{Key: plate.CounterKey, Value: uint32(base)})
	if err != nil {
		return false, plate.NewStoreError(plate.Unavailable, op, err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(KeyAttribute))).
		Build()
	if err != nil {
		return false, plate.NewStoreError(plate.Unavailable, op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailure(err) {
			return false, nil
		}
		return false, unavailable(op, err)
	}

	return true, nil
}

func isConflict(err error) bool {
	return errors.Is(err, plate.ErrConflict)
}

func isConditionFailure(err error) bool {
	var failed *types.ConditionalCheckFailedException
	return errors.As(err, &failed)
}

func unavailable(op string, err error) error {
	var oe *smithy.OperationError
	if errors.As(err, &oe) {
		return plate.NewStoreError(plate.Unavailable, op, errors.Wrapf(oe.Unwrap(), "%s %s", oe.Service(), oe.Operation()))
	}

	return plate.NewStoreError(plate.Unavailable, op, err)
}
