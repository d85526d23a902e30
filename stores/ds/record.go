package ds

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"

	plate "github.com/weegigs/steel-plate-go"
)

const (
	KeyAttribute   = "key"
	ValueAttribute = "value"
)

type recordKey struct {
	Key string `dynamodbav:"key"`
}

type record struct {
	Key   string `dynamodbav:"key"`
	Value uint32 `dynamodbav:"value"`
}

func counterKey() (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(recordKey{Key: plate.CounterKey})
}

// totalFrom extracts the counter value from an item. The value is normally a
// number attribute, a decimal string is accepted as well.
func totalFrom(op string, item map[string]types.AttributeValue) (plate.Total, error) {
	if len(item) == 0 {
		return 0, plate.NewStoreError(plate.RecordMissing, op, errors.Errorf("no %q record", plate.CounterKey))
	}

	attr, ok := item[ValueAttribute]
	if !ok {
		return 0, plate.NewStoreError(plate.AttributeMissing, op, errors.Errorf("record has no %q attribute", ValueAttribute))
	}

	var text string
	switch v := attr.(type) {
	case *types.AttributeValueMemberN:
		text = v.Value
	case *types.AttributeValueMemberS:
		text = v.Value
	default:
		return 0, plate.NewStoreError(plate.MalformedValue, op, fmt.Errorf("unexpected attribute type %T", attr))
	}

	value, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, plate.NewStoreError(plate.MalformedValue, op, errors.Wrapf(err, "failed to parse %q", text))
	}

	return plate.Total(value), nil
}

func sum(op string, current plate.Total, delta plate.Delta) (plate.Total, error) {
	next := uint64(current) + uint64(delta)
	if next > math.MaxUint32 {
		return 0, plate.NewStoreError(plate.Overflow, op, errors.Errorf("%d + %d exceeds %d", current, delta, uint32(math.MaxUint32)))
	}

	return plate.Total(next), nil
}
