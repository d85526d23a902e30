package ds

import (
	"context"
	"reflect"
	"regexp"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var placeholder = regexp.MustCompile(`:[A-Za-z0-9_]+`)

// fakeTable is an in-memory stand-in for a single item table. It understands
// just enough of the expressions the counter store builds: one SET of the
// value, an optional equality condition on the value and attribute_not_exists.
type fakeTable struct {
	mu   sync.Mutex
	item map[string]types.AttributeValue

	gets    int
	updates int

	getErr    error
	updateErr error
	// beforeUpdate runs, without the lock, ahead of every update.
	beforeUpdate func(table *fakeTable)
	// block makes reads wait for the caller's context.
	block bool
}

var _ API = (*fakeTable)(nil)

func (f *fakeTable) set(item map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.item = item
}

func (f *fakeTable) setValue(value string) {
	f.set(map[string]types.AttributeValue{
		KeyAttribute:   &types.AttributeValueMemberS{Value: "total"},
		ValueAttribute: &types.AttributeValueMemberN{Value: value},
	})
}

func (f *fakeTable) setString(value string) {
	f.set(map[string]types.AttributeValue{
		KeyAttribute:   &types.AttributeValueMemberS{Value: "total"},
		ValueAttribute: &types.AttributeValueMemberS{Value: value},
	})
}

func (f *fakeTable) value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.item[ValueAttribute].(*types.AttributeValueMemberN); ok {
		return n.Value
	}
	return ""
}

func (f *fakeTable) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++

	if f.getErr != nil {
		return nil, f.getErr
	}

	out := &dynamodb.GetItemOutput{}
	if f.item != nil {
		out.Item = make(map[string]types.AttributeValue, len(f.item))
		for k, v := range f.item {
			out.Item[k] = v
		}
	}

	return out, nil
}

func (f *fakeTable) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate(f)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++

	if f.updateErr != nil {
		return nil, f.updateErr
	}

	if params.ConditionExpression != nil {
		// DynamoDB equality compares type and value, N "77" never equals S "77"
		expected := params.ExpressionAttributeValues[placeholder.FindString(*params.ConditionExpression)]
		if !reflect.DeepEqual(f.item[ValueAttribute], expected) {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}
	}

	next := params.ExpressionAttributeValues[placeholder.FindString(*params.UpdateExpression)]
	if f.item == nil {
		f.item = map[string]types.AttributeValue{KeyAttribute: params.Key[KeyAttribute]}
	}
	f.item[ValueAttribute] = next

	return &dynamodb.UpdateItemOutput{
		Attributes: map[string]types.AttributeValue{ValueAttribute: next},
	}, nil
}

func (f *fakeTable) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if params.ConditionExpression != nil && f.item != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}

	f.item = params.Item
	return &dynamodb.PutItemOutput{}, nil
}
