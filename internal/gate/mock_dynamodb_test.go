package gate

import (
	"context"
	"errors"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const tryBeginCondition = "attribute_not_exists(client_key) OR expires_at < :now"

// simpleMock is a small in-memory stand-in for the DynamoDB calls the gate
// makes. It understands exactly the conditional expression the gate uses.
type simpleMock struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	putCalls    int
	getCalls    int
	deleteCalls int
}

func newSimpleMock() *simpleMock {
	return &simpleMock{
		table: map[string]map[string]types.AttributeValue{},
	}
}

func itemKey(item map[string]types.AttributeValue) (string, error) {
	attr, ok := item["client_key"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing client_key")
	}
	return attr.Value, nil
}

func itemExpiry(item map[string]types.AttributeValue) int64 {
	attr, ok := item["expires_at"].(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(attr.Value, 10, 64)
	return n
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++

	k, err := itemKey(params.Item)
	if err != nil {
		return nil, err
	}

	if params.ConditionExpression != nil {
		if *params.ConditionExpression != tryBeginCondition {
			return nil, errors.New("unsupported condition expression: " + *params.ConditionExpression)
		}
		nowAttr, ok := params.ExpressionAttributeValues[":now"].(*types.AttributeValueMemberN)
		if !ok {
			return nil, errors.New("missing :now value")
		}
		now, _ := strconv.ParseInt(nowAttr.Value, 10, 64)
		if existing, ok := m.table[k]; ok && itemExpiry(existing) >= now {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}

	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	k, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return nil, errors.New("UpdateItem not used by the gate")
}

func (m *simpleMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++

	k, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	delete(m.table, k)
	return &dyn.DeleteItemOutput{}, nil
}
