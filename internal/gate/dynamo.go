package gate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/kavidoi/reservas-laberinto/internal/aws"
)

// gateRecord is the shape persisted in the gate DynamoDB table.
// expires_at doubles as the table's TTL attribute.
type gateRecord struct {
	ClientKey string    `dynamodbav:"client_key"` // PK
	State     string    `dynamodbav:"state"`
	RecordID  string    `dynamodbav:"record_id,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
	ExpiresAt int64     `dynamodbav:"expires_at"` // TTL epoch seconds
}

// DynamoGate is a Gate backed by DynamoDB conditional writes, for
// deployments with more than one concurrent instance. DynamoDB TTL reaps
// entries eventually; the conditional expression treats expired entries as
// absent so reclaim does not wait on the reaper.
type DynamoGate struct {
	client    aws.DynamoDBAPI
	tableName string
	window    time.Duration
	nowFunc   func() time.Time
}

// NewDynamoGate returns a gate bound to a table. window defaults to Window.
func NewDynamoGate(client aws.DynamoDBAPI, tableName string, window time.Duration) *DynamoGate {
	if window <= 0 {
		window = Window
	}
	return &DynamoGate{
		client:    client,
		tableName: tableName,
		window:    window,
		nowFunc:   time.Now,
	}
}

// TryBegin implements Gate. The conditional PutItem is the atomic
// check-and-set: it succeeds only when no live entry exists for the key.
func (g *DynamoGate) TryBegin(ctx context.Context, key string) (Decision, error) {
	now := g.nowFunc()
	rec := gateRecord{
		ClientKey: key,
		State:     StateProcessing,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(g.window).Unix(),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return Decision{}, fmt.Errorf("marshal gate record: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &g.tableName,
		Item:                item,
		ConditionExpression: dynString("attribute_not_exists(client_key) OR expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	}

	_, err = g.client.PutItem(ctx, input)
	if err == nil {
		return Decision{Outcome: Admitted}, nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "ConditionalCheckFailedException" {
		return Decision{}, fmt.Errorf("put gate record: %w", err)
	}

	// A live entry exists; fetch it to tell processing from completed.
	live, err := g.get(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	if live == nil || live.State != StateCompleted {
		// Either still processing, or we lost a race with a concurrent
		// writer; both mean an attempt is in flight.
		return Decision{Outcome: RejectedProcessing}, nil
	}
	return Decision{Outcome: RejectedCompleted, RecordID: live.RecordID}, nil
}

// MarkCompleted implements Gate. An unconditional put overwrites the
// PROCESSING entry and restarts the window.
func (g *DynamoGate) MarkCompleted(ctx context.Context, key, recordID string) error {
	now := g.nowFunc()
	rec := gateRecord{
		ClientKey: key,
		State:     StateCompleted,
		RecordID:  recordID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(g.window).Unix(),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal gate record: %w", err)
	}
	_, err = g.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &g.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put gate record (mark completed): %w", err)
	}
	return nil
}

// Clear implements Gate.
func (g *DynamoGate) Clear(ctx context.Context, key string) error {
	_, err := g.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &g.tableName,
		Key: map[string]types.AttributeValue{
			"client_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return fmt.Errorf("delete gate record: %w", err)
	}
	return nil
}

// get retrieves the live record for key, treating expired entries as absent.
func (g *DynamoGate) get(ctx context.Context, key string) (*gateRecord, error) {
	out, err := g.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &g.tableName,
		Key: map[string]types.AttributeValue{
			"client_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get gate record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec gateRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal gate record: %w", err)
	}
	if rec.ExpiresAt < g.nowFunc().Unix() {
		return nil, nil
	}
	return &rec, nil
}

func dynString(s string) *string { return &s }
