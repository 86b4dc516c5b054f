package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// InteractionRepo provides typed DynamoDB operations for the interaction
// counter and meta tables, both keyed (user_id, target_user_id).
type InteractionRepo struct {
	client        *dynamodb.Client
	countersTable string
	metaTable     string
	callTimeout   time.Duration
}

func NewInteractionRepo(client *dynamodb.Client, countersTable, metaTable string) *InteractionRepo {
	return &InteractionRepo{client: client, countersTable: countersTable, metaTable: metaTable}
}

// WithCallTimeout bounds every store call.
func (r *InteractionRepo) WithCallTimeout(d time.Duration) *InteractionRepo {
	r.callTimeout = d
	return r
}

func (r *InteractionRepo) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.callTimeout > 0 {
		return context.WithTimeout(ctx, r.callTimeout)
	}
	return ctx, func() {}
}

// Increment bumps one counter column by one with an ADD expression. ADD is
// commutative and auto-initializes missing attributes to zero, so concurrent
// callers never lose updates and no read-modify-write is needed.
func (r *InteractionRepo) Increment(ctx context.Context, userID, targetUserID, counter string) error {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	if _, ok := counterFields[counter]; !ok {
		return fmt.Errorf("unknown counter %q", counter)
	}
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.countersTable),
		Key:              compositeKey(fieldUserID, userID, fieldTargetUserID, targetUserID),
		UpdateExpression: aws.String("ADD #c :one"),
		ExpressionAttributeNames: map[string]string{
			"#c": counter,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	return err
}

// TouchLastInteraction overwrites the last-interaction timestamp. The later
// of two concurrent touches wins; nothing accumulates.
func (r *InteractionRepo) TouchLastInteraction(ctx context.Context, userID, targetUserID string, atMillis int64) error {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	ue, err := buildUpdateExpr(map[string]interface{}{fieldLastInteractionAt: atMillis})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.metaTable),
		Key:                       compositeKey(fieldUserID, userID, fieldTargetUserID, targetUserID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
