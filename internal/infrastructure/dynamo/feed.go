package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-feed-nosql/internal/domain"
)

// FeedRepo provides typed DynamoDB operations for the unseen and seen feed
// tables. Both tables are keyed (user_id, entry_key); the fan-out writer is
// the only producer of unseen rows.
type FeedRepo struct {
	client      *dynamodb.Client
	unseenTable string
	seenTable   string
	callTimeout time.Duration
}

func NewFeedRepo(client *dynamodb.Client, unseenTable, seenTable string) *FeedRepo {
	return &FeedRepo{client: client, unseenTable: unseenTable, seenTable: seenTable}
}

// WithCallTimeout bounds every store call. The client is long-lived and
// shared, so a stalled call must not hold it up for other callers.
func (r *FeedRepo) WithCallTimeout(d time.Duration) *FeedRepo {
	r.callTimeout = d
	return r
}

func (r *FeedRepo) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.callTimeout > 0 {
		return context.WithTimeout(ctx, r.callTimeout)
	}
	return ctx, func() {}
}

func (r *FeedRepo) Put(ctx context.Context, e *domain.FeedEntry) error {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal feed entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.unseenTable),
		Item:      item,
	})
	return err
}

// List queries one recipient partition in its native range-key order, which
// is createdAt descending with feed_id ascending on ties. afterKey, when
// non-empty, is the entry_key of the previous page's last row; rows at or
// before it are skipped.
func (r *FeedRepo) List(ctx context.Context, userID, afterKey string, limit int32) ([]domain.FeedEntry, error) {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	keyCond := "user_id = :uid"
	values := map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberS{Value: userID},
	}
	if afterKey != "" {
		keyCond += " AND entry_key > :after"
		values[":after"] = &types.AttributeValueMemberS{Value: afterKey}
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.unseenTable),
		KeyConditionExpression:    aws.String(keyCond),
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}

	var entries []domain.FeedEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkSeen moves an entry from the unseen table to the seen table. The copy
// and the delete are two independent writes: a crash in between leaves the
// row in both tables, which readers tolerate because the seen table is
// append-only history.
func (r *FeedRepo) MarkSeen(ctx context.Context, userID, entryKey string) error {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.unseenTable),
		Key:       compositeKey(fieldUserID, userID, fieldEntryKey, entryKey),
	})
	if err != nil {
		return err
	}
	if out.Item == nil {
		return fmt.Errorf("feed entry not found: %w", domain.ErrNotFound)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.seenTable),
		Item:      out.Item,
	}); err != nil {
		return fmt.Errorf("copy to seen feed: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.unseenTable),
		Key:       compositeKey(fieldUserID, userID, fieldEntryKey, entryKey),
	})
	return err
}
