package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-feed-nosql/internal/config"
)

// Bootstrap creates all DynamoDB tables if they don't already exist. Each
// table is ensured independently (none reference each other), so order is
// irrelevant and every call is safe to re-run. Returns the first error seen
// so the supervisor can keep retrying; individual failures never panic.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) error {
	var firstErr error
	ensure := func(input *dynamodb.CreateTableInput) {
		if err := createTable(ctx, client, input); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// unseen_feed and seen_feed share a shape: recipient partition, entry_key
	// range. entry_key embeds an inverted timestamp, so the default ascending
	// query order is newest-first.
	for _, name := range []string{tables.UnseenFeed, tables.SeenFeed} {
		ensure(&dynamodb.CreateTableInput{
			TableName:   aws.String(name),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(fieldUserID), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String(fieldEntryKey), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(fieldUserID), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(fieldEntryKey), KeyType: types.KeyTypeRange},
			},
		})
	}

	for _, name := range []string{tables.InteractionCounters, tables.InteractionMeta} {
		ensure(&dynamodb.CreateTableInput{
			TableName:   aws.String(name),
			BillingMode: types.BillingModePayPerRequest,
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String(fieldUserID), AttributeType: types.ScalarAttributeTypeS},
				{AttributeName: aws.String(fieldTargetUserID), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(fieldUserID), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(fieldTargetUserID), KeyType: types.KeyTypeRange},
			},
		})
	}

	return firstErr
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) error {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists — that's fine.
		var riue *types.ResourceInUseException
		if errors.As(err, &riue) {
			return nil
		}
		slog.Warn("could not create table", "table", *input.TableName, "err", err)
		return err
	}
	slog.Info("created table", "table", *input.TableName)
	return nil
}
