/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ScanOptions controls paging and retries of a collection scan.
type ScanOptions struct {
	PageSize     int32
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultScanOptions returns the options List uses.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		PageSize:     100,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
	}
}

// scan returns every document item of a collection, following
// LastEvaluatedKey until the table is exhausted.
func (e *Engine) scan(ctx context.Context, collection string, options ScanOptions) ([]map[string]types.AttributeValue, error) {
	input := &sdk.ScanInput{
		TableName:                aws.String(e.table),
		FilterExpression:         aws.String("#collection = :collection AND begins_with(PK, :prefix)"),
		ExpressionAttributeNames: map[string]string{"#collection": attrCollection},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":collection": &types.AttributeValueMemberS{Value: collection},
			":prefix":     &types.AttributeValueMemberS{Value: docKey(collection, "")},
		},
		ConsistentRead: aws.Bool(true),
		Limit:          aws.Int32(options.PageSize),
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := e.scanWithRetry(ctx, input, options)
		if err != nil {
			return nil, err
		}
		items = append(items, out.Items...)

		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (e *Engine) scanWithRetry(ctx context.Context, input *sdk.ScanInput, options ScanOptions) (*sdk.ScanOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := e.client.Scan(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("failed to scan DynamoDB table: %w", err)
		}

		// Linear backoff; no sleep after the last attempt.
		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("scan failed after %d retries: %w", options.MaxRetries, lastErr)
}

// isRetryableError determines if a DynamoDB error is retryable. The SDK wraps
// service exceptions in operation errors, so the chain is searched.
func isRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}
	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}
