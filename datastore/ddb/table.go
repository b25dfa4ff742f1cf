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

// EnsureTable creates the backing table with a PK/SK string key when it
// does not exist yet, and waits until it is active.
func (e *Engine) EnsureTable(ctx context.Context, wait time.Duration) error {
	_, err := e.client.DescribeTable(ctx, &sdk.DescribeTableInput{TableName: aws.String(e.table)})
	if err == nil {
		return nil
	}
	var rnf *types.ResourceNotFoundException
	if !errors.As(err, &rnf) {
		return fmt.Errorf("failed to describe table %s: %w", e.table, err)
	}

	_, err = e.client.CreateTable(ctx, &sdk.CreateTableInput{
		TableName: aws.String(e.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrPK), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrSK), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrPK), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrSK), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", e.table, err)
	}

	if wait <= 0 {
		return nil
	}
	waiter := sdk.NewTableExistsWaiter(e.client)
	if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: aws.String(e.table)}, wait); err != nil {
		return fmt.Errorf("table %s did not become active: %w", e.table, err)
	}
	return nil
}
