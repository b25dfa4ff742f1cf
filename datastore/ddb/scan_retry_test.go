/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type retryHint bool

func (r retryHint) Error() string     { return "hint" }
func (r retryHint) IsRetryable() bool { return bool(r) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"throughput", &types.ProvisionedThroughputExceededException{}, true},
		{"wrapped throughput", fmt.Errorf("operation error DynamoDB: Scan: %w", &types.ProvisionedThroughputExceededException{}), true},
		{"wrapped request limit", fmt.Errorf("operation error DynamoDB: Scan: %w", &types.RequestLimitExceeded{}), true},
		{"double wrapped internal", fmt.Errorf("scan: %w", fmt.Errorf("op: %w", &types.InternalServerError{})), true},
		{"wrapped retry hint", fmt.Errorf("op: %w", retryHint(true)), true},
		{"wrapped no-retry hint", fmt.Errorf("op: %w", retryHint(false)), false},
		{"resource not found", fmt.Errorf("op: %w", &types.ResourceNotFoundException{}), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryableError(tc.err); got != tc.want {
				t.Fatalf("isRetryableError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
