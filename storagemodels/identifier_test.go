/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

func TestNewIdentifierIsUnique(t *testing.T) {
	const samples = 20000

	seen := make(map[storagemodels.Identifier]struct{}, samples)
	for i := 0; i < samples; i++ {
		id := storagemodels.NewIdentifier()
		require.False(t, id.IsZero())
		_, dup := seen[id]
		require.False(t, dup, "identifier %s generated twice", id)
		seen[id] = struct{}{}
	}
}

func TestIdentifierValueEquality(t *testing.T) {
	id := storagemodels.NewIdentifier()

	restored, err := storagemodels.ParseIdentifier(id.String())
	require.NoError(t, err)

	assert.True(t, id.Equal(restored))
	assert.Equal(t, id, restored)
	assert.Equal(t, id.Hash(), restored.Hash())
	assert.False(t, id.Equal(storagemodels.NewIdentifier()))
}

func TestParseIdentifierRejectsEmpty(t *testing.T) {
	_, err := storagemodels.ParseIdentifier("")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	assert.Panics(t, func() { storagemodels.MustParseIdentifier("") })
}

func TestZeroIdentifier(t *testing.T) {
	var id storagemodels.Identifier
	assert.True(t, id.IsZero())
	assert.Equal(t, "", id.String())
}
