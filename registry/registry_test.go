/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/registry"
	"github.com/suparena/sportstore/storagemodels"
)

type shoe struct {
	storagemodels.Base
	model string
}

func (s *shoe) Write(storagemodels.Mapper) storagemodels.Document {
	return storagemodels.Document{storagemodels.IdentifierKey: s.Identifier().String(), "model": s.model}
}

func (s *shoe) Read(m storagemodels.Mapper, doc storagemodels.Document) error {
	if doc == nil {
		return nil
	}
	r := storagemodels.NewReader(m, doc)
	id := r.Identifier(storagemodels.IdentifierKey)
	model := r.String("model")
	if err := r.Err(); err != nil {
		return err
	}
	s.Base, s.model = storagemodels.RestoreBase(id), model
	return nil
}

func (s *shoe) Equal(o storagemodels.PersistentObject) bool {
	return storagemodels.SameIdentity(s, o)
}

func rehydrateShoe(m storagemodels.Mapper, doc storagemodels.Document) (*shoe, error) {
	s := &shoe{}
	return s, s.Read(m, doc)
}

type watch struct{ shoe }

func rehydrateWatch(m storagemodels.Mapper, doc storagemodels.Document) (*watch, error) {
	w := &watch{}
	return w, w.Read(m, doc)
}

func TestRegisterAndLookup(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, registry.Register(r, "shoes", rehydrateShoe, "model"))
	require.NoError(t, registry.Register(r, "watches", rehydrateWatch))

	et, err := r.Lookup(&shoe{Base: storagemodels.NewBase()})
	require.NoError(t, err)
	assert.Equal(t, "shoes", et.Name)
	assert.Equal(t, []string{"model"}, et.UniqueFields)
	assert.True(t, et.IsUnique("model"))
	assert.True(t, et.IsUnique(storagemodels.IdentifierKey))
	assert.False(t, et.IsUnique("colour"))

	byType, err := registry.LookupType[*watch](r)
	require.NoError(t, err)
	assert.Equal(t, "watches", byType.Name)

	byName, err := r.LookupName("watches")
	require.NoError(t, err)
	assert.Same(t, byType, byName)

	fields, ok := r.UniqueFields("shoes")
	assert.True(t, ok)
	assert.Equal(t, []string{"model"}, fields)

	names := []string{}
	for _, et := range r.Types() {
		names = append(names, et.Name)
	}
	assert.Equal(t, []string{"shoes", "watches"}, names)
}

func TestRehydrateThroughEntityType(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, registry.Register(r, "shoes", rehydrateShoe))

	et, err := registry.LookupType[*shoe](r)
	require.NoError(t, err)

	obj, err := et.Rehydrate(storagemodels.DefaultMapper{}, storagemodels.Document{
		storagemodels.IdentifierKey: "s-1",
		"model":                     "Pegasus",
	})
	require.NoError(t, err)
	s, ok := obj.(*shoe)
	require.True(t, ok)
	assert.Equal(t, "s-1", s.Identifier().String())
	assert.Equal(t, "Pegasus", s.model)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := registry.NewRegistry()
	require.NoError(t, registry.Register(r, "shoes", rehydrateShoe))

	assert.Error(t, registry.Register(r, "other", rehydrateShoe), "same type twice")
	assert.Error(t, registry.Register(r, "shoes", rehydrateWatch), "same name twice")
	assert.Panics(t, func() { registry.MustRegister(r, "shoes", rehydrateShoe) })
}

func TestRegisterValidatesDeclaration(t *testing.T) {
	tests := []struct {
		name   string
		unique []string
	}{
		{"identifier is implicit", []string{storagemodels.IdentifierKey}},
		{"empty field", []string{""}},
		{"duplicate field", []string{"model", "model"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(registry.NewRegistry(), "shoes", rehydrateShoe, tt.unique...)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}

	err := registry.Register[*shoe](registry.NewRegistry(), "", rehydrateShoe)
	assert.True(t, errors.IsValidationError(err))
}

func TestLookupUnregistered(t *testing.T) {
	r := registry.NewRegistry()

	_, err := r.Lookup(&shoe{})
	assert.ErrorIs(t, err, errors.ErrNotRegistered)

	_, err = registry.LookupType[*watch](r)
	assert.ErrorIs(t, err, errors.ErrNotRegistered)

	_, err = r.LookupName("shoes")
	assert.ErrorIs(t, err, errors.ErrNotRegistered)
}
