/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"fmt"

	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/registry"
	"github.com/suparena/sportstore/storagemodels"
)

// FindByIdentifier loads the entity of type T with the given identifier.
// A missing document is reported as found == false with a nil error.
func FindByIdentifier[T storagemodels.PersistentObject](ctx context.Context, ds *Datastore, id storagemodels.Identifier) (T, bool, error) {
	var zero T
	et, err := registry.LookupType[T](ds.registry)
	if err != nil {
		return zero, false, err
	}

	doc, err := ds.engine.Get(ctx, et.Name, id.String())
	if errors.IsNotFound(err) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("find %s/%s: %w", et.Name, id, err)
	}
	return rehydrate[T](ds, et, doc)
}

// FindByUnique loads the entity of type T whose unique field holds value.
func FindByUnique[T storagemodels.PersistentObject](ctx context.Context, ds *Datastore, field string, value interface{}) (T, bool, error) {
	var zero T
	et, err := registry.LookupType[T](ds.registry)
	if err != nil {
		return zero, false, err
	}
	if field == storagemodels.IdentifierKey {
		s, ok := value.(string)
		if !ok {
			return zero, false, errors.NewValidationError(field, "identifier lookups need a string value")
		}
		id, err := storagemodels.ParseIdentifier(s)
		if err != nil {
			return zero, false, err
		}
		return FindByIdentifier[T](ctx, ds, id)
	}
	if !et.IsUnique(field) {
		return zero, false, errors.NewValidationError(field, fmt.Sprintf("field is not unique for %s", et.Name))
	}

	doc, err := ds.engine.GetByUnique(ctx, et.Name, field, value)
	if errors.IsNotFound(err) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("find %s by %s: %w", et.Name, field, err)
	}
	return rehydrate[T](ds, et, doc)
}

// FindAll loads every stored entity of type T.
func FindAll[T storagemodels.PersistentObject](ctx context.Context, ds *Datastore) ([]T, error) {
	et, err := registry.LookupType[T](ds.registry)
	if err != nil {
		return nil, err
	}

	docs, err := ds.engine.List(ctx, et.Name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", et.Name, err)
	}

	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		obj, _, err := rehydrate[T](ds, et, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func rehydrate[T storagemodels.PersistentObject](ds *Datastore, et *registry.EntityType, doc storagemodels.Document) (T, bool, error) {
	var zero T
	obj, err := et.Rehydrate(ds.engine.Mapper(), doc)
	if err != nil {
		return zero, false, fmt.Errorf("read %s/%s: %w", et.Name, doc.ID(), err)
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, false, fmt.Errorf("read %s/%s: rehydrated %T, want %T", et.Name, doc.ID(), obj, zero)
	}
	return typed, true, nil
}
