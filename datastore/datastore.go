/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/sportstore/storagemodels"
)

// Engine is the embedded document store a Datastore runs on.
//
// Engines report missing documents with errors matching errors.ErrNotFound and
// unique index collisions (including a duplicate identifier on Insert) with
// errors matching errors.ErrConstraintViolation. Documents without a value for
// a unique field are not indexed on that field.
type Engine interface {
	// EnsureCollection creates the collection and its unique indexes if needed.
	EnsureCollection(ctx context.Context, name string, uniqueFields []string) error

	Insert(ctx context.Context, collection, id string, doc storagemodels.Document) error

	Get(ctx context.Context, collection, id string) (storagemodels.Document, error)

	// GetByUnique finds the document holding value in a unique field.
	GetByUnique(ctx context.Context, collection, field string, value interface{}) (storagemodels.Document, error)

	List(ctx context.Context, collection string) ([]storagemodels.Document, error)

	// Replace swaps the stored document for doc. The identifier cannot change.
	Replace(ctx context.Context, collection, id string, doc storagemodels.Document) error

	Delete(ctx context.Context, collection, id string) error

	// Mapper returns the value mapper matching the engine's storage format.
	Mapper() storagemodels.Mapper

	Close() error
}
