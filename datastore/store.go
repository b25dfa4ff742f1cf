/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/registry"
	"github.com/suparena/sportstore/storagemodels"
)

// Datastore persists entities through an Engine and notifies delegates.
//
// Store operations add no locking of their own: concurrent use is as safe as
// the engine underneath. Delegate registration is safe for concurrent use.
type Datastore struct {
	engine   Engine
	registry *registry.Registry
	log      *zap.Logger

	mu        sync.RWMutex
	delegates []Delegate
	detached  map[detachedKey]struct{}
}

type detachedKey struct {
	collection string
	id         storagemodels.Identifier
}

// Option configures a Datastore.
type Option func(*Datastore)

// WithRegistry sets the entity type registry. Defaults to registry.Default.
func WithRegistry(r *registry.Registry) Option {
	return func(ds *Datastore) {
		ds.registry = r
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(ds *Datastore) {
		ds.log = l
	}
}

// New creates a Datastore on engine and ensures a collection for every
// registered entity type.
func New(ctx context.Context, engine Engine, opts ...Option) (*Datastore, error) {
	if engine == nil {
		return nil, errors.NewValidationError("engine", "engine is required")
	}
	ds := &Datastore{
		engine:   engine,
		registry: registry.Default,
		log:      zap.NewNop(),
		detached: make(map[detachedKey]struct{}),
	}
	for _, opt := range opts {
		opt(ds)
	}

	if err := ds.EnsureTypes(ctx); err != nil {
		return nil, err
	}
	return ds, nil
}

// EnsureTypes creates collections for entity types registered after New.
func (ds *Datastore) EnsureTypes(ctx context.Context) error {
	for _, et := range ds.registry.Types() {
		if err := ds.engine.EnsureCollection(ctx, et.Name, et.UniqueFields); err != nil {
			return fmt.Errorf("ensure collection %q: %w", et.Name, err)
		}
		ds.log.Debug("collection ready", zap.String("type", et.Name), zap.Strings("unique", et.UniqueFields))
	}
	return nil
}

// Mapper returns the engine's value mapper.
func (ds *Datastore) Mapper() storagemodels.Mapper {
	return ds.engine.Mapper()
}

func (ds *Datastore) Registry() *registry.Registry {
	return ds.registry
}

func (ds *Datastore) Engine() Engine {
	return ds.engine
}

// Close closes the engine.
func (ds *Datastore) Close() error {
	return ds.engine.Close()
}

// Save inserts a new entity. A collision on any unique field fails with a
// constraint violation and no delegate is called.
func (ds *Datastore) Save(ctx context.Context, obj storagemodels.PersistentObject) error {
	et, doc, err := ds.prepare(obj)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	id := obj.Identifier()

	if err := ds.engine.Insert(ctx, et.Name, id.String(), doc); err != nil {
		ds.log.Warn("save failed", zap.String("type", et.Name), zap.Stringer("id", id), zap.Error(err))
		return fmt.Errorf("save %s/%s: %w", et.Name, id, err)
	}
	ds.log.Debug("object saved", zap.String("type", et.Name), zap.Stringer("id", id))

	ds.notify(eventAdded, obj)
	return nil
}

// Update replaces the stored document of an existing entity.
func (ds *Datastore) Update(ctx context.Context, obj storagemodels.PersistentObject) error {
	et, doc, err := ds.prepare(obj)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	id := obj.Identifier()

	if err := ds.engine.Replace(ctx, et.Name, id.String(), doc); err != nil {
		ds.log.Warn("update failed", zap.String("type", et.Name), zap.Stringer("id", id), zap.Error(err))
		return fmt.Errorf("update %s/%s: %w", et.Name, id, err)
	}
	ds.log.Debug("object updated", zap.String("type", et.Name), zap.Stringer("id", id))

	ds.notify(eventUpdated, obj)
	return nil
}

// Delete removes the entity. Afterwards the in-memory object is detached:
// further Save, Update or Delete calls for it fail with errors.ErrDetached.
func (ds *Datastore) Delete(ctx context.Context, obj storagemodels.PersistentObject) error {
	et, err := ds.entityType(obj)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	id := obj.Identifier()

	if err := ds.engine.Delete(ctx, et.Name, id.String()); err != nil {
		ds.log.Warn("delete failed", zap.String("type", et.Name), zap.Stringer("id", id), zap.Error(err))
		return fmt.Errorf("delete %s/%s: %w", et.Name, id, err)
	}

	ds.mu.Lock()
	ds.detached[detachedKey{collection: et.Name, id: id}] = struct{}{}
	ds.mu.Unlock()
	ds.log.Debug("object removed", zap.String("type", et.Name), zap.Stringer("id", id))

	ds.notify(eventRemoved, obj)
	return nil
}

// Contains reports whether a document with the entity's identifier is stored.
func (ds *Datastore) Contains(ctx context.Context, obj storagemodels.PersistentObject) (bool, error) {
	et, err := ds.registry.Lookup(obj)
	if err != nil {
		return false, err
	}
	_, err = ds.engine.Get(ctx, et.Name, obj.Identifier().String())
	if errors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsDetached reports whether obj was deleted through this Datastore.
func (ds *Datastore) IsDetached(obj storagemodels.PersistentObject) bool {
	et, err := ds.registry.Lookup(obj)
	if err != nil {
		return false
	}
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	_, ok := ds.detached[detachedKey{collection: et.Name, id: obj.Identifier()}]
	return ok
}

func (ds *Datastore) entityType(obj storagemodels.PersistentObject) (*registry.EntityType, error) {
	if obj == nil {
		return nil, errors.NewValidationError("object", "object must not be nil")
	}
	et, err := ds.registry.Lookup(obj)
	if err != nil {
		return nil, err
	}
	id := obj.Identifier()
	if id.IsZero() {
		return nil, errors.NewValidationError(storagemodels.IdentifierKey, "object has no identifier")
	}
	if ds.IsDetached(obj) {
		return nil, fmt.Errorf("%s/%s: %w", et.Name, id, errors.ErrDetached)
	}
	return et, nil
}

func (ds *Datastore) prepare(obj storagemodels.PersistentObject) (*registry.EntityType, storagemodels.Document, error) {
	et, err := ds.entityType(obj)
	if err != nil {
		return nil, nil, err
	}
	doc := obj.Write(ds.engine.Mapper())
	if got := doc.ID(); got != obj.Identifier().String() {
		return nil, nil, errors.NewValidationError(storagemodels.IdentifierKey,
			fmt.Sprintf("document identifier %q does not match object identifier %q", got, obj.Identifier()))
	}
	return et, doc, nil
}
