/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cached

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/suparena/sportstore/datastore"
	"github.com/suparena/sportstore/storagemodels"
)

// Engine keeps recently read documents of another engine in an LRU cache.
// All writes must go through this Engine for the cache to stay coherent.
type Engine struct {
	inner  datastore.Engine
	cache  *lru.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	Size   int
}

// Wrap returns inner behind a cache holding up to size documents.
func Wrap(inner datastore.Engine, size int) (*Engine, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Engine{inner: inner, cache: cache}, nil
}

func key(collection, id string) string {
	return collection + "/" + id
}

func (e *Engine) Stats() Stats {
	return Stats{Hits: e.hits.Load(), Misses: e.misses.Load(), Size: e.cache.Len()}
}

// Inner returns the wrapped engine.
func (e *Engine) Inner() datastore.Engine {
	return e.inner
}

func (e *Engine) EnsureCollection(ctx context.Context, name string, uniqueFields []string) error {
	return e.inner.EnsureCollection(ctx, name, uniqueFields)
}

func (e *Engine) Insert(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	if err := e.inner.Insert(ctx, collection, id, doc); err != nil {
		return err
	}
	e.cache.Add(key(collection, id), doc.Clone())
	return nil
}

func (e *Engine) Replace(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	if err := e.inner.Replace(ctx, collection, id, doc); err != nil {
		e.cache.Remove(key(collection, id))
		return err
	}
	e.cache.Add(key(collection, id), doc.Clone())
	return nil
}

func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	e.cache.Remove(key(collection, id))
	return e.inner.Delete(ctx, collection, id)
}

func (e *Engine) Get(ctx context.Context, collection, id string) (storagemodels.Document, error) {
	if v, ok := e.cache.Get(key(collection, id)); ok {
		e.hits.Add(1)
		return v.(storagemodels.Document).Clone(), nil
	}
	e.misses.Add(1)

	doc, err := e.inner.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key(collection, id), doc.Clone())
	return doc, nil
}

// GetByUnique always asks the inner engine and caches the result.
func (e *Engine) GetByUnique(ctx context.Context, collection, field string, value interface{}) (storagemodels.Document, error) {
	doc, err := e.inner.GetByUnique(ctx, collection, field, value)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key(collection, doc.ID()), doc.Clone())
	return doc, nil
}

func (e *Engine) List(ctx context.Context, collection string) ([]storagemodels.Document, error) {
	return e.inner.List(ctx, collection)
}

func (e *Engine) Mapper() storagemodels.Mapper {
	return e.inner.Mapper()
}

func (e *Engine) Close() error {
	e.cache.Purge()
	return e.inner.Close()
}
