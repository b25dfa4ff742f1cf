/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides a scriptable datastore.Engine for testing
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

// Engine is a map-backed implementation of datastore.Engine for testing.
// Unique fields are enforced by scanning the collection.
type Engine struct {
	mu           sync.RWMutex
	data         map[string]map[string]storagemodels.Document
	unique       map[string][]string
	mapper       storagemodels.Mapper
	calls        []string
	insertError  error
	replaceError error
	deleteError  error
	getError     error
	closed       bool
}

// New creates a new mock Engine
func New() *Engine {
	return &Engine{
		data:   make(map[string]map[string]storagemodels.Document),
		unique: make(map[string][]string),
		mapper: storagemodels.DefaultMapper{},
	}
}

// WithMapper sets the mapper returned by Mapper
func (m *Engine) WithMapper(mapper storagemodels.Mapper) *Engine {
	m.mapper = mapper
	return m
}

// WithInsertError makes Insert operations return an error
func (m *Engine) WithInsertError(err error) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertError = err
	return m
}

// WithReplaceError makes Replace operations return an error
func (m *Engine) WithReplaceError(err error) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *Engine) WithDeleteError(err error) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteError = err
	return m
}

// WithGetError makes Get, GetByUnique and List return an error
func (m *Engine) WithGetError(err error) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
	return m
}

func (m *Engine) EnsureCollection(ctx context.Context, name string, uniqueFields []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("EnsureCollection", name)

	if m.closed {
		return errors.ErrClosed
	}
	if _, ok := m.data[name]; !ok {
		m.data[name] = make(map[string]storagemodels.Document)
	}
	m.unique[name] = append([]string(nil), uniqueFields...)
	return nil
}

func (m *Engine) Insert(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Insert", collection, id)

	docs, err := m.collection(collection)
	if err != nil {
		return err
	}
	if m.insertError != nil {
		return m.insertError
	}
	if _, exists := docs[id]; exists {
		return errors.NewConstraintViolationError(collection, storagemodels.IdentifierKey, id)
	}
	if err := m.checkUnique(collection, id, doc); err != nil {
		return err
	}
	docs[id] = doc.Clone()
	return nil
}

func (m *Engine) Replace(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Replace", collection, id)

	docs, err := m.collection(collection)
	if err != nil {
		return err
	}
	if m.replaceError != nil {
		return m.replaceError
	}
	if _, exists := docs[id]; !exists {
		return errors.NewNotFoundError(collection, id)
	}
	if err := m.checkUnique(collection, id, doc); err != nil {
		return err
	}
	docs[id] = doc.Clone()
	return nil
}

func (m *Engine) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Delete", collection, id)

	docs, err := m.collection(collection)
	if err != nil {
		return err
	}
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, exists := docs[id]; !exists {
		return errors.NewNotFoundError(collection, id)
	}
	delete(docs, id)
	return nil
}

func (m *Engine) Get(ctx context.Context, collection, id string) (storagemodels.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Get", collection, id)

	docs, err := m.collection(collection)
	if err != nil {
		return nil, err
	}
	if m.getError != nil {
		return nil, m.getError
	}
	doc, exists := docs[id]
	if !exists {
		return nil, errors.NewNotFoundError(collection, id)
	}
	return doc.Clone(), nil
}

func (m *Engine) GetByUnique(ctx context.Context, collection, field string, value interface{}) (storagemodels.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetByUnique", collection, field)

	docs, err := m.collection(collection)
	if err != nil {
		return nil, err
	}
	if m.getError != nil {
		return nil, m.getError
	}
	want, ok, err := storagemodels.UniqueKey(value)
	if err != nil {
		return nil, err
	}
	if ok {
		for _, doc := range docs {
			if got, ok, _ := storagemodels.UniqueKey(doc[field]); ok && got == want {
				return doc.Clone(), nil
			}
		}
	}
	return nil, errors.NewNotFoundError(collection, fmt.Sprintf("%s=%v", field, value))
}

// List returns all documents of the collection ordered by identifier.
func (m *Engine) List(ctx context.Context, collection string) ([]storagemodels.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("List", collection)

	docs, err := m.collection(collection)
	if err != nil {
		return nil, err
	}
	if m.getError != nil {
		return nil, m.getError
	}
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]storagemodels.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, docs[id].Clone())
	}
	return out, nil
}

func (m *Engine) Mapper() storagemodels.Mapper {
	return m.mapper
}

func (m *Engine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Close")
	if m.closed {
		return errors.ErrClosed
	}
	m.closed = true
	return nil
}

// Helper methods for testing

// Count returns the number of documents stored in collection
func (m *Engine) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}

// Document returns a copy of a stored document, or nil
func (m *Engine) Document(collection, id string) storagemodels.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if doc, ok := m.data[collection][id]; ok {
		return doc.Clone()
	}
	return nil
}

// SetDocument stores doc directly, bypassing unique checks
func (m *Engine) SetDocument(collection string, doc storagemodels.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[collection]; !ok {
		m.data[collection] = make(map[string]storagemodels.Document)
	}
	m.data[collection][doc.ID()] = doc.Clone()
}

// Calls returns the operations seen so far, formatted as "Op collection key"
func (m *Engine) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.calls...)
}

// Clear removes all documents and recorded calls
func (m *Engine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name := range m.data {
		m.data[name] = make(map[string]storagemodels.Document)
	}
	m.calls = nil
}

func (m *Engine) record(op string, args ...string) {
	call := op
	for _, a := range args {
		call += " " + a
	}
	m.calls = append(m.calls, call)
}

func (m *Engine) collection(name string) (map[string]storagemodels.Document, error) {
	if m.closed {
		return nil, errors.ErrClosed
	}
	docs, ok := m.data[name]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", name)
	}
	return docs, nil
}

func (m *Engine) checkUnique(collection, id string, doc storagemodels.Document) error {
	for _, field := range m.unique[collection] {
		want, ok, err := storagemodels.UniqueKey(doc[field])
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for otherID, other := range m.data[collection] {
			if otherID == id {
				continue
			}
			if got, ok, _ := storagemodels.UniqueKey(other[field]); ok && got == want {
				return errors.NewConstraintViolationError(collection, field, doc[field])
			}
		}
	}
	return nil
}
