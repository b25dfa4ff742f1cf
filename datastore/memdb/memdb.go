/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memdb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	gomemdb "github.com/hashicorp/go-memdb"

	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

const idIndex = "id"

// record is the object stored in memdb tables.
type record struct {
	ID  string
	Doc storagemodels.Document
}

// Engine is an in-process document engine backed by go-memdb.
// It is safe for concurrent use; write transactions are serialized.
type Engine struct {
	mu          sync.RWMutex
	db          *gomemdb.MemDB
	collections map[string][]string
	closed      bool
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{collections: make(map[string][]string)}
}

func indexName(field string) string {
	return "unique_" + field
}

func tableSchema(name string, unique []string) *gomemdb.TableSchema {
	indexes := map[string]*gomemdb.IndexSchema{
		idIndex: {
			Name:    idIndex,
			Unique:  true,
			Indexer: &gomemdb.StringFieldIndex{Field: "ID"},
		},
	}
	for _, f := range unique {
		indexes[indexName(f)] = &gomemdb.IndexSchema{
			Name:         indexName(f),
			Unique:       true,
			AllowMissing: true,
			Indexer:      &fieldIndexer{Field: f},
		}
	}
	return &gomemdb.TableSchema{Name: name, Indexes: indexes}
}

// EnsureCollection adds the collection to the schema. memdb schemas are
// immutable, so the database is rebuilt and existing records are copied.
func (e *Engine) EnsureCollection(ctx context.Context, name string, uniqueFields []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.ErrClosed
	}
	if existing, ok := e.collections[name]; ok && sameFields(existing, uniqueFields) {
		return nil
	}

	collections := make(map[string][]string, len(e.collections)+1)
	for k, v := range e.collections {
		collections[k] = v
	}
	collections[name] = append([]string(nil), uniqueFields...)

	schema := &gomemdb.DBSchema{Tables: make(map[string]*gomemdb.TableSchema, len(collections))}
	for table, unique := range collections {
		schema.Tables[table] = tableSchema(table, unique)
	}
	db, err := gomemdb.NewMemDB(schema)
	if err != nil {
		return fmt.Errorf("failed to build memdb schema: %w", err)
	}

	if e.db != nil {
		if err := copyRecords(e.db, db, e.collections, collections[name], name); err != nil {
			return err
		}
	}

	e.db = db
	e.collections = collections
	return nil
}

// copyRecords moves every record into the new database. Records of the
// changed collection are re-checked against its new unique fields.
func copyRecords(from, to *gomemdb.MemDB, tables map[string][]string, unique []string, changed string) error {
	read := from.Txn(false)
	write := to.Txn(true)
	defer write.Abort()

	for table := range tables {
		it, err := read.Get(table, idIndex)
		if err != nil {
			return fmt.Errorf("failed to read collection %q: %w", table, err)
		}
		for raw := it.Next(); raw != nil; raw = it.Next() {
			rec := raw.(*record)
			if table == changed {
				if err := checkUnique(write, table, unique, rec.ID, rec.Doc); err != nil {
					return err
				}
			}
			if err := write.Insert(table, rec); err != nil {
				return fmt.Errorf("failed to copy %s/%s: %w", table, rec.ID, err)
			}
		}
	}
	write.Commit()
	return nil
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// begin returns a transaction after checking the engine and collection.
// The caller must hold e.mu.
func (e *Engine) begin(collection string, write bool) (*gomemdb.Txn, []string, error) {
	if e.closed {
		return nil, nil, errors.ErrClosed
	}
	unique, ok := e.collections[collection]
	if !ok {
		return nil, nil, fmt.Errorf("collection %q does not exist", collection)
	}
	return e.db.Txn(write), unique, nil
}

func (e *Engine) Insert(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	txn, unique, err := e.begin(collection, true)
	if err != nil {
		return err
	}
	defer txn.Abort()

	existing, err := txn.First(collection, idIndex, id)
	if err != nil {
		return fmt.Errorf("failed to look up %s/%s: %w", collection, id, err)
	}
	if existing != nil {
		return errors.NewConstraintViolationError(collection, storagemodels.IdentifierKey, id)
	}
	if err := checkUnique(txn, collection, unique, id, doc); err != nil {
		return err
	}
	if err := txn.Insert(collection, &record{ID: id, Doc: doc.Clone()}); err != nil {
		return fmt.Errorf("failed to insert %s/%s: %w", collection, id, err)
	}
	txn.Commit()
	return nil
}

func (e *Engine) Replace(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	txn, unique, err := e.begin(collection, true)
	if err != nil {
		return err
	}
	defer txn.Abort()

	existing, err := txn.First(collection, idIndex, id)
	if err != nil {
		return fmt.Errorf("failed to look up %s/%s: %w", collection, id, err)
	}
	if existing == nil {
		return errors.NewNotFoundError(collection, id)
	}
	if err := checkUnique(txn, collection, unique, id, doc); err != nil {
		return err
	}
	if err := txn.Insert(collection, &record{ID: id, Doc: doc.Clone()}); err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", collection, id, err)
	}
	txn.Commit()
	return nil
}

func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	txn, _, err := e.begin(collection, true)
	if err != nil {
		return err
	}
	defer txn.Abort()

	existing, err := txn.First(collection, idIndex, id)
	if err != nil {
		return fmt.Errorf("failed to look up %s/%s: %w", collection, id, err)
	}
	if existing == nil {
		return errors.NewNotFoundError(collection, id)
	}
	if err := txn.Delete(collection, existing); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	txn.Commit()
	return nil
}

func (e *Engine) Get(ctx context.Context, collection, id string) (storagemodels.Document, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	txn, _, err := e.begin(collection, false)
	if err != nil {
		return nil, err
	}
	raw, err := txn.First(collection, idIndex, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if raw == nil {
		return nil, errors.NewNotFoundError(collection, id)
	}
	return raw.(*record).Doc.Clone(), nil
}

func (e *Engine) GetByUnique(ctx context.Context, collection, field string, value interface{}) (storagemodels.Document, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	txn, unique, err := e.begin(collection, false)
	if err != nil {
		return nil, err
	}
	if !contains(unique, field) {
		return nil, fmt.Errorf("field %q of collection %q is not unique", field, collection)
	}
	key, ok, err := storagemodels.UniqueKey(value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewNotFoundError(collection, field+"=<nil>")
	}
	raw, err := txn.First(collection, indexName(field), value)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
	}
	if raw == nil {
		return nil, errors.NewNotFoundError(collection, field+"="+key)
	}
	return raw.(*record).Doc.Clone(), nil
}

// List returns all documents ordered by identifier.
func (e *Engine) List(ctx context.Context, collection string) ([]storagemodels.Document, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	txn, _, err := e.begin(collection, false)
	if err != nil {
		return nil, err
	}
	it, err := txn.Get(collection, idIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	var docs []storagemodels.Document
	for raw := it.Next(); raw != nil; raw = it.Next() {
		docs = append(docs, raw.(*record).Doc.Clone())
	}
	return docs, nil
}

func (e *Engine) Mapper() storagemodels.Mapper {
	return storagemodels.DefaultMapper{}
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.ErrClosed
	}
	e.closed = true
	e.db = nil
	return nil
}

// checkUnique rejects doc if another record already holds one of its unique values.
func checkUnique(txn *gomemdb.Txn, collection string, unique []string, id string, doc storagemodels.Document) error {
	for _, field := range unique {
		value := doc[field]
		if value == nil {
			continue
		}
		raw, err := txn.First(collection, indexName(field), value)
		if err != nil {
			return fmt.Errorf("failed to check unique field %q: %w", field, err)
		}
		if raw != nil && raw.(*record).ID != id {
			return errors.NewConstraintViolationError(collection, field, value)
		}
	}
	return nil
}

func contains(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
