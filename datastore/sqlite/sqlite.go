/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	storeerrors "github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func validateCollectionName(name string) error {
	if name == "" {
		return storeerrors.NewValidationError("collection", "cannot be empty")
	}
	if !collectionNamePattern.MatchString(name) {
		return storeerrors.NewValidationError("collection",
			"must contain only alphanumeric characters and underscores, and must start with a letter or underscore")
	}
	return nil
}

func uniqueTable(collection string) string {
	return collection + "__unique"
}

// Engine stores each collection in its own table of BSON blobs. Unique
// values live in a side table whose primary key enforces uniqueness.
type Engine struct {
	db *sql.DB

	mu     sync.RWMutex
	unique map[string][]string
	closed bool
}

// Open opens or creates the database file at path.
func Open(path string) (*Engine, error) {
	db, err := sql.Open("sqlite3", buildConnectionString(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one connection serializes writers and keeps side-table checks atomic
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _collections (
		name TEXT PRIMARY KEY,
		unique_fields TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	return &Engine{db: db, unique: make(map[string][]string)}, nil
}

func buildConnectionString(path string) string {
	params := "?mode=rwc&_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"
	if runtime.GOOS == "darwin" {
		params += "&_fullfsync=1"
	}
	return "file:" + path + params
}

// EnsureCollection creates the tables of a collection. When the unique
// fields differ from the catalog, the side table is rebuilt from the
// stored documents.
func (e *Engine) EnsureCollection(ctx context.Context, name string, uniqueFields []string) error {
	if err := validateCollectionName(name); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return storeerrors.ErrClosed
	}

	fields := append([]string(nil), uniqueFields...)
	sort.Strings(fields)
	joined := strings.Join(fields, ",")

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			data BLOB NOT NULL
		)`, name),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			id TEXT NOT NULL,
			PRIMARY KEY (field, value)
		)`, uniqueTable(name)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_id ON %s (id)`, uniqueTable(name), uniqueTable(name)),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create collection %q: %w", name, err)
		}
	}

	stored, known, err := catalogFields(ctx, tx, name)
	if err != nil {
		return err
	}
	if !known || stored != joined {
		if err := rebuildUnique(ctx, tx, name, fields); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO _collections (name, unique_fields) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET unique_fields = excluded.unique_fields`, name, joined); err != nil {
			return fmt.Errorf("failed to update catalog: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	e.unique[name] = fields
	return nil
}

func catalogFields(ctx context.Context, tx *sql.Tx, name string) (string, bool, error) {
	var stored string
	err := tx.QueryRowContext(ctx, `SELECT unique_fields FROM _collections WHERE name = ?`, name).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read catalog: %w", err)
	}
	return stored, true, nil
}

func rebuildUnique(ctx context.Context, tx *sql.Tx, name string, fields []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+uniqueTable(name)); err != nil {
		return fmt.Errorf("failed to clear unique values: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, data FROM `+name)
	if err != nil {
		return fmt.Errorf("failed to scan collection %q: %w", name, err)
	}
	type row struct {
		id  string
		doc storagemodels.Document
	}
	var all []row
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan row: %w", err)
		}
		doc, err := decode(data)
		if err != nil {
			_ = rows.Close()
			return err
		}
		all = append(all, row{id: id, doc: doc})
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	for _, r := range all {
		if err := insertUnique(ctx, tx, name, fields, r.id, r.doc); err != nil {
			return err
		}
	}
	return nil
}

func insertUnique(ctx context.Context, tx *sql.Tx, collection string, fields []string, id string, doc storagemodels.Document) error {
	query := fmt.Sprintf(`INSERT INTO %s (field, value, id) VALUES (?, ?, ?)`, uniqueTable(collection))
	for _, field := range fields {
		key, ok, err := storagemodels.UniqueKey(doc[field])
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, query, field, key, id); err != nil {
			if isConstraint(err) {
				return storeerrors.NewConstraintViolationError(collection, field, doc[field])
			}
			return fmt.Errorf("failed to index %s.%s: %w", collection, field, err)
		}
	}
	return nil
}

func isConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// fields returns the unique fields of a known collection.
func (e *Engine) fields(collection string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, storeerrors.ErrClosed
	}
	fields, ok := e.unique[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}
	return fields, nil
}

func (e *Engine) Insert(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	fields, err := e.fields(collection)
	if err != nil {
		return err
	}
	data, err := encode(doc)
	if err != nil {
		return err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (id, data) VALUES (?, ?)`, collection)
	if _, err := tx.ExecContext(ctx, query, id, data); err != nil {
		if isConstraint(err) {
			return storeerrors.NewConstraintViolationError(collection, storagemodels.IdentifierKey, id)
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}
	if err := insertUnique(ctx, tx, collection, fields, id, doc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (e *Engine) Replace(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	fields, err := e.fields(collection)
	if err != nil {
		return err
	}
	data, err := encode(doc)
	if err != nil {
		return err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`UPDATE %s SET data = ? WHERE id = ?`, collection)
	result, err := tx.ExecContext(ctx, query, data, id)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return storeerrors.NewNotFoundError(collection, id)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, uniqueTable(collection)), id); err != nil {
		return fmt.Errorf("failed to release unique values: %w", err)
	}
	if err := insertUnique(ctx, tx, collection, fields, id, doc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	if _, err := e.fields(collection); err != nil {
		return err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, collection), id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return storeerrors.NewNotFoundError(collection, id)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, uniqueTable(collection)), id); err != nil {
		return fmt.Errorf("failed to release unique values: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (e *Engine) Get(ctx context.Context, collection, id string) (storagemodels.Document, error) {
	if _, err := e.fields(collection); err != nil {
		return nil, err
	}

	var data []byte
	err := e.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, collection), id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storeerrors.NewNotFoundError(collection, id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return decode(data)
}

func (e *Engine) GetByUnique(ctx context.Context, collection, field string, value interface{}) (storagemodels.Document, error) {
	fields, err := e.fields(collection)
	if err != nil {
		return nil, err
	}
	if !contains(fields, field) {
		return nil, fmt.Errorf("field %q of collection %q is not unique", field, collection)
	}
	key, ok, err := storagemodels.UniqueKey(value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storeerrors.NewNotFoundError(collection, field+"=<nil>")
	}

	query := fmt.Sprintf(`SELECT d.data FROM %s d JOIN %s u ON u.id = d.id WHERE u.field = ? AND u.value = ?`,
		collection, uniqueTable(collection))
	var data []byte
	if err := e.db.QueryRowContext(ctx, query, field, key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storeerrors.NewNotFoundError(collection, field+"="+key)
		}
		return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
	}
	return decode(data)
}

// List returns all documents ordered by identifier.
func (e *Engine) List(ctx context.Context, collection string) ([]storagemodels.Document, error) {
	if _, err := e.fields(collection); err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx, fmt.Sprintf(`SELECT data FROM %s ORDER BY id`, collection))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var documents []storagemodels.Document
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		doc, err := decode(data)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return documents, nil
}

func (e *Engine) Mapper() storagemodels.Mapper {
	return storagemodels.DefaultMapper{}
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return storeerrors.ErrClosed
	}
	e.closed = true
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
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
