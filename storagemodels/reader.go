/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"math"
	"time"

	"github.com/suparena/sportstore/errors"
)

// Reader extracts typed fields from a document. The first failure sticks:
// later calls return zero values and Err reports the original error.
//
//	r := storagemodels.NewReader(m, doc)
//	name := r.String("firstName")
//	level := r.Int("trainingLevel")
//	if err := r.Err(); err != nil {
//	    return err
//	}
type Reader struct {
	mapper Mapper
	doc    Document
	err    error
}

// NewReader returns a Reader over doc. A nil mapper means DefaultMapper.
func NewReader(m Mapper, doc Document) *Reader {
	if m == nil {
		m = DefaultMapper{}
	}
	return &Reader{mapper: m, doc: doc}
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) lookup(key, expected string) (interface{}, bool) {
	if r.err != nil {
		return nil, false
	}
	v, ok := r.doc[key]
	if !ok {
		r.err = errors.NewTypeMismatchError(key, expected, nil)
		return nil, false
	}
	return v, true
}

func (r *Reader) String(key string) string {
	v, ok := r.lookup(key, "string")
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.err = errors.NewTypeMismatchError(key, "string", v)
		return ""
	}
	return s
}

func (r *Reader) Bool(key string) bool {
	v, ok := r.lookup(key, "bool")
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.err = errors.NewTypeMismatchError(key, "bool", v)
		return false
	}
	return b
}

func (r *Reader) Int(key string) int {
	v, ok := r.lookup(key, "int")
	if !ok {
		return 0
	}
	n, ok := toInt64(v)
	if !ok || n > math.MaxInt || n < math.MinInt {
		r.err = errors.NewTypeMismatchError(key, "int", v)
		return 0
	}
	return int(n)
}

func (r *Reader) Time(key string) time.Time {
	v, ok := r.lookup(key, "timestamp")
	if !ok {
		return time.Time{}
	}
	t, err := r.mapper.DecodeTime(key, v)
	if err != nil {
		r.err = err
		return time.Time{}
	}
	return t
}

// Identifier reads a required identifier.
func (r *Reader) Identifier(key string) Identifier {
	s := r.String(key)
	if r.err != nil {
		return Identifier{}
	}
	id, err := ParseIdentifier(s)
	if err != nil {
		r.err = errors.NewTypeMismatchError(key, "non-empty identifier", s)
		return Identifier{}
	}
	return id
}

// OptionalIdentifier reads a nullable identifier. The key must be present.
func (r *Reader) OptionalIdentifier(key string) *Identifier {
	raw, ok := r.lookup(key, "identifier or null")
	if !ok || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		r.err = errors.NewTypeMismatchError(key, "identifier or null", raw)
		return nil
	}
	id := Identifier{token: s}
	return &id
}
