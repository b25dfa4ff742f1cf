/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/suparena/sportstore/errors"
)

// Identifier is the immutable primary key of a persisted entity.
// It is comparable and can be used as a map key.
type Identifier struct {
	token string
}

// NewIdentifier returns a fresh random identifier (a version 4 UUID).
// uuid.New panics if the entropy source fails, which is not recoverable.
func NewIdentifier() Identifier {
	return Identifier{token: uuid.New().String()}
}

// ParseIdentifier restores an identifier from its textual form.
func ParseIdentifier(s string) (Identifier, error) {
	if s == "" {
		return Identifier{}, errors.NewValidationError(IdentifierKey, "identifier must not be empty")
	}
	return Identifier{token: s}, nil
}

// MustParseIdentifier is like ParseIdentifier but panics on error.
func MustParseIdentifier(s string) Identifier {
	id, err := ParseIdentifier(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identifier) String() string {
	return id.token
}

// IsZero reports whether the identifier was never assigned.
func (id Identifier) IsZero() bool {
	return id.token == ""
}

func (id Identifier) Equal(other Identifier) bool {
	return id.token == other.token
}

func (id Identifier) Hash() uint64 {
	return xxhash.Sum64String(id.token)
}
