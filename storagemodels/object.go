/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"reflect"
)

// PersistentObject is the contract every stored entity satisfies.
type PersistentObject interface {
	// Identifier is never zero after construction.
	Identifier() Identifier

	// Write serializes every persisted attribute, including IdentifierKey.
	Write(m Mapper) Document

	// Read populates the object from doc. A nil doc leaves the object unchanged.
	Read(m Mapper, doc Document) error

	// Equal must start from SameIdentity and may only add conditions.
	Equal(other PersistentObject) bool

	Hash() uint64
}

// Base carries the identifier of an entity. Embed it by value.
type Base struct {
	id Identifier
}

// NewBase returns a Base with a freshly generated identifier.
func NewBase() Base {
	return Base{id: NewIdentifier()}
}

// RestoreBase returns a Base holding a previously persisted identifier.
func RestoreBase(id Identifier) Base {
	return Base{id: id}
}

func (b Base) Identifier() Identifier {
	return b.id
}

// Hash is the identity hash; entities that widen Equal must widen Hash too.
func (b Base) Hash() uint64 {
	return b.id.Hash()
}

// SameIdentity is the base equality: same concrete type and equal identifiers.
func SameIdentity(a, b PersistentObject) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return a.Identifier().Equal(b.Identifier())
}

func isNil(o PersistentObject) bool {
	if o == nil {
		return true
	}
	v := reflect.ValueOf(o)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
