/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"

	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

// Unique-index declarations live next to the entity type, not in documents.

func validateUniqueFields(fields []string) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f == "" {
			return errors.NewValidationError("uniqueFields", "field name must not be empty")
		}
		if f == storagemodels.IdentifierKey {
			return errors.NewValidationError("uniqueFields", fmt.Sprintf("%q is the primary key and always unique", f))
		}
		if _, dup := seen[f]; dup {
			return errors.NewValidationError("uniqueFields", fmt.Sprintf("field %q declared twice", f))
		}
		seen[f] = struct{}{}
	}
	return nil
}

// IsUnique reports whether field is declared unique for the entity type.
func (et *EntityType) IsUnique(field string) bool {
	if field == storagemodels.IdentifierKey {
		return true
	}
	for _, f := range et.UniqueFields {
		if f == field {
			return true
		}
	}
	return false
}

// UniqueFields returns the unique field declaration of the named entity type.
func (r *Registry) UniqueFields(name string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	et, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), et.UniqueFields...), true
}
