/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

// RehydrateFunc builds a fully populated entity from a stored document.
type RehydrateFunc func(m storagemodels.Mapper, doc storagemodels.Document) (storagemodels.PersistentObject, error)

// EntityType describes one registered entity type.
type EntityType struct {
	// Name is the collection the entities are stored in.
	Name string
	// Type is the Go type of the entity, usually a pointer type.
	Type         reflect.Type
	UniqueFields []string
	Rehydrate    RehydrateFunc
}

// Registry maps Go types to their entity type declaration.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*EntityType
	byName map[string]*EntityType
	order  []*EntityType
}

// Default is the process-wide registry used when none is configured.
var Default = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*EntityType),
		byName: make(map[string]*EntityType),
	}
}

// Register declares T as an entity stored in the named collection, with the
// given unique fields. It is meant to run once at startup.
func Register[T storagemodels.PersistentObject](r *Registry, name string, rehydrate func(storagemodels.Mapper, storagemodels.Document) (T, error), uniqueFields ...string) error {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Errorf("type registry: %q must be registered with a concrete type", name)
	}
	if name == "" {
		return errors.NewValidationError("name", "entity type name must not be empty")
	}
	if rehydrate == nil {
		return errors.NewValidationError("rehydrate", "rehydrate function is required")
	}
	if err := validateUniqueFields(uniqueFields); err != nil {
		return err
	}

	et := &EntityType{
		Name:         name,
		Type:         t,
		UniqueFields: append([]string(nil), uniqueFields...),
		Rehydrate: func(m storagemodels.Mapper, doc storagemodels.Document) (storagemodels.PersistentObject, error) {
			return rehydrate(m, doc)
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byType[t]; exists {
		return fmt.Errorf("type registry: type %s already registered", t)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("type registry: name %q already registered", name)
	}
	r.byType[t] = et
	r.byName[name] = et
	r.order = append(r.order, et)
	return nil
}

// MustRegister is like Register but panics on error. Intended for init functions.
func MustRegister[T storagemodels.PersistentObject](r *Registry, name string, rehydrate func(storagemodels.Mapper, storagemodels.Document) (T, error), uniqueFields ...string) {
	if err := Register(r, name, rehydrate, uniqueFields...); err != nil {
		panic(err)
	}
}

// Lookup returns the entity type of obj.
func (r *Registry) Lookup(obj storagemodels.PersistentObject) (*EntityType, error) {
	t := reflect.TypeOf(obj)
	r.mu.RLock()
	defer r.mu.RUnlock()

	et, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %v", errors.ErrNotRegistered, t)
	}
	return et, nil
}

// LookupName returns the entity type registered under name.
func (r *Registry) LookupName(name string) (*EntityType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	et, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrNotRegistered, name)
	}
	return et, nil
}

// LookupType returns the entity type registered for T.
func LookupType[T storagemodels.PersistentObject](r *Registry) (*EntityType, error) {
	var zero T
	t := reflect.TypeOf(zero)

	r.mu.RLock()
	defer r.mu.RUnlock()

	et, ok := r.byType[t]
	if !ok {
		return nil, fmt.Errorf("%w: %v", errors.ErrNotRegistered, t)
	}
	return et, nil
}

// Types returns all entity types in registration order.
func (r *Registry) Types() []*EntityType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*EntityType(nil), r.order...)
}
