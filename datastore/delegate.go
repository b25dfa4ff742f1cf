/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"reflect"

	"github.com/suparena/sportstore/storagemodels"
)

// Delegate observes successful store mutations, e.g. to keep a UI in sync.
//
// Hooks run synchronously on the goroutine that performed the operation,
// after the engine confirmed it, exactly once, and never for failed operations.
// A slow hook blocks the caller.
type Delegate interface {
	DidObjectAdded(obj storagemodels.PersistentObject)
	DidObjectUpdated(obj storagemodels.PersistentObject)
	DidObjectRemoved(obj storagemodels.PersistentObject)
}

// NopDelegate implements every hook as a no-op. Embed it to implement only
// the hooks you need.
type NopDelegate struct{}

func (NopDelegate) DidObjectAdded(storagemodels.PersistentObject)   {}
func (NopDelegate) DidObjectUpdated(storagemodels.PersistentObject) {}
func (NopDelegate) DidObjectRemoved(storagemodels.PersistentObject) {}

// DelegateFuncs adapts plain functions to a Delegate. Nil funcs are no-ops.
// Register it by pointer so it can be unregistered.
type DelegateFuncs struct {
	Added   func(obj storagemodels.PersistentObject)
	Updated func(obj storagemodels.PersistentObject)
	Removed func(obj storagemodels.PersistentObject)
}

func (f *DelegateFuncs) DidObjectAdded(obj storagemodels.PersistentObject) {
	if f.Added != nil {
		f.Added(obj)
	}
}

func (f *DelegateFuncs) DidObjectUpdated(obj storagemodels.PersistentObject) {
	if f.Updated != nil {
		f.Updated(obj)
	}
}

func (f *DelegateFuncs) DidObjectRemoved(obj storagemodels.PersistentObject) {
	if f.Removed != nil {
		f.Removed(obj)
	}
}

type event int

const (
	eventAdded event = iota
	eventUpdated
	eventRemoved
)

func (e event) String() string {
	switch e {
	case eventAdded:
		return "added"
	case eventUpdated:
		return "updated"
	default:
		return "removed"
	}
}

// RegisterDelegate appends d to the delegates notified after each mutation.
// Delegates are called in registration order. Registering a pointer delegate
// that is already registered has no effect; delegates of other kinds are
// never considered duplicates.
func (ds *Datastore) RegisterDelegate(d Delegate) {
	if d == nil {
		return
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	for _, existing := range ds.delegates {
		if sameDelegate(existing, d) {
			return
		}
	}
	ds.delegates = append(ds.delegates, d)
}

// UnregisterDelegate removes d and reports whether it was registered.
// Only pointer delegates can be unregistered.
func (ds *Datastore) UnregisterDelegate(d Delegate) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	for i, existing := range ds.delegates {
		if sameDelegate(existing, d) {
			ds.delegates = append(ds.delegates[:i:i], ds.delegates[i+1:]...)
			return true
		}
	}
	return false
}

// sameDelegate compares pointer delegates by identity. Struct values may hold
// non-comparable interface fields that panic under ==.
func sameDelegate(a, b Delegate) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta.Kind() != reflect.Ptr {
		return false
	}
	return a == b
}

// notify fans out to a snapshot of the delegates so hooks may (un)register.
func (ds *Datastore) notify(e event, obj storagemodels.PersistentObject) {
	ds.mu.RLock()
	delegates := append([]Delegate(nil), ds.delegates...)
	ds.mu.RUnlock()

	for _, d := range delegates {
		switch e {
		case eventAdded:
			d.DidObjectAdded(obj)
		case eventUpdated:
			d.DidObjectUpdated(obj)
		case eventRemoved:
			d.DidObjectRemoved(obj)
		}
	}
}
