/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tokenregistry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/suparena/tokenregistry/datastore"
)

// TypedStores holds the named DataStore instances for one record type T.
// The audit tooling keeps its snapshot and event stores here so callers
// address them by name ("snapshots", "events") instead of threading store
// handles through every call.
type TypedStores[T any] struct {
	mu     sync.RWMutex
	stores map[string]datastore.DataStore[T]
}

// NewTypedStores creates an empty store set for type T.
func NewTypedStores[T any]() *TypedStores[T] {
	return &TypedStores[T]{
		stores: make(map[string]datastore.DataStore[T]),
	}
}

// Register adds a datastore under the given name.
func (ts *TypedStores[T]) Register(name string, ds datastore.DataStore[T]) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.stores[name]; exists {
		return fmt.Errorf("datastore %q already registered", name)
	}
	ts.stores[name] = ds
	return nil
}

// Get retrieves a datastore by name.
func (ts *TypedStores[T]) Get(name string) (datastore.DataStore[T], error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	ds, exists := ts.stores[name]
	if !exists {
		return nil, fmt.Errorf("datastore %q not found", name)
	}
	return ds, nil
}

// Remove deletes a datastore by name.
func (ts *TypedStores[T]) Remove(name string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.stores[name]; !exists {
		return fmt.Errorf("datastore %q not found", name)
	}
	delete(ts.stores, name)
	return nil
}

// List returns all registered datastore names.
func (ts *TypedStores[T]) List() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	names := make([]string, 0, len(ts.stores))
	for name := range ts.stores {
		names = append(names, name)
	}
	return names
}

// StoreManager manages TypedStores instances across record types, so one
// manager can carry event stores, approval stores and snapshot stores
// side by side.
type StoreManager struct {
	mu       sync.RWMutex
	storages map[reflect.Type]interface{}
}

// NewStoreManager creates an empty StoreManager.
func NewStoreManager() *StoreManager {
	return &StoreManager{
		storages: make(map[reflect.Type]interface{}),
	}
}

// Stores returns the TypedStores for type T, creating it if necessary.
func Stores[T any](sm *StoreManager) *TypedStores[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	var zero T
	typ := reflect.TypeOf(zero)

	if storage, exists := sm.storages[typ]; exists {
		return storage.(*TypedStores[T])
	}

	newStorage := NewTypedStores[T]()
	sm.storages[typ] = newStorage
	return newStorage
}

// RegisterDataStore registers a datastore for type T under the given name.
func RegisterDataStore[T any](sm *StoreManager, name string, ds datastore.DataStore[T]) error {
	return Stores[T](sm).Register(name, ds)
}

// GetDataStore retrieves the datastore for type T registered under name.
func GetDataStore[T any](sm *StoreManager, name string) (datastore.DataStore[T], error) {
	return Stores[T](sm).Get(name)
}
