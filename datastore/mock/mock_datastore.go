/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the DataStore
// interface for testing
package mock

import (
	"context"
	"sync"

	"github.com/suparena/tokenregistry/errors"
	"github.com/suparena/tokenregistry/storagemodels"
)

// DataStore is a mock implementation of datastore.DataStore[T] for testing
type DataStore[T any] struct {
	mu          sync.RWMutex
	data        map[string]T
	order       []string
	queryFunc   func(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error)
	getKeyFunc  func(record T) string
	putError    error
	deleteError error
	updateError error
}

// New creates a new mock DataStore
func New[T any]() *DataStore[T] {
	return &DataStore[T]{
		data: make(map[string]T),
	}
}

// WithGetKeyFunc sets a custom function to extract keys from records
func (m *DataStore[T]) WithGetKeyFunc(f func(T) string) *DataStore[T] {
	m.getKeyFunc = f
	return m
}

// WithQueryFunc sets a custom query function for testing
func (m *DataStore[T]) WithQueryFunc(f func(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error)) *DataStore[T] {
	m.queryFunc = f
	return m
}

// WithPutError makes Put operations return an error
func (m *DataStore[T]) WithPutError(err error) *DataStore[T] {
	m.putError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DataStore[T]) WithDeleteError(err error) *DataStore[T] {
	m.deleteError = err
	return m
}

// WithUpdateError makes UpdateWithCondition operations return an error
func (m *DataStore[T]) WithUpdateError(err error) *DataStore[T] {
	m.updateError = err
	return m
}

// GetOne retrieves a record by key; (nil, nil) when absent
func (m *DataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if record, exists := m.data[key]; exists {
		return &record, nil
	}
	return nil, nil
}

// Put stores a record
func (m *DataStore[T]) Put(ctx context.Context, record T) error {
	if m.putError != nil {
		return m.putError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.extractKey(record)
	if key == "" {
		return errors.NewValidationError("key", "unable to extract key from record")
	}

	if _, exists := m.data[key]; !exists {
		m.order = append(m.order, key)
	}
	m.data[key] = record
	return nil
}

// UpdateWithCondition checks the key exists; the mock applies no updates
func (m *DataStore[T]) UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]interface{}, condition string) error {
	if m.updateError != nil {
		return m.updateError
	}

	key, ok := keyInput.(string)
	if !ok {
		return errors.NewValidationError("keyInput", "must be a string for mock")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists {
		return errors.NewValidationError("key", "record does not exist")
	}
	return nil
}

// Query returns all stored records in insertion order, or delegates to a
// custom query function when one is set
func (m *DataStore[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]interface{}, 0, len(m.order))
	for _, key := range m.order {
		if record, ok := m.data[key]; ok {
			results = append(results, record)
		}
	}
	return results, nil
}

// Stream sends all stored records in insertion order
func (m *DataStore[T]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}

	ch := make(chan storagemodels.StreamResult[T], options.BufferSize)

	go func() {
		defer close(ch)

		m.mu.RLock()
		snapshot := make([]T, 0, len(m.order))
		for _, key := range m.order {
			if record, ok := m.data[key]; ok {
				snapshot = append(snapshot, record)
			}
		}
		m.mu.RUnlock()

		for i, record := range snapshot {
			select {
			case <-ctx.Done():
				return
			case ch <- storagemodels.StreamResult[T]{
				Item: record,
				Meta: storagemodels.StreamMeta{Index: int64(i), PageNumber: 1},
			}:
			}
		}
	}()

	return ch
}

// Delete removes a record by key
func (m *DataStore[T]) Delete(ctx context.Context, key string) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; exists {
		delete(m.data, key)
		for i, k := range m.order {
			if k == key {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Len returns the number of stored records
func (m *DataStore[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *DataStore[T]) extractKey(record T) string {
	if m.getKeyFunc != nil {
		return m.getKeyFunc(record)
	}
	return ""
}
