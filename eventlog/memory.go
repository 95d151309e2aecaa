/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eventlog

import (
	"context"
	"sync"

	"github.com/suparena/tokenregistry/storagemodels"
)

// MemoryStore is an in-memory Store for tests and ephemeral collections.
type MemoryStore struct {
	mu     sync.RWMutex
	events []*storagemodels.TransferEvent
}

// NewMemoryStore creates an empty in-memory event log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append records an event and returns its sequence number.
func (s *MemoryStore) Append(ctx context.Context, event *storagemodels.TransferEvent) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, event)
	return uint64(len(s.events)), nil
}

// Read returns events after the given sequence number.
func (s *MemoryStore) Read(ctx context.Context, after uint64, limit int) ([]*storagemodels.TransferEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if after >= uint64(len(s.events)) {
		return nil, nil
	}

	rest := s.events[after:]
	if limit > 0 && limit < len(rest) {
		rest = rest[:limit]
	}

	out := make([]*storagemodels.TransferEvent, len(rest))
	copy(out, rest)
	return out, nil
}

// Len returns the number of recorded events.
func (s *MemoryStore) Len(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.events)), nil
}
