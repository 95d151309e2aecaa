/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ownership

import (
	"github.com/suparena/tokenregistry/errors"
)

// OwnerMap is an insertion-ordered, enumerable mapping from token identifier
// to owner address. Insert, remove, lookup and positional access are all
// O(1). Removal swaps the last enumerated entry into the vacated position,
// so enumeration order is disturbed by removals.
type OwnerMap struct {
	owners    map[uint64]Address
	positions map[uint64]int
	tokens    []uint64
}

// NewOwnerMap creates an empty OwnerMap.
func NewOwnerMap() *OwnerMap {
	return &OwnerMap{
		owners:    make(map[uint64]Address),
		positions: make(map[uint64]int),
	}
}

// Set inserts the token with the given owner, or updates the owner in place
// if the token is already present. An update never changes the token's
// enumeration position.
func (m *OwnerMap) Set(tokenID uint64, owner Address) {
	if _, exists := m.owners[tokenID]; !exists {
		m.positions[tokenID] = len(m.tokens)
		m.tokens = append(m.tokens, tokenID)
	}
	m.owners[tokenID] = owner
}

// Get returns the owner of the given token.
func (m *OwnerMap) Get(tokenID uint64) (Address, error) {
	owner, ok := m.owners[tokenID]
	if !ok {
		return ZeroAddress, errors.NewNotFoundError("token", tokenID)
	}
	return owner, nil
}

// Remove deletes the token from the map. Removing an absent token is a
// no-op. The last enumerated entry is swapped into the removed slot.
func (m *OwnerMap) Remove(tokenID uint64) {
	pos, ok := m.positions[tokenID]
	if !ok {
		return
	}

	last := len(m.tokens) - 1
	moved := m.tokens[last]
	m.tokens[pos] = moved
	m.positions[moved] = pos
	m.tokens = m.tokens[:last]

	delete(m.owners, tokenID)
	delete(m.positions, tokenID)
}

// Contains reports whether the token is present.
func (m *OwnerMap) Contains(tokenID uint64) bool {
	_, ok := m.owners[tokenID]
	return ok
}

// Len returns the number of tokens in the map.
func (m *OwnerMap) Len() uint64 {
	return uint64(len(m.tokens))
}

// At returns the token and owner at the given enumeration position.
func (m *OwnerMap) At(position uint64) (uint64, Address, error) {
	if position >= uint64(len(m.tokens)) {
		return 0, ZeroAddress, errors.NewOutOfRangeError("token", position, uint64(len(m.tokens)))
	}
	tokenID := m.tokens[position]
	return tokenID, m.owners[tokenID], nil
}

// Position returns the current enumeration position of the given token.
// Positions are only stable until the next Remove.
func (m *OwnerMap) Position(tokenID uint64) (uint64, error) {
	pos, ok := m.positions[tokenID]
	if !ok {
		return 0, errors.NewNotFoundError("token", tokenID)
	}
	return uint64(pos), nil
}
