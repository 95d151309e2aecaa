/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ownership

import (
	"github.com/suparena/tokenregistry/errors"
)

// TokenSet is an enumerable set of token identifiers with O(1) membership
// test, insert, remove and positional access. Like OwnerMap it compacts by
// swapping the last entry into a removed slot, so positions do not survive
// removals.
//
// One TokenSet exists per holder address, created lazily on the holder's
// first token. An empty set is observably equivalent to an absent one.
type TokenSet struct {
	positions map[uint64]int
	tokens    []uint64
}

// NewTokenSet creates an empty TokenSet.
func NewTokenSet() *TokenSet {
	return &TokenSet{positions: make(map[uint64]int)}
}

// Add inserts the token. Adding a token already in the set is a no-op.
func (s *TokenSet) Add(tokenID uint64) {
	if _, ok := s.positions[tokenID]; ok {
		return
	}
	s.positions[tokenID] = len(s.tokens)
	s.tokens = append(s.tokens, tokenID)
}

// Remove deletes the token from the set. Removing an absent token is a
// no-op.
func (s *TokenSet) Remove(tokenID uint64) {
	pos, ok := s.positions[tokenID]
	if !ok {
		return
	}

	last := len(s.tokens) - 1
	moved := s.tokens[last]
	s.tokens[pos] = moved
	s.positions[moved] = pos
	s.tokens = s.tokens[:last]

	delete(s.positions, tokenID)
}

// Contains reports whether the token is in the set.
func (s *TokenSet) Contains(tokenID uint64) bool {
	_, ok := s.positions[tokenID]
	return ok
}

// Len returns the number of tokens in the set.
func (s *TokenSet) Len() uint64 {
	return uint64(len(s.tokens))
}

// At returns the token at the given enumeration position.
func (s *TokenSet) At(position uint64) (uint64, error) {
	if position >= uint64(len(s.tokens)) {
		return 0, errors.NewOutOfRangeError("holder", position, uint64(len(s.tokens)))
	}
	return s.tokens[position], nil
}
