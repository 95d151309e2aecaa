/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ownership

import (
	"testing"

	"github.com/suparena/tokenregistry/errors"
)

func TestTokenSetAddRemove(t *testing.T) {
	s := NewTokenSet()

	s.Add(1)
	s.Add(2)
	s.Add(3)
	s.Add(2) // duplicate add is a no-op

	if s.Len() != 3 {
		t.Fatalf("Expected length 3, got %d", s.Len())
	}

	s.Remove(1)

	if s.Contains(1) {
		t.Error("Token 1 should be gone after Remove")
	}
	if !s.Contains(2) || !s.Contains(3) {
		t.Error("Tokens 2 and 3 should survive removal of 1")
	}
	if s.Len() != 2 {
		t.Errorf("Expected length 2, got %d", s.Len())
	}

	// Removing an absent token is a no-op
	s.Remove(99)
	if s.Len() != 2 {
		t.Errorf("Removing an absent token changed length to %d", s.Len())
	}
}

func TestTokenSetAtBoundary(t *testing.T) {
	s := NewTokenSet()
	s.Add(5)
	s.Add(6)

	if _, err := s.At(1); err != nil {
		t.Errorf("At(length-1) should succeed, got %v", err)
	}
	if _, err := s.At(2); !errors.IsOutOfRange(err) {
		t.Errorf("At(length) should be out of range, got %v", err)
	}

	empty := NewTokenSet()
	if _, err := empty.At(0); !errors.IsOutOfRange(err) {
		t.Errorf("At(0) on empty set should be out of range, got %v", err)
	}
}

func TestTokenSetEnumerationAfterRemovals(t *testing.T) {
	s := NewTokenSet()
	for id := uint64(10); id < 20; id++ {
		s.Add(id)
	}
	s.Remove(10)
	s.Remove(19)
	s.Remove(14)

	seen := make(map[uint64]bool)
	for pos := uint64(0); pos < s.Len(); pos++ {
		tokenID, err := s.At(pos)
		if err != nil {
			t.Fatalf("At(%d) failed: %v", pos, err)
		}
		if seen[tokenID] {
			t.Errorf("Token %d enumerated twice", tokenID)
		}
		seen[tokenID] = true
	}
	if len(seen) != 7 {
		t.Errorf("Expected 7 survivors, enumerated %d", len(seen))
	}
	for _, gone := range []uint64{10, 14, 19} {
		if seen[gone] {
			t.Errorf("Removed token %d still enumerated", gone)
		}
	}
}
