/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package extension

import (
	"github.com/suparena/tokenregistry/errors"
	"github.com/suparena/tokenregistry/ownership"
)

// NoExtension is the sentinel returned by ExtensionOf for tokens that were
// never assigned to an extension. It is not an existence check: a token
// with a valid assignment may still be unminted or burned.
const NoExtension = -1

// Registry is the ordered sequence of a collection's supply extensions.
// It records the immutable token-to-extension assignment made at
// provisioning time and resolves global enumeration indexes into
// (extension, local index) pairs.
//
// Registry is not safe for concurrent use; the owning Collection
// serializes access.
type Registry struct {
	extensions  []*Extension
	assignments map[uint64]int

	// Running total of realized counts snapshotted by Finalize. Feeds the
	// audit surface; live supply is always computed from the maps.
	finalizedSupply uint64
}

// NewRegistry creates an empty extension registry.
func NewRegistry() *Registry {
	return &Registry{assignments: make(map[uint64]int)}
}

// AddExtension appends a new extension with the given target supply and
// returns its ordinal identifier. Extensions cannot be removed or
// reordered once added.
func (r *Registry) AddExtension(name string, targetSupply uint64) int {
	r.extensions = append(r.extensions, &Extension{
		name:         name,
		targetSupply: targetSupply,
		tokens:       ownership.NewOwnerMap(),
	})
	return len(r.extensions) - 1
}

// Count returns the number of extensions.
func (r *Registry) Count() int {
	return len(r.extensions)
}

// Extension returns the extension with the given ordinal identifier.
func (r *Registry) Extension(extensionID int) (*Extension, error) {
	if extensionID < 0 || extensionID >= len(r.extensions) {
		return nil, errors.NewOutOfRangeError("extension", uint64(extensionID), uint64(len(r.extensions)))
	}
	return r.extensions[extensionID], nil
}

// SupplyOf returns the target supply of the given extension. After
// finalization the target slot holds the realized count.
func (r *Registry) SupplyOf(extensionID int) (uint64, error) {
	ext, err := r.Extension(extensionID)
	if err != nil {
		return 0, err
	}
	return ext.TargetSupply(), nil
}

// Assign records the immutable extension assignment for a token. It is the
// provisioning half of the mint protocol: assignments are made before any
// mint and are never changed afterwards.
func (r *Registry) Assign(tokenID uint64, extensionID int) error {
	if extensionID < 0 || extensionID >= len(r.extensions) {
		return errors.NewOutOfRangeError("extension", uint64(extensionID), uint64(len(r.extensions)))
	}
	if _, exists := r.assignments[tokenID]; exists {
		return errors.NewAlreadyExistsError("assignment for token", tokenID)
	}
	r.assignments[tokenID] = extensionID
	return nil
}

// ExtensionOf returns the extension assigned to the token at provisioning
// time, or NoExtension if the token was never assigned. Callers must not
// use this as an existence check; existence is Contains on the resolved
// extension's map.
func (r *Registry) ExtensionOf(tokenID uint64) int {
	extensionID, ok := r.assignments[tokenID]
	if !ok {
		return NoExtension
	}
	return extensionID
}

// TokenByExtensionAndIndex returns the token at the given position within
// one extension's enumeration.
func (r *Registry) TokenByExtensionAndIndex(extensionID int, index uint64) (uint64, error) {
	ext, err := r.Extension(extensionID)
	if err != nil {
		return 0, err
	}
	tokenID, _, err := ext.Tokens().At(index)
	return tokenID, err
}

// TotalSupply returns the number of live tokens across all extensions.
//
// Supply is summed from the realized count of every extension on each
// call. The extension count is bounded to a few dozen, so the linear walk
// is cheaper than keeping the finalized-total shortcut consistent with
// unfinalized extensions, which undercounts any extension still open.
func (r *Registry) TotalSupply() uint64 {
	var total uint64
	for _, ext := range r.extensions {
		total += ext.Realized()
	}
	return total
}

// FinalizedSupply returns the running total of realized counts recorded by
// Finalize. It only equals TotalSupply once every extension with live
// tokens has been finalized and none has been mutated since.
func (r *Registry) FinalizedSupply() uint64 {
	return r.finalizedSupply
}

// TokenByIndex resolves a global enumeration index to a token. Extensions
// are walked in ascending order; within an extension tokens follow that
// extension's own enumeration order. The walk subtracts realized counts,
// so the composition is a bijection onto [0, TotalSupply()) whether or not
// extensions have been finalized.
func (r *Registry) TokenByIndex(globalIndex uint64) (uint64, error) {
	remaining := globalIndex
	for _, ext := range r.extensions {
		realized := ext.Realized()
		if remaining < realized {
			tokenID, _, err := ext.Tokens().At(remaining)
			return tokenID, err
		}
		remaining -= realized
	}
	return 0, errors.NewOutOfRangeError("global", globalIndex, r.TotalSupply())
}

// Finalize seals an extension's distribution: the realized live-token
// count is snapshotted into the target-supply slot and added to the
// finalized running total. It is meant to run exactly once per extension,
// after its mints complete and before minting starts on the next
// extension. Calling it again adds the count to the running total a second
// time; callers own that discipline.
func (r *Registry) Finalize(extensionID int) error {
	ext, err := r.Extension(extensionID)
	if err != nil {
		return err
	}
	realized := ext.Realized()
	ext.targetSupply = realized
	ext.finalized = true
	r.finalizedSupply += realized
	return nil
}
