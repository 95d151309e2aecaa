/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package extension

import (
	"github.com/suparena/tokenregistry/ownership"
)

// Extension is one supply partition of a collection: a pledged target
// supply plus the enumerable map of tokens currently live inside it.
// Extensions are created once, in order, and never removed.
type Extension struct {
	name         string
	targetSupply uint64
	finalized    bool
	tokens       *ownership.OwnerMap
}

// Name returns the extension's manifest name.
func (e *Extension) Name() string {
	return e.name
}

// TargetSupply returns the pledged supply, or the realized supply after
// the extension has been finalized.
func (e *Extension) TargetSupply() uint64 {
	return e.targetSupply
}

// Realized returns the number of tokens currently live in the extension.
func (e *Extension) Realized() uint64 {
	return e.tokens.Len()
}

// Finalized reports whether Finalize has run for this extension.
func (e *Extension) Finalized() bool {
	return e.finalized
}

// Tokens exposes the extension's ownership map. The map is owned by the
// registry's Collection; callers outside the lifecycle must treat it as
// read-only.
func (e *Extension) Tokens() *ownership.OwnerMap {
	return e.tokens
}
