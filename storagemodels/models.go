/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// EventKind classifies a transfer notification.
type EventKind string

const (
	EventMint     EventKind = "mint"
	EventTransfer EventKind = "transfer"
	EventBurn     EventKind = "burn"
)

// TransferEvent is the append-only log entry emitted by every mint,
// transfer and burn. Mints carry an empty From, burns an empty To. Events
// are written for external observers and never consumed by the registry
// itself.
type TransferEvent struct {
	// ID uniquely identifies the event.
	ID string `json:"Id"`

	// Collection is the emitting collection's identifier.
	Collection string `json:"Collection"`

	// Kind is mint, transfer or burn.
	Kind EventKind `json:"Kind"`

	// From is the previous owner; empty for mints.
	From string `json:"From"`

	// To is the new owner; empty for burns.
	To string `json:"To"`

	// TokenID is the global token identifier.
	TokenID uint64 `json:"TokenId"`

	// Extension is the token's extension ordinal.
	Extension int `json:"Extension"`

	// At is the emission timestamp.
	At strfmt.DateTime `json:"At"`
}

// NewTransferEvent builds a TransferEvent with a fresh ID and timestamp.
func NewTransferEvent(collection string, kind EventKind, from, to string, tokenID uint64, extensionID int) TransferEvent {
	return TransferEvent{
		ID:         uuid.NewString(),
		Collection: collection,
		Kind:       kind,
		From:       from,
		To:         to,
		TokenID:    tokenID,
		Extension:  extensionID,
		At:         strfmt.DateTime(time.Now().UTC()),
	}
}

// ApprovalEvent is the append-only log entry emitted by Approve and
// SetApprovalForAll.
type ApprovalEvent struct {
	// ID uniquely identifies the event.
	ID string `json:"Id"`

	// Collection is the emitting collection's identifier.
	Collection string `json:"Collection"`

	// Owner granted the approval.
	Owner string `json:"Owner"`

	// Approved is the approved address or operator.
	Approved string `json:"Approved"`

	// TokenID is set for per-token approvals; zero for operator approvals.
	TokenID uint64 `json:"TokenId"`

	// ForAll marks an operator-wide approval.
	ForAll bool `json:"ForAll"`

	// Granted is false when an approval is revoked.
	Granted bool `json:"Granted"`

	// At is the emission timestamp.
	At strfmt.DateTime `json:"At"`
}

// NewApprovalEvent builds an ApprovalEvent with a fresh ID and timestamp.
func NewApprovalEvent(collection, owner, approved string, tokenID uint64, forAll, granted bool) ApprovalEvent {
	return ApprovalEvent{
		ID:         uuid.NewString(),
		Collection: collection,
		Owner:      owner,
		Approved:   approved,
		TokenID:    tokenID,
		ForAll:     forAll,
		Granted:    granted,
		At:         strfmt.DateTime(time.Now().UTC()),
	}
}

// ExtensionSnapshot is the persisted state of one supply extension. The
// audit tooling uploads snapshots after verification so external systems
// can read supply figures without replaying the event log.
type ExtensionSnapshot struct {
	// Collection is the owning collection's identifier.
	Collection string `json:"Collection"`

	// ExtensionID is the extension's ordinal.
	ExtensionID int `json:"ExtensionId"`

	// Name is the extension's manifest name.
	Name string `json:"Name"`

	// TargetSupply is the pledged supply, or the realized count once
	// finalized.
	TargetSupply uint64 `json:"TargetSupply"`

	// RealizedSupply is the live token count at snapshot time.
	RealizedSupply uint64 `json:"RealizedSupply"`

	// Finalized reports whether the extension's distribution is sealed.
	Finalized bool `json:"Finalized"`

	// UpdatedAt is the snapshot timestamp.
	UpdatedAt strfmt.DateTime `json:"UpdatedAt"`
}
