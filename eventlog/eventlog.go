/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package eventlog records transfer and approval events as an ordered,
// append-only log so that a collection can be rebuilt by replay.
package eventlog

import (
	"context"

	"github.com/suparena/tokenregistry/storagemodels"
)

// Store is an append-only log of transfer events. Sequence numbers are
// assigned by the store starting at 1 and are strictly increasing.
type Store interface {
	// Append records an event and returns its sequence number.
	Append(ctx context.Context, event *storagemodels.TransferEvent) (uint64, error)

	// Read returns events with sequence numbers greater than after, in
	// order, up to limit. A limit of 0 means no limit.
	Read(ctx context.Context, after uint64, limit int) ([]*storagemodels.TransferEvent, error)

	// Len returns the number of events in the log.
	Len(ctx context.Context) (uint64, error)
}
