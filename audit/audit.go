/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package audit rebuilds a collection from its event log and verifies the
// registry invariants hold on the result.
package audit

import (
	"context"
	"fmt"

	"github.com/suparena/tokenregistry"
	"github.com/suparena/tokenregistry/eventlog"
	"github.com/suparena/tokenregistry/manifest"
	"github.com/suparena/tokenregistry/storagemodels"
)

// Report is the outcome of a collection audit.
type Report struct {
	Collection      string
	EventsReplayed  uint64
	TotalSupply     uint64
	FinalizedSupply uint64
	Extensions      []storagemodels.ExtensionSnapshot
	Problems        []string
}

// OK reports whether the audit found no problems.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) addProblem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Replay rebuilds a collection by applying every event in the log, in
// order, to a freshly provisioned collection. A log that does not apply
// cleanly (a transfer of an unminted token, a duplicate mint) is reported
// as an error with the offending sequence number.
func Replay(ctx context.Context, m *manifest.Manifest, events eventlog.Store) (*tokenregistry.Collection, uint64, error) {
	c, err := tokenregistry.New(m)
	if err != nil {
		return nil, 0, err
	}

	var replayed uint64
	const batch = 512
	for {
		page, err := events.Read(ctx, replayed, batch)
		if err != nil {
			return nil, replayed, fmt.Errorf("read events after %d: %w", replayed, err)
		}
		if len(page) == 0 {
			return c, replayed, nil
		}

		for _, ev := range page {
			replayed++
			if err := apply(ctx, c, ev); err != nil {
				return nil, replayed, fmt.Errorf("replay event %d (%s token %d): %w",
					replayed, ev.Kind, ev.TokenID, err)
			}
		}
	}
}

func apply(ctx context.Context, c *tokenregistry.Collection, ev *storagemodels.TransferEvent) error {
	switch ev.Kind {
	case storagemodels.EventMint:
		return c.Mint(ctx, tokenregistry.Address(ev.To), ev.TokenID)
	case storagemodels.EventTransfer:
		return c.Transfer(ctx, tokenregistry.Address(ev.From), tokenregistry.Address(ev.To), ev.TokenID)
	case storagemodels.EventBurn:
		return c.Burn(ctx, ev.TokenID)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

// Check verifies the registry invariants on a collection through its
// public read surface:
//
//   - global enumeration is a bijection onto the live tokens
//   - every enumerated token resolves to an owner and back to its
//     extension
//   - per-holder enumerations agree with balances and cover exactly the
//     tokens owned
//   - realized extension counts sum to the total supply
func Check(c *tokenregistry.Collection) *Report {
	report := &Report{
		Collection:      c.Name(),
		TotalSupply:     c.TotalSupply(),
		FinalizedSupply: c.FinalizedSupply(),
	}

	var extensionTotal uint64
	for id := 0; id < c.ExtensionCount(); id++ {
		snap, err := c.SnapshotExtension(id)
		if err != nil {
			report.addProblem("snapshot extension %d: %v", id, err)
			continue
		}
		report.Extensions = append(report.Extensions, snap)
		extensionTotal += snap.RealizedSupply
		if snap.Finalized && snap.TargetSupply != snap.RealizedSupply {
			report.addProblem("extension %d finalized at %d but holds %d tokens",
				id, snap.TargetSupply, snap.RealizedSupply)
		}
	}
	if extensionTotal != report.TotalSupply {
		report.addProblem("extension counts sum to %d, total supply is %d",
			extensionTotal, report.TotalSupply)
	}

	owners := make(map[tokenregistry.Address][]uint64)
	seen := make(map[uint64]bool)
	for i := uint64(0); i < report.TotalSupply; i++ {
		tokenID, err := c.TokenByIndex(i)
		if err != nil {
			report.addProblem("token by index %d: %v", i, err)
			continue
		}
		if seen[tokenID] {
			report.addProblem("token %d enumerated more than once", tokenID)
			continue
		}
		seen[tokenID] = true

		owner, err := c.OwnerOf(tokenID)
		if err != nil {
			report.addProblem("owner of enumerated token %d: %v", tokenID, err)
			continue
		}
		owners[owner] = append(owners[owner], tokenID)

		extID := c.ExtensionByToken(tokenID)
		if extID < 0 {
			report.addProblem("live token %d has no extension assignment", tokenID)
		}
	}
	if _, err := c.TokenByIndex(report.TotalSupply); err == nil {
		report.addProblem("enumeration extends past total supply %d", report.TotalSupply)
	}

	for owner, tokens := range owners {
		balance, err := c.BalanceOf(owner)
		if err != nil {
			report.addProblem("balance of %q: %v", owner, err)
			continue
		}
		if balance != uint64(len(tokens)) {
			report.addProblem("holder %q balance %d disagrees with %d enumerated tokens",
				owner, balance, len(tokens))
		}
		held := make(map[uint64]bool, balance)
		for i := uint64(0); i < balance; i++ {
			tokenID, err := c.TokenOfOwnerByIndex(owner, i)
			if err != nil {
				report.addProblem("token of %q at %d: %v", owner, i, err)
				continue
			}
			held[tokenID] = true
		}
		for _, tokenID := range tokens {
			if !held[tokenID] {
				report.addProblem("holder %q enumeration misses token %d", owner, tokenID)
			}
		}
	}

	return report
}

// Run replays the event log and checks the rebuilt collection, returning
// the combined report.
func Run(ctx context.Context, m *manifest.Manifest, events eventlog.Store) (*Report, error) {
	c, replayed, err := Replay(ctx, m, events)
	if err != nil {
		return nil, err
	}
	report := Check(c)
	report.EventsReplayed = replayed
	return report, nil
}
