/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tokenregistry

import (
	"context"
	"fmt"
	"testing"

	"github.com/suparena/tokenregistry/errors"
	"github.com/suparena/tokenregistry/eventlog"
	"github.com/suparena/tokenregistry/extension"
	"github.com/suparena/tokenregistry/manifest"
	"github.com/suparena/tokenregistry/storagemodels"
)

const (
	alice Address = "alice"
	bob   Address = "bob"
	carol Address = "carol"
)

// twoExtensionManifest declares genesis (tokens 1..3, target 3) and
// series-two (tokens 100..101, target 2).
func twoExtensionManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Name:    "Apex Editions",
		Symbol:  "APEX",
		BaseURI: "https://tokens.example.com/apex/",
		Extensions: []manifest.ExtensionDecl{
			{Name: "genesis", TargetSupply: 3, Tokens: []manifest.TokenRange{{First: 1, Last: 3}}},
			{Name: "series-two", TargetSupply: 2, Tokens: []manifest.TokenRange{{First: 100, Last: 101}}},
		},
	}
}

func newCollection(t *testing.T, opts ...Option) *Collection {
	t.Helper()
	c, err := New(twoExtensionManifest(), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func mustMint(t *testing.T, c *Collection, to Address, tokenID uint64) {
	t.Helper()
	if err := c.Mint(context.Background(), to, tokenID); err != nil {
		t.Fatalf("Mint(%q, %d) failed: %v", to, tokenID, err)
	}
}

func TestMintAndOwnerOf(t *testing.T) {
	c := newCollection(t)
	mustMint(t, c, alice, 1)

	owner, err := c.OwnerOf(1)
	if err != nil {
		t.Fatalf("OwnerOf failed: %v", err)
	}
	if owner != alice {
		t.Fatalf("OwnerOf(1) = %q, want %q", owner, alice)
	}
}

func TestMintErrors(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()

	t.Run("ZeroRecipient", func(t *testing.T) {
		if err := c.Mint(ctx, ZeroAddress, 1); !errors.IsInvalidRecipient(err) {
			t.Fatalf("expected InvalidRecipient, got %v", err)
		}
	})

	t.Run("UnassignedToken", func(t *testing.T) {
		if err := c.Mint(ctx, alice, 999); !errors.IsNotFound(err) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("DuplicateMint", func(t *testing.T) {
		mustMint(t, c, alice, 1)
		if err := c.Mint(ctx, bob, 1); !errors.IsAlreadyExists(err) {
			t.Fatalf("expected AlreadyExists, got %v", err)
		}
		owner, _ := c.OwnerOf(1)
		if owner != alice {
			t.Fatalf("failed mint changed owner to %q", owner)
		}
	})
}

func TestBalanceOf(t *testing.T) {
	c := newCollection(t)
	mustMint(t, c, alice, 1)
	mustMint(t, c, alice, 2)

	if _, err := c.BalanceOf(ZeroAddress); !errors.IsInvalidRecipient(err) {
		t.Fatalf("expected InvalidRecipient for zero address, got %v", err)
	}

	balance, err := c.BalanceOf(alice)
	if err != nil {
		t.Fatalf("BalanceOf failed: %v", err)
	}
	if balance != 2 {
		t.Fatalf("BalanceOf(alice) = %d, want 2", balance)
	}

	balance, err = c.BalanceOf(bob)
	if err != nil {
		t.Fatalf("BalanceOf failed: %v", err)
	}
	if balance != 0 {
		t.Fatalf("BalanceOf(bob) = %d, want 0", balance)
	}
}

// Mirrors the single-extension lifecycle: mint three, transfer one, burn
// one, checking owners, balances and supply at each step.
func TestSingleExtensionLifecycle(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()

	mustMint(t, c, alice, 1)
	mustMint(t, c, alice, 2)
	mustMint(t, c, bob, 3)

	if got := c.TotalSupply(); got != 3 {
		t.Fatalf("TotalSupply = %d, want 3", got)
	}

	if err := c.Transfer(ctx, alice, bob, 2); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	owner, _ := c.OwnerOf(2)
	if owner != bob {
		t.Fatalf("OwnerOf(2) = %q after transfer", owner)
	}
	aliceBal, _ := c.BalanceOf(alice)
	bobBal, _ := c.BalanceOf(bob)
	if aliceBal != 1 || bobBal != 2 {
		t.Fatalf("balances = %d/%d, want 1/2", aliceBal, bobBal)
	}

	if err := c.Burn(ctx, 1); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}
	if got := c.TotalSupply(); got != 2 {
		t.Fatalf("TotalSupply after burn = %d, want 2", got)
	}
	if _, err := c.OwnerOf(1); !errors.IsNotFound(err) {
		t.Fatalf("expected NotFound for burned token, got %v", err)
	}
	aliceBal, _ = c.BalanceOf(alice)
	if aliceBal != 0 {
		t.Fatalf("BalanceOf(alice) after burn = %d, want 0", aliceBal)
	}
}

// Mirrors the two-extension enumeration scenario: fill genesis (3) and
// series-two (2), finalize genesis, and check that global index 3 lands on
// the first token of series-two.
func TestTwoExtensionGlobalEnumeration(t *testing.T) {
	c := newCollection(t)

	mustMint(t, c, alice, 1)
	mustMint(t, c, alice, 2)
	mustMint(t, c, bob, 3)
	if err := c.FinalizeDistribution(0); err != nil {
		t.Fatalf("FinalizeDistribution failed: %v", err)
	}
	mustMint(t, c, carol, 100)
	mustMint(t, c, carol, 101)

	if got := c.TotalSupply(); got != 5 {
		t.Fatalf("TotalSupply = %d, want 5", got)
	}
	if got := c.FinalizedSupply(); got != 3 {
		t.Fatalf("FinalizedSupply = %d, want 3", got)
	}

	tokenID, err := c.TokenByIndex(3)
	if err != nil {
		t.Fatalf("TokenByIndex(3) failed: %v", err)
	}
	if tokenID != 100 {
		t.Fatalf("TokenByIndex(3) = %d, want 100", tokenID)
	}

	// The composition over [0, TotalSupply) must hit every live token
	// exactly once.
	seen := make(map[uint64]bool)
	for i := uint64(0); i < c.TotalSupply(); i++ {
		id, err := c.TokenByIndex(i)
		if err != nil {
			t.Fatalf("TokenByIndex(%d) failed: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("TokenByIndex repeated token %d", id)
		}
		seen[id] = true
	}

	if _, err := c.TokenByIndex(5); !errors.IsOutOfRange(err) {
		t.Fatalf("expected OutOfRange at TotalSupply, got %v", err)
	}
}

func TestTransferErrors(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()
	mustMint(t, c, alice, 1)

	t.Run("ZeroRecipient", func(t *testing.T) {
		if err := c.Transfer(ctx, alice, ZeroAddress, 1); !errors.IsInvalidRecipient(err) {
			t.Fatalf("expected InvalidRecipient, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if err := c.Transfer(ctx, alice, bob, 2); !errors.IsNotFound(err) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("OwnerMismatch", func(t *testing.T) {
		if err := c.Transfer(ctx, bob, carol, 1); !errors.IsOwnerMismatch(err) {
			t.Fatalf("expected OwnerMismatch, got %v", err)
		}
		owner, _ := c.OwnerOf(1)
		if owner != alice {
			t.Fatalf("failed transfer changed owner to %q", owner)
		}
	})
}

func TestTransferClearsApproval(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()
	mustMint(t, c, alice, 1)

	if err := c.Approve(alice, carol, 1); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if err := c.Transfer(ctx, alice, bob, 1); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	approved, err := c.GetApproved(1)
	if err != nil {
		t.Fatalf("GetApproved failed: %v", err)
	}
	if approved != ZeroAddress {
		t.Fatalf("approval survived transfer: %q", approved)
	}
}

func TestHookVeto(t *testing.T) {
	veto := fmt.Errorf("frozen")
	var calls int
	c := newCollection(t, WithHook(TransferHookFunc(func(from, to Address, tokenID uint64) error {
		calls++
		if tokenID == 2 {
			return veto
		}
		return nil
	})))
	ctx := context.Background()

	mustMint(t, c, alice, 1)
	if err := c.Mint(ctx, alice, 2); err == nil {
		t.Fatal("expected hook veto")
	}

	if c.TotalSupply() != 1 {
		t.Fatalf("vetoed mint changed supply: %d", c.TotalSupply())
	}
	if _, err := c.OwnerOf(2); !errors.IsNotFound(err) {
		t.Fatalf("vetoed mint created token: %v", err)
	}
	if calls != 2 {
		t.Fatalf("hook ran %d times, want 2", calls)
	}
}

type acceptingReceiver struct {
	operator Address
	from     Address
	tokenID  uint64
	data     []byte
	called   bool
}

func (r *acceptingReceiver) OnTokenReceived(operator, from Address, tokenID uint64, data []byte) bool {
	r.called = true
	r.operator, r.from, r.tokenID, r.data = operator, from, tokenID, data
	return true
}

type rejectingReceiver struct{}

func (rejectingReceiver) OnTokenReceived(Address, Address, uint64, []byte) bool { return false }

func TestSafeTransferAccepted(t *testing.T) {
	receiver := &acceptingReceiver{}
	c := newCollection(t, WithReceiverResolver(func(addr Address) Receiver {
		if addr == bob {
			return receiver
		}
		return nil
	}))
	ctx := context.Background()
	mustMint(t, c, alice, 1)

	if err := c.SafeTransfer(ctx, alice, alice, bob, 1, []byte("hi")); err != nil {
		t.Fatalf("SafeTransfer failed: %v", err)
	}
	if !receiver.called {
		t.Fatal("receiver was not notified")
	}
	if receiver.operator != alice || receiver.from != alice || receiver.tokenID != 1 || string(receiver.data) != "hi" {
		t.Fatalf("receiver saw %q/%q/%d/%q", receiver.operator, receiver.from, receiver.tokenID, receiver.data)
	}
	owner, _ := c.OwnerOf(1)
	if owner != bob {
		t.Fatalf("OwnerOf(1) = %q after accepted safe transfer", owner)
	}
}

func TestSafeTransferRejectedRollsBack(t *testing.T) {
	events := eventlog.NewMemoryStore()
	c := newCollection(t,
		WithEventLog(events),
		WithReceiverResolver(func(addr Address) Receiver {
			if addr == bob {
				return rejectingReceiver{}
			}
			return nil
		}))
	ctx := context.Background()
	mustMint(t, c, alice, 1)
	if err := c.Approve(alice, carol, 1); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	err := c.SafeTransfer(ctx, alice, alice, bob, 1, nil)
	if !errors.IsTransferRejected(err) {
		t.Fatalf("expected TransferRejected, got %v", err)
	}

	owner, _ := c.OwnerOf(1)
	if owner != alice {
		t.Fatalf("rollback failed, owner = %q", owner)
	}
	aliceBal, _ := c.BalanceOf(alice)
	bobBal, _ := c.BalanceOf(bob)
	if aliceBal != 1 || bobBal != 0 {
		t.Fatalf("balances after rollback = %d/%d", aliceBal, bobBal)
	}
	approved, _ := c.GetApproved(1)
	if approved != carol {
		t.Fatalf("approval not reinstated, got %q", approved)
	}

	// Only the mint reached the log; the rejected transfer must not.
	n, _ := events.Len(ctx)
	if n != 1 {
		t.Fatalf("event log has %d events, want 1", n)
	}
}

func TestSafeTransferPlainRecipient(t *testing.T) {
	c := newCollection(t, WithReceiverResolver(func(Address) Receiver { return nil }))
	ctx := context.Background()
	mustMint(t, c, alice, 1)

	if err := c.SafeTransfer(ctx, alice, alice, bob, 1, nil); err != nil {
		t.Fatalf("SafeTransfer to plain recipient failed: %v", err)
	}
	owner, _ := c.OwnerOf(1)
	if owner != bob {
		t.Fatalf("OwnerOf(1) = %q", owner)
	}
}

func TestApprovals(t *testing.T) {
	c := newCollection(t)
	mustMint(t, c, alice, 1)

	t.Run("OnlyOwnerApproves", func(t *testing.T) {
		if err := c.Approve(bob, carol, 1); !errors.IsOwnerMismatch(err) {
			t.Fatalf("expected OwnerMismatch, got %v", err)
		}
	})

	t.Run("ApproveAndClear", func(t *testing.T) {
		if err := c.Approve(alice, carol, 1); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
		approved, _ := c.GetApproved(1)
		if approved != carol {
			t.Fatalf("GetApproved = %q, want %q", approved, carol)
		}

		if err := c.Approve(alice, ZeroAddress, 1); err != nil {
			t.Fatalf("clearing Approve failed: %v", err)
		}
		approved, _ = c.GetApproved(1)
		if approved != ZeroAddress {
			t.Fatalf("approval not cleared: %q", approved)
		}
	})

	t.Run("OperatorApproval", func(t *testing.T) {
		if err := c.SetApprovalForAll(alice, bob, true); err != nil {
			t.Fatalf("SetApprovalForAll failed: %v", err)
		}
		if !c.IsApprovedForAll(alice, bob) {
			t.Fatal("operator approval not recorded")
		}
		if c.IsApprovedForAll(bob, alice) {
			t.Fatal("operator approval is not symmetric")
		}

		if err := c.SetApprovalForAll(alice, bob, false); err != nil {
			t.Fatalf("revoking SetApprovalForAll failed: %v", err)
		}
		if c.IsApprovedForAll(alice, bob) {
			t.Fatal("operator approval not revoked")
		}
	})
}

func TestApprovalObserver(t *testing.T) {
	var observed []storagemodels.ApprovalEvent
	c := newCollection(t, WithApprovalObserver(func(ev storagemodels.ApprovalEvent) {
		observed = append(observed, ev)
	}))
	mustMint(t, c, alice, 1)

	_ = c.Approve(alice, carol, 1)
	_ = c.SetApprovalForAll(alice, bob, true)

	if len(observed) != 2 {
		t.Fatalf("observed %d approval events, want 2", len(observed))
	}
	if observed[0].ForAll || observed[0].TokenID != 1 || !observed[0].Granted {
		t.Fatalf("first event = %+v", observed[0])
	}
	if !observed[1].ForAll || observed[1].Approved != string(bob) {
		t.Fatalf("second event = %+v", observed[1])
	}
}

func TestTokenURI(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()
	mustMint(t, c, alice, 2)

	uri, err := c.TokenURI(2)
	if err != nil {
		t.Fatalf("TokenURI failed: %v", err)
	}
	if uri != "https://tokens.example.com/apex/2" {
		t.Fatalf("TokenURI = %q", uri)
	}

	if err := c.SetTokenURI(2, "special.json"); err != nil {
		t.Fatalf("SetTokenURI failed: %v", err)
	}
	uri, _ = c.TokenURI(2)
	if uri != "https://tokens.example.com/apex/special.json" {
		t.Fatalf("TokenURI with suffix = %q", uri)
	}

	if _, err := c.TokenURI(3); !errors.IsNotFound(err) {
		t.Fatalf("expected NotFound for unminted token, got %v", err)
	}

	// Remint after burn starts from a clean suffix.
	if err := c.Burn(ctx, 2); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}
	mustMint(t, c, bob, 2)
	uri, _ = c.TokenURI(2)
	if uri != "https://tokens.example.com/apex/2" {
		t.Fatalf("TokenURI after remint = %q", uri)
	}
}

func TestTokenOfOwnerByIndex(t *testing.T) {
	c := newCollection(t)
	mustMint(t, c, alice, 1)
	mustMint(t, c, alice, 2)

	seen := make(map[uint64]bool)
	for i := uint64(0); i < 2; i++ {
		id, err := c.TokenOfOwnerByIndex(alice, i)
		if err != nil {
			t.Fatalf("TokenOfOwnerByIndex(%d) failed: %v", i, err)
		}
		seen[id] = true
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("holder enumeration incomplete: %v", seen)
	}

	if _, err := c.TokenOfOwnerByIndex(alice, 2); !errors.IsOutOfRange(err) {
		t.Fatalf("expected OutOfRange at balance, got %v", err)
	}
	if _, err := c.TokenOfOwnerByIndex(bob, 0); !errors.IsOutOfRange(err) {
		t.Fatalf("expected OutOfRange for unknown holder, got %v", err)
	}
}

func TestExtensionReads(t *testing.T) {
	c := newCollection(t)
	mustMint(t, c, alice, 100)

	if got := c.ExtensionCount(); got != 2 {
		t.Fatalf("ExtensionCount = %d", got)
	}
	if got := c.ExtensionByToken(100); got != 1 {
		t.Fatalf("ExtensionByToken(100) = %d, want 1", got)
	}
	if got := c.ExtensionByToken(999); got != extension.NoExtension {
		t.Fatalf("ExtensionByToken(999) = %d, want NoExtension", got)
	}

	supply, err := c.SupplyOfExtension(1)
	if err != nil {
		t.Fatalf("SupplyOfExtension failed: %v", err)
	}
	if supply != 2 {
		t.Fatalf("SupplyOfExtension(1) = %d, want 2", supply)
	}
	if _, err := c.SupplyOfExtension(2); !errors.IsOutOfRange(err) {
		t.Fatalf("expected OutOfRange, got %v", err)
	}

	id, err := c.TokenByExtensionAndIndex(1, 0)
	if err != nil {
		t.Fatalf("TokenByExtensionAndIndex failed: %v", err)
	}
	if id != 100 {
		t.Fatalf("TokenByExtensionAndIndex(1, 0) = %d", id)
	}
}

// Round-trip: for every live token, resolving its extension and position
// leads back to the same token.
func TestEnumerationRoundTrip(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()

	for _, id := range []uint64{1, 2, 3, 100, 101} {
		mustMint(t, c, alice, id)
	}
	_ = c.Burn(ctx, 2)

	for i := uint64(0); i < c.TotalSupply(); i++ {
		id, err := c.TokenByIndex(i)
		if err != nil {
			t.Fatalf("TokenByIndex(%d) failed: %v", i, err)
		}
		extID := c.ExtensionByToken(id)
		if extID == extension.NoExtension {
			t.Fatalf("live token %d has no extension", id)
		}
	}
}

func TestEventEmission(t *testing.T) {
	events := eventlog.NewMemoryStore()
	c := newCollection(t, WithEventLog(events))
	ctx := context.Background()

	mustMint(t, c, alice, 1)
	if err := c.Transfer(ctx, alice, bob, 1); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if err := c.Burn(ctx, 1); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}

	recorded, err := events.Read(ctx, 0, 0)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(recorded) != 3 {
		t.Fatalf("recorded %d events, want 3", len(recorded))
	}

	wantKinds := []storagemodels.EventKind{
		storagemodels.EventMint, storagemodels.EventTransfer, storagemodels.EventBurn,
	}
	for i, want := range wantKinds {
		if recorded[i].Kind != want {
			t.Fatalf("event %d kind = %s, want %s", i, recorded[i].Kind, want)
		}
		if recorded[i].Collection != "Apex Editions" {
			t.Fatalf("event %d collection = %q", i, recorded[i].Collection)
		}
	}
	if recorded[0].From != "" || recorded[0].To != string(alice) {
		t.Fatalf("mint event = %+v", recorded[0])
	}
	if recorded[2].From != string(bob) || recorded[2].To != "" {
		t.Fatalf("burn event = %+v", recorded[2])
	}
}

func TestSnapshotExtension(t *testing.T) {
	c := newCollection(t)
	mustMint(t, c, alice, 1)
	mustMint(t, c, alice, 2)

	snap, err := c.SnapshotExtension(0)
	if err != nil {
		t.Fatalf("SnapshotExtension failed: %v", err)
	}
	if snap.Collection != "Apex Editions" || snap.Name != "genesis" {
		t.Fatalf("snapshot identity = %q/%q", snap.Collection, snap.Name)
	}
	if snap.TargetSupply != 3 || snap.RealizedSupply != 2 || snap.Finalized {
		t.Fatalf("snapshot = %+v", snap)
	}

	if err := c.FinalizeDistribution(0); err != nil {
		t.Fatalf("FinalizeDistribution failed: %v", err)
	}
	snap, _ = c.SnapshotExtension(0)
	if snap.TargetSupply != 2 || !snap.Finalized {
		t.Fatalf("snapshot after finalize = %+v", snap)
	}

	if _, err := c.SnapshotExtension(5); !errors.IsOutOfRange(err) {
		t.Fatalf("expected OutOfRange, got %v", err)
	}
}

// Supply conservation over an arbitrary interleaving of mints and burns.
func TestSupplyConservation(t *testing.T) {
	c := newCollection(t)
	ctx := context.Background()

	var live uint64
	steps := []struct {
		burn    bool
		tokenID uint64
	}{
		{false, 1}, {false, 2}, {true, 1}, {false, 3}, {false, 100},
		{true, 3}, {false, 1}, {false, 101}, {true, 100},
	}
	for _, step := range steps {
		if step.burn {
			if err := c.Burn(ctx, step.tokenID); err != nil {
				t.Fatalf("Burn(%d) failed: %v", step.tokenID, err)
			}
			live--
		} else {
			mustMint(t, c, alice, step.tokenID)
			live++
		}
		if got := c.TotalSupply(); got != live {
			t.Fatalf("TotalSupply = %d after step %+v, want %d", got, step, live)
		}
		balance, _ := c.BalanceOf(alice)
		if balance != live {
			t.Fatalf("BalanceOf = %d, want %d", balance, live)
		}
	}
}
