/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tokenregistry

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/tokenregistry/errors"
	"github.com/suparena/tokenregistry/eventlog"
	"github.com/suparena/tokenregistry/extension"
	"github.com/suparena/tokenregistry/manifest"
	"github.com/suparena/tokenregistry/ownership"
	"github.com/suparena/tokenregistry/storagemodels"
)

// Address identifies a holder. ZeroAddress is the null identity used for
// mints and burns; it can never own tokens.
type Address = ownership.Address

// ZeroAddress is the null identity.
const ZeroAddress = ownership.ZeroAddress

// Collection is a provisioned token collection: the extension registry,
// the per-holder indexes, approvals and metadata, behind one mutex.
// All public methods are safe for concurrent use.
type Collection struct {
	mu sync.RWMutex

	name    string
	symbol  string
	baseURI string

	extensions *extension.Registry
	holders    map[Address]*ownership.TokenSet

	approvals         map[uint64]Address
	operatorApprovals map[Address]map[Address]bool
	tokenSuffixes     map[uint64]string

	hook             TransferHook
	events           eventlog.Store
	resolveReceiver  ReceiverResolver
	approvalObserver func(storagemodels.ApprovalEvent)
}

// Option configures a Collection at construction time.
type Option func(*Collection)

// WithHook installs a pre-mutation transfer hook. The hook runs after
// validation and before any state change; a non-nil error aborts the
// operation.
func WithHook(h TransferHook) Option {
	return func(c *Collection) { c.hook = h }
}

// WithEventLog installs the append-only log that receives a TransferEvent
// for every mint, transfer and burn.
func WithEventLog(store eventlog.Store) Option {
	return func(c *Collection) { c.events = store }
}

// WithReceiverResolver installs the resolver consulted by SafeTransfer to
// decide whether a recipient is programmable.
func WithReceiverResolver(r ReceiverResolver) Option {
	return func(c *Collection) { c.resolveReceiver = r }
}

// WithApprovalObserver installs a callback invoked with an ApprovalEvent
// after every successful Approve and SetApprovalForAll.
func WithApprovalObserver(f func(storagemodels.ApprovalEvent)) Option {
	return func(c *Collection) { c.approvalObserver = f }
}

// New provisions a Collection from a manifest: one extension per
// declaration, every declared token range assigned.
func New(m *manifest.Manifest, opts ...Option) (*Collection, error) {
	reg, err := m.Provision()
	if err != nil {
		return nil, err
	}

	c := &Collection{
		name:              m.Name,
		symbol:            m.Symbol,
		baseURI:           m.BaseURI,
		extensions:        reg,
		holders:           make(map[Address]*ownership.TokenSet),
		approvals:         make(map[uint64]Address),
		operatorApprovals: make(map[Address]map[Address]bool),
		tokenSuffixes:     make(map[uint64]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Symbol returns the collection symbol.
func (c *Collection) Symbol() string { return c.symbol }

// BaseURI returns the metadata base URI.
func (c *Collection) BaseURI() string { return c.baseURI }

// BalanceOf returns the number of tokens held by owner.
func (c *Collection) BalanceOf(owner Address) (uint64, error) {
	if owner.IsZero() {
		return 0, errors.NewInvalidRecipientError("balance query")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	set, ok := c.holders[owner]
	if !ok {
		return 0, nil
	}
	return set.Len(), nil
}

// OwnerOf returns the current owner of the token.
func (c *Collection) OwnerOf(tokenID uint64) (Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ownerOfLocked(tokenID)
}

func (c *Collection) ownerOfLocked(tokenID uint64) (Address, error) {
	extensionID := c.extensions.ExtensionOf(tokenID)
	if extensionID == extension.NoExtension {
		return ZeroAddress, errors.NewNotFoundError("token", tokenID)
	}
	ext, err := c.extensions.Extension(extensionID)
	if err != nil {
		return ZeroAddress, err
	}
	return ext.Tokens().Get(tokenID)
}

// TotalSupply returns the number of live tokens across all extensions.
func (c *Collection) TotalSupply() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extensions.TotalSupply()
}

// FinalizedSupply returns the running total recorded by finalization.
func (c *Collection) FinalizedSupply() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extensions.FinalizedSupply()
}

// TokenByIndex resolves a global enumeration index to a token.
func (c *Collection) TokenByIndex(globalIndex uint64) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extensions.TokenByIndex(globalIndex)
}

// TokenOfOwnerByIndex returns the owner's token at the given position in
// the holder's enumeration.
func (c *Collection) TokenOfOwnerByIndex(owner Address, index uint64) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	set, ok := c.holders[owner]
	if !ok {
		return 0, errors.NewOutOfRangeError("holder", index, 0)
	}
	return set.At(index)
}

// SupplyOfExtension returns the extension's target supply, or its realized
// count once finalized.
func (c *Collection) SupplyOfExtension(extensionID int) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extensions.SupplyOf(extensionID)
}

// ExtensionByToken returns the token's assigned extension, or
// extension.NoExtension if the token was never assigned.
func (c *Collection) ExtensionByToken(tokenID uint64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extensions.ExtensionOf(tokenID)
}

// TokenByExtensionAndIndex returns the token at the given position within
// one extension's enumeration.
func (c *Collection) TokenByExtensionAndIndex(extensionID int, index uint64) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extensions.TokenByExtensionAndIndex(extensionID, index)
}

// ExtensionCount returns the number of supply extensions.
func (c *Collection) ExtensionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.extensions.Count()
}

// TokenURI returns the metadata URI for a live token: the base URI with
// the decimal token ID appended, or with the token's suffix override when
// one has been set.
func (c *Collection) TokenURI(tokenID uint64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.ownerOfLocked(tokenID); err != nil {
		return "", err
	}
	if suffix, ok := c.tokenSuffixes[tokenID]; ok {
		return c.baseURI + suffix, nil
	}
	return c.baseURI + strconv.FormatUint(tokenID, 10), nil
}

// SetTokenURI overrides the metadata suffix for a live token. The override
// is cleared when the token is burned.
func (c *Collection) SetTokenURI(tokenID uint64, suffix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.ownerOfLocked(tokenID); err != nil {
		return err
	}
	c.tokenSuffixes[tokenID] = suffix
	return nil
}

// GetApproved returns the address approved for the token, or ZeroAddress
// when none is set.
func (c *Collection) GetApproved(tokenID uint64) (Address, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.ownerOfLocked(tokenID); err != nil {
		return ZeroAddress, err
	}
	return c.approvals[tokenID], nil
}

// IsApprovedForAll reports whether operator is approved to manage all of
// owner's tokens.
func (c *Collection) IsApprovedForAll(owner, operator Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.operatorApprovals[owner][operator]
}

// SnapshotExtension captures the persisted form of one extension's state.
func (c *Collection) SnapshotExtension(extensionID int) (storagemodels.ExtensionSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ext, err := c.extensions.Extension(extensionID)
	if err != nil {
		return storagemodels.ExtensionSnapshot{}, err
	}
	return storagemodels.ExtensionSnapshot{
		Collection:     c.name,
		ExtensionID:    extensionID,
		Name:           ext.Name(),
		TargetSupply:   ext.TargetSupply(),
		RealizedSupply: ext.Realized(),
		Finalized:      ext.Finalized(),
		UpdatedAt:      strfmt.DateTime(time.Now().UTC()),
	}, nil
}

// Mint creates the token for `to`. The token must carry a provisioning
// assignment to an extension and must not already be live.
func (c *Collection) Mint(ctx context.Context, to Address, tokenID uint64) error {
	if to.IsZero() {
		return errors.NewInvalidRecipientError("mint")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	extensionID := c.extensions.ExtensionOf(tokenID)
	if extensionID == extension.NoExtension {
		return errors.NewNotFoundError("extension assignment for token", tokenID)
	}
	ext, err := c.extensions.Extension(extensionID)
	if err != nil {
		return err
	}
	if ext.Tokens().Contains(tokenID) {
		return errors.NewAlreadyExistsError("token", tokenID)
	}

	if err := c.runHook(ZeroAddress, to, tokenID); err != nil {
		return err
	}

	ext.Tokens().Set(tokenID, to)
	c.holderSet(to).Add(tokenID)

	return c.emit(ctx, storagemodels.EventMint, ZeroAddress, to, tokenID, extensionID)
}

// Burn destroys the token, clearing its approval and metadata override.
// The extension assignment survives; the identifier can be minted again.
func (c *Collection) Burn(ctx context.Context, tokenID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, err := c.ownerOfLocked(tokenID)
	if err != nil {
		return err
	}
	if err := c.runHook(owner, ZeroAddress, tokenID); err != nil {
		return err
	}

	extensionID := c.extensions.ExtensionOf(tokenID)
	ext, err := c.extensions.Extension(extensionID)
	if err != nil {
		return err
	}

	delete(c.approvals, tokenID)
	delete(c.tokenSuffixes, tokenID)
	c.holders[owner].Remove(tokenID)
	ext.Tokens().Remove(tokenID)

	return c.emit(ctx, storagemodels.EventBurn, owner, ZeroAddress, tokenID, extensionID)
}

// Transfer moves the token from `from` to `to`. The token's approval is
// cleared; its extension assignment and enumeration position within the
// extension are untouched.
func (c *Collection) Transfer(ctx context.Context, from, to Address, tokenID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	extensionID, _, _, err := c.transferLocked(from, to, tokenID)
	if err != nil {
		return err
	}
	return c.emit(ctx, storagemodels.EventTransfer, from, to, tokenID, extensionID)
}

// SafeTransfer is Transfer followed by recipient notification. When the
// resolver reports `to` programmable, Receiver.OnTokenReceived runs after
// the state change has been committed; a false acknowledgement rolls the
// transfer back exactly, approval included, and the call returns a
// TransferRejected error.
func (c *Collection) SafeTransfer(ctx context.Context, operator, from, to Address, tokenID uint64, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	extensionID, prevApproval, hadApproval, err := c.transferLocked(from, to, tokenID)
	if err != nil {
		return err
	}

	if c.resolveReceiver != nil {
		if receiver := c.resolveReceiver(to); receiver != nil {
			if !receiver.OnTokenReceived(operator, from, tokenID, data) {
				ext, extErr := c.extensions.Extension(extensionID)
				if extErr != nil {
					return extErr
				}
				c.holders[to].Remove(tokenID)
				c.holderSet(from).Add(tokenID)
				ext.Tokens().Set(tokenID, from)
				if hadApproval {
					c.approvals[tokenID] = prevApproval
				}
				return errors.NewTransferRejectedError(tokenID, string(to))
			}
		}
	}

	return c.emit(ctx, storagemodels.EventTransfer, from, to, tokenID, extensionID)
}

// Approve sets (or, with ZeroAddress, clears) the single approved address
// for a token. Only the recorded owner may grant approvals.
func (c *Collection) Approve(owner, to Address, tokenID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	actual, err := c.ownerOfLocked(tokenID)
	if err != nil {
		return err
	}
	if actual != owner {
		return errors.NewOwnerMismatchError(tokenID, string(owner), string(actual))
	}

	if to.IsZero() {
		delete(c.approvals, tokenID)
	} else {
		c.approvals[tokenID] = to
	}

	if c.approvalObserver != nil {
		c.approvalObserver(storagemodels.NewApprovalEvent(
			c.name, string(owner), string(to), tokenID, false, !to.IsZero()))
	}
	return nil
}

// SetApprovalForAll grants or revokes operator rights over every token
// owner holds, now and later.
func (c *Collection) SetApprovalForAll(owner, operator Address, approved bool) error {
	if owner.IsZero() || operator.IsZero() {
		return errors.NewInvalidRecipientError("operator approval")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if approved {
		if c.operatorApprovals[owner] == nil {
			c.operatorApprovals[owner] = make(map[Address]bool)
		}
		c.operatorApprovals[owner][operator] = true
	} else {
		delete(c.operatorApprovals[owner], operator)
		if len(c.operatorApprovals[owner]) == 0 {
			delete(c.operatorApprovals, owner)
		}
	}

	if c.approvalObserver != nil {
		c.approvalObserver(storagemodels.NewApprovalEvent(
			c.name, string(owner), string(operator), 0, true, approved))
	}
	return nil
}

// FinalizeDistribution seals an extension's supply: the realized count
// becomes the recorded supply. Call it once per extension, after that
// extension's mints complete.
func (c *Collection) FinalizeDistribution(extensionID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extensions.Finalize(extensionID)
}

// transferLocked validates and applies an ownership move. It returns the
// token's extension and the approval state it cleared so SafeTransfer can
// roll back. Caller holds the write lock.
func (c *Collection) transferLocked(from, to Address, tokenID uint64) (int, Address, bool, error) {
	if to.IsZero() {
		return 0, ZeroAddress, false, errors.NewInvalidRecipientError("transfer")
	}

	owner, err := c.ownerOfLocked(tokenID)
	if err != nil {
		return 0, ZeroAddress, false, err
	}
	if owner != from {
		return 0, ZeroAddress, false, errors.NewOwnerMismatchError(tokenID, string(from), string(owner))
	}
	if err := c.runHook(from, to, tokenID); err != nil {
		return 0, ZeroAddress, false, err
	}

	extensionID := c.extensions.ExtensionOf(tokenID)
	ext, err := c.extensions.Extension(extensionID)
	if err != nil {
		return 0, ZeroAddress, false, err
	}

	prevApproval, hadApproval := c.approvals[tokenID]
	delete(c.approvals, tokenID)

	c.holders[from].Remove(tokenID)
	c.holderSet(to).Add(tokenID)
	ext.Tokens().Set(tokenID, to)

	return extensionID, prevApproval, hadApproval, nil
}

func (c *Collection) runHook(from, to Address, tokenID uint64) error {
	if c.hook == nil {
		return nil
	}
	if err := c.hook.BeforeTokenTransfer(from, to, tokenID); err != nil {
		return fmt.Errorf("transfer hook vetoed token %d: %w", tokenID, err)
	}
	return nil
}

// emit appends a TransferEvent to the configured log. The mutation it
// describes has already been committed; an append failure is reported to
// the caller so the log can be repaired, but the registry state stands.
func (c *Collection) emit(ctx context.Context, kind storagemodels.EventKind, from, to Address, tokenID uint64, extensionID int) error {
	if c.events == nil {
		return nil
	}
	event := storagemodels.NewTransferEvent(c.name, kind, string(from), string(to), tokenID, extensionID)
	if _, err := c.events.Append(ctx, &event); err != nil {
		return fmt.Errorf("record %s event for token %d: %w", kind, tokenID, err)
	}
	return nil
}

// holderSet returns the owner's token set, creating it on first use.
func (c *Collection) holderSet(owner Address) *ownership.TokenSet {
	set, ok := c.holders[owner]
	if !ok {
		set = ownership.NewTokenSet()
		c.holders[owner] = set
	}
	return set
}
