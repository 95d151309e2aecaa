/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package tokenregistry

// TransferHook observes every ownership mutation before any state changes.
// Mints present ZeroAddress as from, burns present ZeroAddress as to.
// Returning a non-nil error vetoes the operation; the registry is left
// untouched and the error is surfaced to the caller.
type TransferHook interface {
	BeforeTokenTransfer(from, to Address, tokenID uint64) error
}

// TransferHookFunc adapts a function to the TransferHook interface.
type TransferHookFunc func(from, to Address, tokenID uint64) error

func (f TransferHookFunc) BeforeTokenTransfer(from, to Address, tokenID uint64) error {
	return f(from, to, tokenID)
}

// Receiver is implemented by programmable recipients that must acknowledge
// safe transfers. OnTokenReceived runs after the transfer has been
// committed; returning false rejects the token and the transfer is rolled
// back.
type Receiver interface {
	OnTokenReceived(operator, from Address, tokenID uint64, data []byte) bool
}

// ReceiverResolver maps an address to its Receiver implementation, or nil
// for plain addresses that accept transfers unconditionally.
type ReceiverResolver func(addr Address) Receiver
