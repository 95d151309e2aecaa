/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a token or extension is not found
	ErrNotFound = errors.New("token not found")

	// ErrOutOfRange is returned when a positional index is >= the enumerated length
	ErrOutOfRange = errors.New("index out of range")

	// ErrAlreadyExists is returned when minting a token identifier that already exists
	ErrAlreadyExists = errors.New("token already exists")

	// ErrOwnerMismatch is returned when a transfer names a `from` address that is not the recorded owner
	ErrOwnerMismatch = errors.New("owner mismatch")

	// ErrInvalidRecipient is returned when an operation targets the zero address
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrTransferRejected is returned when a recipient callback declines a safe transfer
	ErrTransferRejected = errors.New("transfer rejected by recipient")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError represents an error when a token or extension is not found
type NotFoundError struct {
	Kind string // "token" or "extension"
	ID   uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// OutOfRangeError represents an indexed access past the enumerated length
type OutOfRangeError struct {
	What   string
	Index  uint64
	Length uint64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range (length %d)", e.What, e.Index, e.Length)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// AlreadyExistsError represents a mint collision on a live token identifier
type AlreadyExistsError struct {
	Kind string
	ID   uint64
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s %d already exists", e.Kind, e.ID)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// OwnerMismatchError represents a transfer whose `from` argument disagrees with the recorded owner
type OwnerMismatchError struct {
	TokenID uint64
	Claimed string
	Actual  string
}

func (e *OwnerMismatchError) Error() string {
	return fmt.Sprintf("token %d is owned by %q, not %q", e.TokenID, e.Actual, e.Claimed)
}

func (e *OwnerMismatchError) Is(target error) bool {
	return target == ErrOwnerMismatch
}

// InvalidRecipientError represents an operation targeting the zero address
type InvalidRecipientError struct {
	Operation string
}

func (e *InvalidRecipientError) Error() string {
	return fmt.Sprintf("%s to the zero address", e.Operation)
}

func (e *InvalidRecipientError) Is(target error) bool {
	return target == ErrInvalidRecipient
}

// TransferRejectedError represents a safe transfer declined by the recipient callback
type TransferRejectedError struct {
	TokenID   uint64
	Recipient string
}

func (e *TransferRejectedError) Error() string {
	return fmt.Sprintf("recipient %q rejected transfer of token %d", e.Recipient, e.TokenID)
}

func (e *TransferRejectedError) Is(target error) bool {
	return target == ErrTransferRejected
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind string, id uint64) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// NewOutOfRangeError creates a new OutOfRangeError
func NewOutOfRangeError(what string, index, length uint64) error {
	return &OutOfRangeError{What: what, Index: index, Length: length}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(kind string, id uint64) error {
	return &AlreadyExistsError{Kind: kind, ID: id}
}

// NewOwnerMismatchError creates a new OwnerMismatchError
func NewOwnerMismatchError(tokenID uint64, claimed, actual string) error {
	return &OwnerMismatchError{TokenID: tokenID, Claimed: claimed, Actual: actual}
}

// NewInvalidRecipientError creates a new InvalidRecipientError
func NewInvalidRecipientError(operation string) error {
	return &InvalidRecipientError{Operation: operation}
}

// NewTransferRejectedError creates a new TransferRejectedError
func NewTransferRejectedError(tokenID uint64, recipient string) error {
	return &TransferRejectedError{TokenID: tokenID, Recipient: recipient}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsOutOfRange checks if an error is an out of range error
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsOwnerMismatch checks if an error is an owner mismatch error
func IsOwnerMismatch(err error) bool {
	return errors.Is(err, ErrOwnerMismatch)
}

// IsInvalidRecipient checks if an error is an invalid recipient error
func IsInvalidRecipient(err error) bool {
	return errors.Is(err, ErrInvalidRecipient)
}

// IsTransferRejected checks if an error is a transfer rejected error
func IsTransferRejected(err error) bool {
	return errors.Is(err, ErrTransferRejected)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
