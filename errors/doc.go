/*
Package errors provides semantic error types for the token registry.

The package defines the registry's failure kinds with specific types that can
be checked using the standard errors.Is() function or the provided helper
functions.

Common Errors:

	var (
	    ErrNotFound         = errors.New("token not found")
	    ErrOutOfRange       = errors.New("index out of range")
	    ErrAlreadyExists    = errors.New("token already exists")
	    ErrOwnerMismatch    = errors.New("owner mismatch")
	    ErrInvalidRecipient = errors.New("invalid recipient")
	    ErrTransferRejected = errors.New("transfer rejected by recipient")
	    ErrInvalidInput     = errors.New("invalid input")
	)

Usage:

	owner, err := collection.OwnerOf(tokenID)
	if err != nil {
	    if errors.IsNotFound(err) {
	        // Token was never minted or has been burned
	        return fmt.Errorf("token %d does not exist", tokenID)
	    }
	    return err
	}

	// Create typed errors
	err := errors.NewNotFoundError("token", 42)
	err := errors.NewOutOfRangeError("holder", 3, 3)
	err := errors.NewOwnerMismatchError(42, "alice", "bob")

Every failure is synchronous: a mutating operation that returns a non-nil
error has made no observable state change.
*/
package errors
