/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ownership

// Address identifies a token holder. The registry treats addresses as
// opaque identity strings; it never parses or validates their format.
type Address string

// ZeroAddress is the null identity. It is never a valid owner: minting to
// it fails, and transfer events use it to mark mints (From) and burns (To).
const ZeroAddress Address = ""

// IsZero reports whether the address is the null identity.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the address as a plain string.
func (a Address) String() string {
	return string(a)
}
