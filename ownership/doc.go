/*
Package ownership provides the enumerable data structures underneath the
token registry: OwnerMap, a bidirectional tokenID-to-owner mapping with O(1)
positional access, and TokenSet, a per-holder set of token identifiers with
the same positional-access contract.

Both structures compact on removal by swapping the last enumerated entry
into the vacated slot. Enumeration is therefore complete and duplicate-free
but NOT order-stable across removals; callers must never rely on positions
surviving a Remove.

Neither structure is safe for concurrent use. The Collection type in the
root package owns all instances and serializes access to them.
*/
package ownership
