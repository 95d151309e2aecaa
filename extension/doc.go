/*
Package extension maintains the ordered supply partitions of a collection.

A collection pledges its supply in named extensions, each with a target
supply fixed at provisioning time. Tokens are assigned to exactly one
extension before they are minted, and the assignment never changes for the
life of the token identifier. The Registry composes the per-extension
enumerations into one global token index space: extensions in ascending
ordinal order, tokens within an extension in that extension's own
enumeration order.

Finalization seals an extension once its distribution completes: the
realized token count overwrites the pledged target and is added to a
running finalized total. The protocol is finalize-then-advance - finalize
extension N after its last mint and before the first mint into extension
N+1. Finalize is not idempotent; re-invoking it double-counts the running
total, and the caller owns that discipline.
*/
package extension
