/*
Package storagemodels defines the record types the token registry persists
and streams: TransferEvent and ApprovalEvent (the append-only notification
log) and ExtensionSnapshot (per-extension supply state for the audit
surface), together with the DynamoDB query and stream parameter types the
datastore layer consumes.
*/
package storagemodels
