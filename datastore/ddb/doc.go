/*
Package ddb implements datastore.DataStore on AWS DynamoDB.

All registry records share one table in a single-table design: items are
partitioned by collection (PK "COLLECTION#<id>"), with transfer events,
approval events and extension snapshots distinguished by sort key prefix
and an EntityType routing attribute. GSI1 projects events by token
(GSI1PK "TOKEN#<id>") sorted by RFC3339 timestamp, which backs the
history query builders.

The registry core never writes here directly; the audit tooling uploads
snapshots and replays histories through this package.
*/
package ddb
