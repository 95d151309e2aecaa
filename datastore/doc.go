/*
Package datastore defines the persistence contract for the token registry's
record types.

The main interface is DataStore[T], which provides generic CRUD operations
for any record type T:

	type DataStore[T any] interface {
	    GetOne(ctx context.Context, key string) (*T, error)
	    Put(ctx context.Context, record T) error
	    UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]interface{}, condition string) error
	    Query(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error)
	    Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	    Delete(ctx context.Context, key string) error
	}

Implementations:
  - ddb: DynamoDB implementation with single-table design and history queries
  - mock: In-memory mock implementation for testing

The registry core never touches a DataStore; persistence is driven by the
audit tooling and by event sinks layered on top of the eventlog package.
*/
package datastore
