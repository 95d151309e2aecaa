/*
Package registry maps the token registry's persisted record types onto the
DynamoDB single-table design.

An index map describes how a record's fields expand into partition and sort
keys, using {Field} macros:

	registry.RegisterIndexMap[storagemodels.TransferEvent](map[string]string{
	    "PK":     "COLLECTION#{Collection}",
	    "SK":     "EVENT#{Id}",
	    "GSI1PK": "TOKEN#{TokenId}",
	    "GSI1SK": "{At}",
	})

RegisterDefaults installs the maps for the record types defined in
storagemodels. The type registry additionally associates entity type names
with unmarshal functions so heterogeneous query results can be decoded to
their concrete types.
*/
package registry
