/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/tokenregistry/storagemodels"
)

// IndexMapRegistry associates Go record types with their DynamoDB index
// maps (PK, SK and GSI key templates with {Field} macros).

var (
	indexMapRegistry = make(map[reflect.Type]map[string]string)
	mu               sync.RWMutex
)

// RegisterIndexMap associates a Go type T with a given DynamoDB index map (PK, SK, etc.).
func RegisterIndexMap[T any](idxMap map[string]string) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	indexMapRegistry[t] = idxMap
}

// GetIndexMap retrieves the indexMap for type T, if any.
func GetIndexMap[T any]() (map[string]string, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[t]
	return m, ok
}

var defaultsOnce sync.Once

// RegisterDefaults installs the single-table index maps and unmarshal
// functions for the registry's own record types. Transfer events live
// under their collection partition and are also reachable by token through
// GSI1, sorted by timestamp, which is what the history queries walk.
// Safe to call more than once.
func RegisterDefaults() {
	defaultsOnce.Do(registerDefaults)
}

func registerDefaults() {
	RegisterIndexMap[storagemodels.TransferEvent](map[string]string{
		"PK":     "COLLECTION#{Collection}",
		"SK":     "EVENT#{Id}",
		"GSI1PK": "TOKEN#{TokenId}",
		"GSI1SK": "{At}",
	})
	RegisterIndexMap[storagemodels.ApprovalEvent](map[string]string{
		"PK":     "COLLECTION#{Collection}",
		"SK":     "APPROVAL#{Id}",
		"GSI1PK": "OWNER#{Owner}",
		"GSI1SK": "{At}",
	})
	RegisterIndexMap[storagemodels.ExtensionSnapshot](map[string]string{
		"PK": "COLLECTION#{Collection}",
		"SK": "EXT#{ExtensionId}",
	})

	RegisterType("TransferEvent", unmarshalAs[storagemodels.TransferEvent])
	RegisterType("ApprovalEvent", unmarshalAs[storagemodels.ApprovalEvent])
	RegisterType("ExtensionSnapshot", unmarshalAs[storagemodels.ExtensionSnapshot])
}

func unmarshalAs[T any](item map[string]types.AttributeValue) (interface{}, error) {
	var record T
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, err
	}
	return &record, nil
}
