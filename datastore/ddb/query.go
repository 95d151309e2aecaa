/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/suparena/tokenregistry/registry"
	"github.com/suparena/tokenregistry/storagemodels"
)

// Query performs a query against the DynamoDB table using the provided
// parameters. The EntityType attribute stamped at persist time selects the
// unmarshal function from the type registry, so a partition holding mixed
// record kinds (events, approvals, snapshots) decodes each item to its
// proper type.
func (d *DynamodbDataStore[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error) {
	input := &dynamodb.QueryInput{
		TableName:                 &params.TableName,
		KeyConditionExpression:    &params.KeyConditionExpression,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ScanIndexForward:          params.ScanIndexForward,
	}
	out, err := d.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	var results []interface{}
	for _, item := range out.Items {
		var entityType string
		if attr, ok := item["EntityType"]; ok {
			if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
				return nil, fmt.Errorf("failed to unmarshal EntityType: %w", err)
			}
		} else {
			return nil, fmt.Errorf("missing EntityType attribute in item")
		}

		unmarshalFn, err := registry.GetUnmarshalFunc(entityType)
		if err != nil {
			// No registered decoder; fall back to a generic map so the
			// caller still sees the item.
			var generic map[string]interface{}
			if err := attributevalue.UnmarshalMap(item, &generic); err != nil {
				return nil, fmt.Errorf("failed to unmarshal generic item: %w", err)
			}
			results = append(results, generic)
			continue
		}

		obj, err := unmarshalFn(item)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal item for EntityType %q: %w", entityType, err)
		}
		results = append(results, obj)
	}

	return results, nil
}
