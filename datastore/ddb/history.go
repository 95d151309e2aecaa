/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/tokenregistry/storagemodels"
)

// HistoryQueryBuilder assembles queries over the GSI1 history projection:
// transfer events partitioned by token (or approvals by owner), sorted by
// RFC3339 timestamp.
type HistoryQueryBuilder[T any] struct {
	store      *DynamodbDataStore[T]
	indexName  string
	pkValue    string
	skOperator string // "", ">", "<", "BETWEEN"
	skStart    string
	skEnd      string
	limit      *int32
	ascending  *bool
}

// TokenHistory starts a history query for one token's transfer events.
func (d *DynamodbDataStore[T]) TokenHistory(tokenID uint64) *HistoryQueryBuilder[T] {
	return d.historyQuery("TOKEN#" + strconv.FormatUint(tokenID, 10))
}

// OwnerHistory starts a history query for one owner's approval events.
func (d *DynamodbDataStore[T]) OwnerHistory(owner string) *HistoryQueryBuilder[T] {
	return d.historyQuery("OWNER#" + owner)
}

func (d *DynamodbDataStore[T]) historyQuery(pkValue string) *HistoryQueryBuilder[T] {
	return &HistoryQueryBuilder[T]{
		store:     d,
		indexName: "GSI1",
		pkValue:   pkValue,
	}
}

// After restricts the history to events after the given time.
func (q *HistoryQueryBuilder[T]) After(t time.Time) *HistoryQueryBuilder[T] {
	q.skOperator = ">"
	q.skStart = t.UTC().Format(time.RFC3339)
	return q
}

// Before restricts the history to events before the given time.
func (q *HistoryQueryBuilder[T]) Before(t time.Time) *HistoryQueryBuilder[T] {
	q.skOperator = "<"
	q.skStart = t.UTC().Format(time.RFC3339)
	return q
}

// Between restricts the history to events within [start, end].
func (q *HistoryQueryBuilder[T]) Between(start, end time.Time) *HistoryQueryBuilder[T] {
	q.skOperator = "BETWEEN"
	q.skStart = start.UTC().Format(time.RFC3339)
	q.skEnd = end.UTC().Format(time.RFC3339)
	return q
}

// InLastHours restricts the history to the last N hours.
func (q *HistoryQueryBuilder[T]) InLastHours(hours int) *HistoryQueryBuilder[T] {
	return q.After(time.Now().Add(-time.Duration(hours) * time.Hour))
}

// Latest orders results newest first.
func (q *HistoryQueryBuilder[T]) Latest() *HistoryQueryBuilder[T] {
	q.ascending = aws.Bool(false)
	return q
}

// Oldest orders results oldest first (chronological).
func (q *HistoryQueryBuilder[T]) Oldest() *HistoryQueryBuilder[T] {
	q.ascending = aws.Bool(true)
	return q
}

// WithLimit caps the number of results.
func (q *HistoryQueryBuilder[T]) WithLimit(limit int32) *HistoryQueryBuilder[T] {
	q.limit = aws.Int32(limit)
	return q
}

// Build constructs the final query parameters.
func (q *HistoryQueryBuilder[T]) Build() (*storagemodels.QueryParams, error) {
	if q.pkValue == "" {
		return nil, fmt.Errorf("history partition key value is required")
	}

	gsi, ok := GetGSIConfig(q.indexName)
	if !ok {
		return nil, fmt.Errorf("unknown GSI %q", q.indexName)
	}

	keyConditions := []string{fmt.Sprintf("%s = :pk", gsi.PartitionKeyName)}
	exprVals := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: q.pkValue},
	}

	switch q.skOperator {
	case "":
		// Full history; no sort key condition.
	case ">", "<":
		keyConditions = append(keyConditions, fmt.Sprintf("%s %s :sk", gsi.SortKeyName, q.skOperator))
		exprVals[":sk"] = &types.AttributeValueMemberS{Value: q.skStart}
	case "BETWEEN":
		keyConditions = append(keyConditions, fmt.Sprintf("%s BETWEEN :sk AND :sk2", gsi.SortKeyName))
		exprVals[":sk"] = &types.AttributeValueMemberS{Value: q.skStart}
		exprVals[":sk2"] = &types.AttributeValueMemberS{Value: q.skEnd}
	default:
		return nil, fmt.Errorf("unsupported sort key operator %q", q.skOperator)
	}

	return &storagemodels.QueryParams{
		TableName:                 q.store.tableName,
		KeyConditionExpression:    strings.Join(keyConditions, " AND "),
		ExpressionAttributeValues: exprVals,
		IndexName:                 aws.String(gsi.IndexName),
		Limit:                     q.limit,
		ScanIndexForward:          q.ascending,
	}, nil
}

// Execute runs the query and returns typed results.
func (q *HistoryQueryBuilder[T]) Execute(ctx context.Context) ([]T, error) {
	params, err := q.Build()
	if err != nil {
		return nil, err
	}

	results, err := q.store.Query(ctx, params)
	if err != nil {
		return nil, err
	}

	typed := make([]T, 0, len(results))
	for _, r := range results {
		if v, ok := r.(T); ok {
			typed = append(typed, v)
		} else if v, ok := r.(*T); ok {
			typed = append(typed, *v)
		}
	}
	return typed, nil
}

// Stream executes the query as a stream, for histories too large to hold
// in one slice.
func (q *HistoryQueryBuilder[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) (<-chan storagemodels.StreamResult[T], error) {
	params, err := q.Build()
	if err != nil {
		return nil, err
	}
	return q.store.Stream(ctx, params, opts...), nil
}

// Convenience history patterns.

// LatestTokenEvents returns the N most recent events for a token.
func (d *DynamodbDataStore[T]) LatestTokenEvents(ctx context.Context, tokenID uint64, limit int32) ([]T, error) {
	return d.TokenHistory(tokenID).Latest().WithLimit(limit).Execute(ctx)
}

// TokenEventsSince returns a token's events since a timestamp, oldest
// first.
func (d *DynamodbDataStore[T]) TokenEventsSince(ctx context.Context, tokenID uint64, since time.Time) ([]T, error) {
	return d.TokenHistory(tokenID).After(since).Oldest().Execute(ctx)
}
