package repository

import (
	"context"
	"encoding/json"
	"errors"
)

// Collections known to the record store.
const (
	CollectionIncome      = "income"
	CollectionExpenses    = "expenses"
	CollectionReceivables = "receivables"
	CollectionUpcoming    = "upcoming_payments"
	CollectionBudgetPlans = "budget_plans"
	CollectionGoalPlans   = "goal_plans"
	CollectionMetadata    = "metadata"
)

// MetadataCarryForward is the fixed key of the carry-forward metadata document.
const MetadataCarryForward = "carry_forward_metadata"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Document is a stored record: an opaque id plus its JSON body.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Store is an external keyed record store. Records are JSON documents grouped
// into named collections; ids are assigned by the store on insert.
type Store interface {
	// Query returns all documents in a collection whose "month" field matches.
	Query(ctx context.Context, collection, month string) ([]Document, error)
	// QueryAll returns every document in a collection.
	QueryAll(ctx context.Context, collection string) ([]Document, error)
	// Get returns a single document by id.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Insert stores a new document and returns its assigned id.
	Insert(ctx context.Context, collection string, doc any) (string, error)
	// Set stores a document under a caller-chosen id, replacing any previous body.
	Set(ctx context.Context, collection, id string, doc any) error
	// Update merges partial fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes a document by id.
	Delete(ctx context.Context, collection, id string) error
}
