package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore keeps documents in a single budget.records table with a jsonb
// body, keyed by (collection, id).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore initializes a store backed by the given database
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Query returns all documents in a collection for the given month
func (s *PostgresStore) Query(ctx context.Context, collection, month string) ([]Document, error) {
	query := `
		SELECT id, data
		FROM budget.records
		WHERE collection = $1 AND data->>'month' = $2`
	rows, err := s.db.QueryContext(ctx, query, collection, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s for %s: %w", collection, month, err)
	}
	defer rows.Close()
	return scanDocuments(rows, collection)
}

// QueryAll returns every document in a collection
func (s *PostgresStore) QueryAll(ctx context.Context, collection string) ([]Document, error) {
	query := `
		SELECT id, data
		FROM budget.records
		WHERE collection = $1`
	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()
	return scanDocuments(rows, collection)
}

// Get returns a single document by id
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	doc := Document{ID: id}
	query := `
		SELECT data
		FROM budget.records
		WHERE collection = $1 AND id = $2`
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&doc.Data)
	if err == sql.ErrNoRows {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

// Insert stores a new document under a generated id
func (s *PostgresStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s record: %w", collection, err)
	}
	id := uuid.NewString()
	query := `
		INSERT INTO budget.records (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, data); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

// Set stores a document under a fixed id, replacing any previous body
func (s *PostgresStore) Set(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", collection, err)
	}
	query := `
		INSERT INTO budget.records (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, query, collection, id, data); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges partial fields into an existing document body
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s update: %w", collection, err)
	}
	query := `
		UPDATE budget.records
		SET data = data || $3::jsonb, updated_at = CURRENT_TIMESTAMP
		WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, collection, id, patch)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// Delete removes a document by id
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	query := `
		DELETE FROM budget.records
		WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func scanDocuments(rows *sql.Rows, collection string) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s records: %w", collection, err)
	}
	return docs, nil
}
