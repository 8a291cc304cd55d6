// Package store persists diagram documents.
//
// A document pairs a diagram definition with its most recent solution.
// Two backends are provided: MemoryStore for a single process and tests,
// and MongoStore for durable multi-instance deployments.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tenon/pkg/diagram"
	"github.com/matzehuels/tenon/pkg/errors"
)

// Document is a stored diagram with its latest solved state.
type Document struct {
	ID         uuid.UUID          `json:"id" bson:"_id"`
	Name       string             `json:"name" bson:"name"`
	Definition diagram.Definition `json:"definition" bson:"definition"`
	Solution   map[string]float64 `json:"solution,omitempty" bson:"solution,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// NewDocument creates a document for a definition with a fresh ID.
func NewDocument(def diagram.Definition) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:         uuid.New(),
		Name:       def.Name,
		Definition: def,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Store is the interface for document persistence backends.
type Store interface {
	// Put inserts or replaces a document by ID.
	Put(ctx context.Context, doc *Document) error

	// Get retrieves a document by ID. Returns a DIAGRAM_NOT_FOUND
	// error when no document has that ID.
	Get(ctx context.Context, id uuid.UUID) (*Document, error)

	// List returns all documents, most recently updated first.
	List(ctx context.Context) ([]*Document, error)

	// Delete removes a document by ID. Returns a DIAGRAM_NOT_FOUND
	// error when no document has that ID.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// notFound builds the standard missing-document error.
func notFound(id uuid.UUID) error {
	return errors.New(errors.ErrCodeDiagramNotFound, "diagram not found: %s", id)
}
