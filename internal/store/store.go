// Package store defines the document store the API reads and writes.
//
// Two collections exist: users keyed by id, and messages keyed by id. Each
// backend (memory, sqlite, mongo) implements Users and Messages.
package store

import (
	"context"

	"github.com/pkg/errors"

	"minitwitql/internal/models"
)

// ErrNotFound is returned by point lookups and deletes that match nothing.
var ErrNotFound = errors.New("not found")

// Users represents the actions that can be taken about users.
type Users interface {
	Create(ctx context.Context, u models.User) error
	ByID(ctx context.Context, id string) (models.User, error)
	// ByEmail matches email case-insensitively.
	ByEmail(ctx context.Context, email string) (models.User, error)
}

// Messages represents the actions that can be taken about messages.
type Messages interface {
	Create(ctx context.Context, m models.Message) error
	ByID(ctx context.Context, id string) (models.Message, error)
	Delete(ctx context.Context, id string) error
	// List returns messages matching q in ascending Date order.
	List(ctx context.Context, q Query) ([]models.Message, error)
}

// Query filters a message listing.
type Query struct {
	// UserID, when set, restricts the listing to one author.
	UserID string
	// After, when set, keeps only messages with Date > After.
	After string
	// Limit bounds the result when positive.
	Limit int
}

// Store bundles both collections of one backend.
type Store interface {
	Users() Users
	Messages() Messages
	Ping(ctx context.Context) error
	Close() error
}
