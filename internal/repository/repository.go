package repository

import (
	"context"

	"github.com/fathima-sithara/connect-service/internal/models"
)

// ConversationRow is one aggregation result: the latest message exchanged
// with a counterpart and how many of their messages are still unread.
type ConversationRow struct {
	CounterpartID string          `bson:"_id"`
	LastMessage   *models.Message `bson:"last_message"`
	UnreadCount   int             `bson:"unread_count"`
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// List returns users other than excludeID, optionally filtered by a
	// case-insensitive name/email search.
	List(ctx context.Context, excludeID, search string, limit int64) ([]*models.User, error)
}

type ConnectionRepository interface {
	// FindBetween returns the edge between a and b regardless of direction
	// or status. apperr.ErrNotFound when no edge exists.
	FindBetween(ctx context.Context, a, b string) (*models.Connection, error)
	// Create inserts a pending edge. apperr.ErrAlreadyExists when an edge
	// for the pair already exists.
	Create(ctx context.Context, conn *models.Connection) error
	// Accept transitions the exact pending edge requester->recipient to
	// accepted. The transition is single-use: a concurrent second accept
	// observes apperr.ErrNotFound.
	Accept(ctx context.Context, requester, recipient string) (*models.Connection, error)
	// Delete removes the exact pending edge requester->recipient.
	// apperr.ErrNotFound when already resolved.
	Delete(ctx context.Context, requester, recipient string) error
	PendingFor(ctx context.Context, recipient string) ([]*models.Connection, error)
}

type MessageRepository interface {
	// Insert persists a message with a generated id and server timestamp.
	Insert(ctx context.Context, msg *models.Message) (*models.Message, error)
	// Between returns every message exchanged by the pair, ascending by
	// created_at with id as tiebreak.
	Between(ctx context.Context, a, b string) ([]*models.Message, error)
	// MarkRead flips unread sender->receiver messages to read. Idempotent;
	// returns the number of messages that transitioned.
	MarkRead(ctx context.Context, receiver, sender string) (int64, error)
	// ConversationsFor groups the user's messages by counterpart, keeping
	// the latest message and unread count per group, sorted by latest
	// message time descending.
	ConversationsFor(ctx context.Context, userID string) ([]*ConversationRow, error)
}
