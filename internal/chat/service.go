package chat

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fathima-sithara/connect-service/internal/apperr"
	"github.com/fathima-sithara/connect-service/internal/connections"
	"github.com/fathima-sithara/connect-service/internal/models"
	"github.com/fathima-sithara/connect-service/internal/repository"
)

// Service owns the message log and the conversation read path. Both the HTTP
// send endpoint and the realtime delivery router go through Send, so the
// connection check cannot diverge between the two paths.
type Service struct {
	msgs  repository.MessageRepository
	users repository.UserRepository
	graph *connections.Service
	log   *zap.SugaredLogger
}

func NewService(msgs repository.MessageRepository, users repository.UserRepository, graph *connections.Service, log *zap.SugaredLogger) *Service {
	return &Service{msgs: msgs, users: users, graph: graph, log: log}
}

// Send validates, authorizes against the connection graph, and persists the
// message. Nothing is written when authorization fails. The returned message
// carries the server-generated id and timestamp.
func (s *Service) Send(ctx context.Context, sender, receiver, content string) (*models.Message, error) {
	if content == "" {
		return nil, apperr.ErrValidation
	}
	if _, err := s.users.GetByID(ctx, receiver); err != nil {
		return nil, err
	}
	connected, err := s.graph.Connected(ctx, sender, receiver)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, apperr.ErrForbidden
	}
	msg := &models.Message{Sender: sender, Receiver: receiver, Content: content}
	return s.msgs.Insert(ctx, msg)
}

// History returns the full conversation between user and partner, ascending.
// Fetching is what generates read receipts: the partner's unread messages are
// marked read as a side effect. The marking is idempotent and deliberately not
// atomic with the read itself.
func (s *Service) History(ctx context.Context, user, partner string) ([]*models.Message, error) {
	msgs, err := s.msgs.Between(ctx, user, partner)
	if err != nil {
		return nil, err
	}
	if _, err := s.msgs.MarkRead(ctx, user, partner); err != nil {
		s.log.Warnw("mark read after history fetch", "user", user, "partner", partner, "err", err)
	}
	return msgs, nil
}

// MarkRead flips the partner's unread messages to read without returning
// history.
func (s *Service) MarkRead(ctx context.Context, user, partner string) error {
	_, err := s.msgs.MarkRead(ctx, user, partner)
	return err
}

// Conversations builds the user's inbox: one summary per counterpart with the
// latest message and unread count, newest conversation first. Counterparts
// whose user record has disappeared are dropped from the listing.
func (s *Service) Conversations(ctx context.Context, userID string) ([]*models.ConversationSummary, error) {
	rows, err := s.msgs.ConversationsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		u, err := s.users.GetByID(ctx, row.CounterpartID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, &models.ConversationSummary{
			User:        *u,
			LastMessage: row.LastMessage,
			UnreadCount: row.UnreadCount,
		})
	}
	return out, nil
}
