package connections

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fathima-sithara/connect-service/internal/apperr"
	"github.com/fathima-sithara/connect-service/internal/models"
	"github.com/fathima-sithara/connect-service/internal/repository"
)

// Service is the connection graph: directional friend-request edges with a
// derived symmetric "connected" status. Message delivery authorization runs
// through StatusBetween, the same derivation the listing endpoints use.
type Service struct {
	users repository.UserRepository
	conns repository.ConnectionRepository
	log   *zap.SugaredLogger
}

func NewService(users repository.UserRepository, conns repository.ConnectionRepository, log *zap.SugaredLogger) *Service {
	return &Service{users: users, conns: conns, log: log}
}

// Request creates a pending edge requester->recipient.
func (s *Service) Request(ctx context.Context, requester, recipient string) error {
	if requester == recipient {
		return apperr.ErrSelfConnection
	}
	if _, err := s.users.GetByID(ctx, recipient); err != nil {
		return err
	}
	if _, err := s.conns.FindBetween(ctx, requester, recipient); err == nil {
		return apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	conn := &models.Connection{
		Requester: requester,
		Recipient: recipient,
		Status:    models.ConnectionPending,
	}
	if err := s.conns.Create(ctx, conn); err != nil {
		return err
	}
	s.log.Infow("connection requested", "requester", requester, "recipient", recipient)
	return nil
}

// Accept transitions the pending edge requester->recipient to accepted. The
// transition is single-use: with two concurrent acceptors only one succeeds,
// the other observes ErrNotFound.
func (s *Service) Accept(ctx context.Context, recipient, requester string) error {
	if _, err := s.conns.Accept(ctx, requester, recipient); err != nil {
		return err
	}
	s.log.Infow("connection accepted", "requester", requester, "recipient", recipient)
	return nil
}

// Reject deletes the pending edge requester->recipient.
func (s *Service) Reject(ctx context.Context, recipient, requester string) error {
	if err := s.conns.Delete(ctx, requester, recipient); err != nil {
		return err
	}
	s.log.Infow("connection rejected", "requester", requester, "recipient", recipient)
	return nil
}

// StatusBetween derives a's status toward b. Pure read, no side effects.
// "connected" is symmetric; "pending"/"received" depend on edge direction.
func (s *Service) StatusBetween(ctx context.Context, a, b string) (string, error) {
	edge, err := s.conns.FindBetween(ctx, a, b)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.StatusNone, nil
		}
		return "", err
	}
	if edge.Status == models.ConnectionAccepted {
		return models.StatusConnected, nil
	}
	if edge.Requester == a {
		return models.StatusPending, nil
	}
	return models.StatusReceived, nil
}

// Connected reports whether a and b share an accepted edge.
func (s *Service) Connected(ctx context.Context, a, b string) (bool, error) {
	status, err := s.StatusBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	return status == models.StatusConnected, nil
}

// PendingRequesters returns the users whose requests to recipient are still
// pending.
func (s *Service) PendingRequesters(ctx context.Context, recipient string) ([]*models.User, error) {
	edges, err := s.conns.PendingFor(ctx, recipient)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(edges))
	for _, edge := range edges {
		u, err := s.users.GetByID(ctx, edge.Requester)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load requester %s: %w", edge.Requester, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// ListWithStatus returns users other than the viewer, each annotated with the
// viewer's connection status toward them.
func (s *Service) ListWithStatus(ctx context.Context, viewer, search string) ([]*models.UserWithStatus, error) {
	users, err := s.users.List(ctx, viewer, search, 50)
	if err != nil {
		return nil, err
	}
	out := make([]*models.UserWithStatus, 0, len(users))
	for _, u := range users {
		status, err := s.StatusBetween(ctx, viewer, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &models.UserWithStatus{User: *u, ConnectionStatus: status})
	}
	return out, nil
}
