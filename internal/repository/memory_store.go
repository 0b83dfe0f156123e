package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fathima-sithara/connect-service/internal/apperr"
	"github.com/fathima-sithara/connect-service/internal/models"
)

// In-memory drivers, selected with storage.driver=memory. The same
// implementations back the package tests.

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

// Put seeds or replaces a user record.
func (s *MemoryUserStore) Put(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryUserStore) List(ctx context.Context, excludeID, search string, limit int64) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	search = strings.ToLower(search)
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type MemoryConnectionStore struct {
	mu    sync.Mutex
	edges map[string]*models.Connection // keyed by sorted pair
}

func NewMemoryConnectionStore() *MemoryConnectionStore {
	return &MemoryConnectionStore{edges: make(map[string]*models.Connection)}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

func (s *MemoryConnectionStore) FindBetween(ctx context.Context, a, b string) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, ok := s.edges[pairKey(a, b)]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *edge
	return &cp, nil
}

func (s *MemoryConnectionStore) Create(ctx context.Context, conn *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(conn.Requester, conn.Recipient)
	if _, ok := s.edges[key]; ok {
		return apperr.ErrAlreadyExists
	}
	now := time.Now().UTC()
	conn.ID = uuid.NewString()
	conn.CreatedAt = now
	conn.UpdatedAt = now
	cp := *conn
	s.edges[key] = &cp
	return nil
}

func (s *MemoryConnectionStore) Accept(ctx context.Context, requester, recipient string) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge, ok := s.edges[pairKey(requester, recipient)]
	if !ok || edge.Status != models.ConnectionPending || edge.Requester != requester || edge.Recipient != recipient {
		return nil, apperr.ErrNotFound
	}
	edge.Status = models.ConnectionAccepted
	edge.UpdatedAt = time.Now().UTC()
	cp := *edge
	return &cp, nil
}

func (s *MemoryConnectionStore) Delete(ctx context.Context, requester, recipient string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(requester, recipient)
	edge, ok := s.edges[key]
	if !ok || edge.Status != models.ConnectionPending || edge.Requester != requester || edge.Recipient != recipient {
		return apperr.ErrNotFound
	}
	delete(s.edges, key)
	return nil
}

func (s *MemoryConnectionStore) PendingFor(ctx context.Context, recipient string) ([]*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Connection
	for _, edge := range s.edges {
		if edge.Recipient == recipient && edge.Status == models.ConnectionPending {
			cp := *edge
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type MemoryMessageStore struct {
	mu   sync.Mutex
	msgs []*models.Message
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{}
}

func (s *MemoryMessageStore) Insert(ctx context.Context, msg *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()
	msg.Read = false
	msg.ReadAt = nil
	cp := *msg
	s.msgs = append(s.msgs, &cp)
	return msg, nil
}

func olderThan(a, b *models.Message) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (s *MemoryMessageStore) Between(ctx context.Context, a, b string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Message
	for _, m := range s.msgs {
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return olderThan(out[i], out[j]) })
	return out, nil
}

func (s *MemoryMessageStore) MarkRead(ctx context.Context, receiver, sender string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	var n int64
	for _, m := range s.msgs {
		if m.Receiver == receiver && m.Sender == sender && !m.Read {
			m.Read = true
			m.ReadAt = &now
			n++
		}
	}
	return n, nil
}

// ConversationsFor is a single pass over the user's messages: O(n) grouping,
// no per-counterpart rescans.
func (s *MemoryMessageStore) ConversationsFor(ctx context.Context, userID string) ([]*ConversationRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make(map[string]*ConversationRow)
	for _, m := range s.msgs {
		var counterpart string
		switch {
		case m.Sender == userID:
			counterpart = m.Receiver
		case m.Receiver == userID:
			counterpart = m.Sender
		default:
			continue
		}
		row, ok := rows[counterpart]
		if !ok {
			row = &ConversationRow{CounterpartID: counterpart}
			rows[counterpart] = row
		}
		if row.LastMessage == nil || olderThan(row.LastMessage, m) {
			cp := *m
			row.LastMessage = &cp
		}
		if m.Receiver == userID && !m.Read {
			row.UnreadCount++
		}
	}
	out := make([]*ConversationRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		return olderThan(out[j].LastMessage, out[i].LastMessage)
	})
	return out, nil
}
