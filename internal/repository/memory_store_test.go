package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fathima-sithara/connect-service/internal/models"
)

func TestMessageOrderingTiebreak(t *testing.T) {
	s := NewMemoryMessageStore()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Equal timestamps: id decides the order.
	s.msgs = []*models.Message{
		{ID: "m2", Sender: "a", Receiver: "b", Content: "second", CreatedAt: ts},
		{ID: "m1", Sender: "b", Receiver: "a", Content: "first", CreatedAt: ts},
		{ID: "m0", Sender: "a", Receiver: "b", Content: "zeroth", CreatedAt: ts.Add(-time.Minute)},
	}

	out, err := s.Between(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, []string{"m0", "m1", "m2"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestConversationsForSinglePass(t *testing.T) {
	s := NewMemoryMessageStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.msgs = []*models.Message{
		{ID: "m1", Sender: "a", Receiver: "b", Content: "to b", CreatedAt: base},
		{ID: "m2", Sender: "b", Receiver: "a", Content: "from b", CreatedAt: base.Add(time.Minute)},
		{ID: "m3", Sender: "c", Receiver: "a", Content: "from c", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "m4", Sender: "a", Receiver: "c", Content: "to c", CreatedAt: base.Add(3 * time.Minute)},
		// Unrelated pair never shows up in a's inbox.
		{ID: "m5", Sender: "b", Receiver: "c", Content: "b to c", CreatedAt: base.Add(4 * time.Minute)},
	}

	rows, err := s.ConversationsFor(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "c", rows[0].CounterpartID)
	require.Equal(t, "m4", rows[0].LastMessage.ID)
	require.Equal(t, 1, rows[0].UnreadCount)

	require.Equal(t, "b", rows[1].CounterpartID)
	require.Equal(t, "m2", rows[1].LastMessage.ID)
	require.Equal(t, 1, rows[1].UnreadCount)
}

func TestConversationsUnreadCountsOnlyInbound(t *testing.T) {
	s := NewMemoryMessageStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, &models.Message{Sender: "b", Receiver: "a", Content: "hi"})
		require.NoError(t, err)
	}
	_, err := s.Insert(ctx, &models.Message{Sender: "a", Receiver: "b", Content: "reply"})
	require.NoError(t, err)

	rows, err := s.ConversationsFor(ctx, "a")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 3, rows[0].UnreadCount)

	n, err := s.MarkRead(ctx, "a", "b")
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	// Second pass marks nothing.
	n, err = s.MarkRead(ctx, "a", "b")
	require.NoError(t, err)
	require.Zero(t, n)

	rows, err = s.ConversationsFor(ctx, "a")
	require.NoError(t, err)
	require.Zero(t, rows[0].UnreadCount)
}

func TestMarkReadSetsReadAt(t *testing.T) {
	s := NewMemoryMessageStore()
	ctx := context.Background()

	_, err := s.Insert(ctx, &models.Message{Sender: "b", Receiver: "a", Content: "hi"})
	require.NoError(t, err)

	_, err = s.MarkRead(ctx, "a", "b")
	require.NoError(t, err)

	out, err := s.Between(ctx, "a", "b")
	require.NoError(t, err)
	require.True(t, out[0].Read)
	require.NotNil(t, out[0].ReadAt)
}

func TestConnectionStorePairKey(t *testing.T) {
	require.Equal(t, pairKey("b", "a"), pairKey("a", "b"))
}
