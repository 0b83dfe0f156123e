package connections

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fathima-sithara/connect-service/internal/apperr"
	"github.com/fathima-sithara/connect-service/internal/models"
	"github.com/fathima-sithara/connect-service/internal/repository"
)

func newTestService(t *testing.T, ids ...string) *Service {
	t.Helper()
	users := repository.NewMemoryUserStore()
	for _, id := range ids {
		users.Put(&models.User{ID: id, Name: "User " + id, Email: id + "@example.com"})
	}
	return NewService(users, repository.NewMemoryConnectionStore(), zap.NewNop().Sugar())
}

func TestRequestSelfConnection(t *testing.T) {
	svc := newTestService(t, "a")
	err := svc.Request(context.Background(), "a", "a")
	require.ErrorIs(t, err, apperr.ErrSelfConnection)
}

func TestRequestUnknownRecipient(t *testing.T) {
	svc := newTestService(t, "a")
	err := svc.Request(context.Background(), "a", "ghost")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDuplicateRequest(t *testing.T) {
	svc := newTestService(t, "a", "b")
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "a", "b"))
	require.ErrorIs(t, svc.Request(ctx, "a", "b"), apperr.ErrAlreadyExists)
	// The invariant holds in either direction.
	require.ErrorIs(t, svc.Request(ctx, "b", "a"), apperr.ErrAlreadyExists)

	pending, err := svc.PendingRequesters(ctx, "b")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "a", pending[0].ID)
}

func TestAcceptFlow(t *testing.T) {
	svc := newTestService(t, "a", "b")
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "a", "b"))

	status, err := svc.StatusBetween(ctx, "a", "b")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, status)

	status, err = svc.StatusBetween(ctx, "b", "a")
	require.NoError(t, err)
	require.Equal(t, models.StatusReceived, status)

	require.NoError(t, svc.Accept(ctx, "b", "a"))

	for _, pair := range [][2]string{{"a", "b"}, {"b", "a"}} {
		status, err = svc.StatusBetween(ctx, pair[0], pair[1])
		require.NoError(t, err)
		require.Equal(t, models.StatusConnected, status)
	}

	pending, err := svc.PendingRequesters(ctx, "b")
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestAcceptWrongDirection(t *testing.T) {
	svc := newTestService(t, "a", "b")
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "a", "b"))
	// The requester cannot accept their own request.
	require.ErrorIs(t, svc.Accept(ctx, "a", "b"), apperr.ErrNotFound)
}

func TestAcceptIsSingleUse(t *testing.T) {
	svc := newTestService(t, "a", "b")
	ctx := context.Background()
	require.NoError(t, svc.Request(ctx, "a", "b"))

	const goroutines = 8
	var wg sync.WaitGroup
	results := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Accept(ctx, "b", "a")
		}()
	}
	wg.Wait()
	close(results)

	var ok, notFound int
	for err := range results {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, apperr.ErrNotFound)
			notFound++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, goroutines-1, notFound)
}

func TestRejectDeletesEdge(t *testing.T) {
	svc := newTestService(t, "a", "b")
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "a", "b"))
	require.NoError(t, svc.Reject(ctx, "b", "a"))

	status, err := svc.StatusBetween(ctx, "a", "b")
	require.NoError(t, err)
	require.Equal(t, models.StatusNone, status)

	// Already resolved: idempotent failure.
	require.ErrorIs(t, svc.Reject(ctx, "b", "a"), apperr.ErrNotFound)

	// The pair can connect again after a rejection.
	require.NoError(t, svc.Request(ctx, "b", "a"))
}

func TestStatusBetweenNoEdge(t *testing.T) {
	svc := newTestService(t, "a", "b")
	status, err := svc.StatusBetween(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Equal(t, models.StatusNone, status)
}

func TestListWithStatus(t *testing.T) {
	svc := newTestService(t, "a", "b", "c")
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "a", "b"))

	list, err := svc.ListWithStatus(ctx, "a", "")
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := make(map[string]string)
	for _, row := range list {
		byID[row.ID] = row.ConnectionStatus
	}
	require.Equal(t, models.StatusPending, byID["b"])
	require.Equal(t, models.StatusNone, byID["c"])
}
