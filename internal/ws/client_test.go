package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fathima-sithara/connect-service/internal/chat"
	"github.com/fathima-sithara/connect-service/internal/connections"
	"github.com/fathima-sithara/connect-service/internal/delivery"
	"github.com/fathima-sithara/connect-service/internal/models"
	"github.com/fathima-sithara/connect-service/internal/presence"
	"github.com/fathima-sithara/connect-service/internal/repository"
)

// gateway wires real services behind a hub so client intents can be driven
// end to end without a websocket transport.
type gateway struct {
	hub    *Hub
	router *delivery.Router
	graph  *connections.Service
	msgs   *repository.MemoryMessageStore
}

func newGateway(t *testing.T, ids ...string) *gateway {
	t.Helper()
	users := repository.NewMemoryUserStore()
	for _, id := range ids {
		users.Put(&models.User{ID: id, Name: "User " + id, Email: id + "@example.com"})
	}
	log := zap.NewNop().Sugar()
	graph := connections.NewService(users, repository.NewMemoryConnectionStore(), log)
	msgs := repository.NewMemoryMessageStore()
	chatSvc := chat.NewService(msgs, users, graph, log)
	hub := NewHub(presence.NewRegistry(), log)
	router := delivery.NewRouter(chatSvc, hub, nil, log)
	return &gateway{hub: hub, router: router, graph: graph, msgs: msgs}
}

func (g *gateway) session(hubUser string) *Client {
	u := &models.User{ID: hubUser, Name: "User " + hubUser}
	c := NewClient(nil, u, g.hub, g.router, 20, 64)
	g.hub.OnConnect(c)
	return c
}

func (g *gateway) connect(t *testing.T, a, b string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, g.graph.Request(ctx, a, b))
	require.NoError(t, g.graph.Accept(ctx, b, a))
}

func intent(t *testing.T, c *Client, event string, payload any) {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	c.dispatch(&Envelope{Event: event, Data: b})
}

func TestSendIntentDeliversToBothParties(t *testing.T) {
	g := newGateway(t, "a", "b")
	g.connect(t, "a", "b")

	ca := g.session("a")
	cb := g.session("b")
	drain(t, ca)
	drain(t, cb)

	intent(t, ca, "conversation:join", map[string]string{"userId": "b"})
	intent(t, ca, "message:send", map[string]string{"receiverId": "b", "content": "hello"})

	// Sender: echo plus the conversation-room copy (a joined the room).
	require.Equal(t, []string{"message:received", "message:received"}, eventNames(drain(t, ca)))

	// Receiver: direct delivery plus the inbox-refresh signal.
	got := eventNames(drain(t, cb))
	require.Equal(t, []string{"message:received", "conversation:updated"}, got)

	// Durable record exists for both perspectives.
	msgs, err := g.msgs.Between(context.Background(), "b", "a")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "hello", msgs[0].Content)
}

func TestSendIntentWithoutConnection(t *testing.T) {
	g := newGateway(t, "a", "b")

	ca := g.session("a")
	cb := g.session("b")
	drain(t, ca)
	drain(t, cb)

	intent(t, ca, "message:send", map[string]string{"receiverId": "b", "content": "hello"})

	require.Equal(t, []string{"error"}, eventNames(drain(t, ca)))
	require.Empty(t, drain(t, cb))

	msgs, err := g.msgs.Between(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestTypingIntentForwarded(t *testing.T) {
	g := newGateway(t, "a", "b")

	ca := g.session("a")
	cb := g.session("b")
	drain(t, ca)
	drain(t, cb)

	intent(t, ca, "typing:start", map[string]string{"receiverId": "b"})
	intent(t, ca, "typing:stop", map[string]string{"receiverId": "b"})

	require.Equal(t, []string{"typing:start", "typing:stop"}, eventNames(drain(t, cb)))
	require.Empty(t, drain(t, ca))
}

func TestMalformedIntentIgnored(t *testing.T) {
	g := newGateway(t, "a")
	ca := g.session("a")
	drain(t, ca)

	ca.dispatch(&Envelope{Event: "message:send", Data: []byte(`{"receiverId":`)})
	ca.dispatch(&Envelope{Event: "message:send", Data: []byte(`{}`)})
	ca.dispatch(&Envelope{Event: "no:such:event", Data: []byte(`{}`)})

	require.Empty(t, drain(t, ca))
}
