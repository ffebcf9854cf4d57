package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

type stubConn struct {
	id     core.ConnID
	mu     sync.Mutex
	frames []core.Frame
}

func newStubConn(id string) *stubConn { return &stubConn{id: core.ConnID(id)} }

func (c *stubConn) ID() core.ConnID { return c.id }

func (c *stubConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *stubConn) Close() {}

func (c *stubConn) eventNames(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.frames))
	for i, f := range c.frames {
		var ev struct {
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal(f, &ev))
		names[i] = ev.Event
	}
	return names
}

func newTestController() (*Controller, *core.Registry) {
	registry := core.NewRegistry()
	return &Controller{Registry: registry, Relay: core.NewRelay(registry)}, registry
}

func bindToChat(t *testing.T, registry *core.Registry, id string, user domain.UserID, chat core.GroupKey) *stubConn {
	t.Helper()
	c := newStubConn(id)
	require.NoError(t, registry.Bind(c, user))
	registry.JoinRoom(c.ID(), chat)
	return c
}

func TestCredentialPrefersCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/ws?auth=query-token", nil)
	r.AddCookie(&http.Cookie{Name: "accessToken", Value: "cookie-token"})

	assert.Equal(t, "cookie-token", credential(r))
}

func TestCredentialFallsBackToQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/ws?auth=query-token", nil)
	assert.Equal(t, "query-token", credential(r))
}

func TestCredentialIgnoresEmptyCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/ws?auth=query-token", nil)
	r.AddCookie(&http.Cookie{Name: "accessToken", Value: ""})

	assert.Equal(t, "query-token", credential(r))
}

func TestCredentialAbsent(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/ws", nil)
	assert.Empty(t, credential(r))
}

// A typing indicator goes to every connection in the chat group except the one
// that emitted it, including the emitter's own other connections.
func TestTypingSkipsEmittingConnection(t *testing.T) {
	ctl, registry := newTestController()
	chat := core.GroupKey("chat-1")
	alice := domain.UserID("alice")

	emitter := bindToChat(t, registry, "c1", alice, chat)
	aliceTab := bindToChat(t, registry, "c2", alice, chat)
	bob := bindToChat(t, registry, "c3", "bob", chat)

	user := &domain.User{ID: alice}
	ctl.dispatch(context.Background(), emitter, user, []byte(`{"event":"typing","payload":{"chatId":"chat-1"}}`))

	assert.Empty(t, emitter.eventNames(t))
	assert.Equal(t, []string{"typing"}, aliceTab.eventNames(t))
	assert.Equal(t, []string{"typing"}, bob.eventNames(t))
}

func TestStopTypingSkipsEmittingConnection(t *testing.T) {
	ctl, registry := newTestController()
	chat := core.GroupKey("chat-1")

	emitter := bindToChat(t, registry, "c1", "alice", chat)
	bob := bindToChat(t, registry, "c2", "bob", chat)

	user := &domain.User{ID: "alice"}
	ctl.dispatch(context.Background(), emitter, user, []byte(`{"event":"stopTyping","payload":{"chatId":"chat-1"}}`))

	assert.Empty(t, emitter.eventNames(t))
	assert.Equal(t, []string{"stopTyping"}, bob.eventNames(t))
}

func TestTypingStaysInsideChatGroup(t *testing.T) {
	ctl, registry := newTestController()

	emitter := bindToChat(t, registry, "c1", "alice", "chat-1")
	elsewhere := bindToChat(t, registry, "c2", "bob", "chat-2")

	user := &domain.User{ID: "alice"}
	ctl.dispatch(context.Background(), emitter, user, []byte(`{"event":"typing","payload":{"chatId":"chat-1"}}`))

	assert.Empty(t, elsewhere.eventNames(t))
}

func TestJoinChatSubscribesConnection(t *testing.T) {
	ctl, registry := newTestController()
	c := newStubConn("c1")
	require.NoError(t, registry.Bind(c, "alice"))

	user := &domain.User{ID: "alice"}
	ctl.dispatch(context.Background(), c, user, []byte(`{"event":"joinChat","payload":{"chatId":"chat-1"}}`))

	ctl.Relay.Emit(core.GroupKey("chat-1"), core.Typing{ChatID: "chat-1"})
	assert.Equal(t, []string{"typing"}, c.eventNames(t))
}

func TestLeaveChatUnsubscribesConnection(t *testing.T) {
	ctl, registry := newTestController()
	c := bindToChat(t, registry, "c1", "alice", "chat-1")

	user := &domain.User{ID: "alice"}
	ctl.dispatch(context.Background(), c, user, []byte(`{"event":"leaveChat","payload":{"chatId":"chat-1"}}`))

	ctl.Relay.Emit(core.GroupKey("chat-1"), core.Typing{ChatID: "chat-1"})
	assert.Empty(t, c.eventNames(t))
}

func TestDispatchRejectsUnknownEvent(t *testing.T) {
	ctl, registry := newTestController()
	c := newStubConn("c1")
	require.NoError(t, registry.Bind(c, "alice"))

	user := &domain.User{ID: "alice"}
	ctl.dispatch(context.Background(), c, user, []byte(`{"event":"selfDestruct","payload":{}}`))

	assert.Equal(t, []string{"error"}, c.eventNames(t))
}

func TestDispatchRejectsGarbageFrame(t *testing.T) {
	ctl, registry := newTestController()
	c := newStubConn("c1")
	require.NoError(t, registry.Bind(c, "alice"))

	user := &domain.User{ID: "alice"}
	ctl.dispatch(context.Background(), c, user, []byte("not json"))

	assert.Equal(t, []string{"error"}, c.eventNames(t))
}
