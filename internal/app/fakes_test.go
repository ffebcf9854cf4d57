package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

type fakeConn struct {
	id     core.ConnID
	mu     sync.Mutex
	frames []core.Frame
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: core.ConnID(id)} }

func (c *fakeConn) ID() core.ConnID { return c.id }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

type receivedEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// events decodes everything the connection has been sent, in order.
func (c *fakeConn) events(t *testing.T) []receivedEvent {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]receivedEvent, 0, len(c.frames))
	for _, f := range c.frames {
		var ev receivedEvent
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev)
	}
	return out
}

func (c *fakeConn) eventNames(t *testing.T) []string {
	t.Helper()
	evs := c.events(t)
	names := make([]string, len(evs))
	for i, ev := range evs {
		names[i] = ev.Event
	}
	return names
}

type fakeRoomStore struct {
	mu       sync.Mutex
	rooms    map[domain.RoomID]*domain.Room
	addCalls int
	failAdd  error
}

func newFakeRoomStore(rooms ...*domain.Room) *fakeRoomStore {
	s := &fakeRoomStore{rooms: make(map[domain.RoomID]*domain.Room)}
	for _, r := range rooms {
		s.rooms[r.RoomID] = r
	}
	return s
}

func (s *fakeRoomStore) CreateRoom(_ context.Context, admin domain.UserID, _ string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := &domain.Room{RoomID: domain.RoomID(fmt.Sprintf("room-%d", len(s.rooms))), Admin: admin, IsActive: true}
	s.rooms[room.RoomID] = room
	return room, nil
}

func (s *fakeRoomStore) FindRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", core.ErrNotFound, id)
	}
	cp := *room
	cp.Participants = append([]domain.UserID(nil), room.Participants...)
	return &cp, nil
}

// AddParticipant mirrors the $addToSet semantics of the real store.
func (s *fakeRoomStore) AddParticipant(_ context.Context, id domain.RoomID, user domain.UserID) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCalls++
	if s.failAdd != nil {
		return nil, s.failAdd
	}
	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", core.ErrNotFound, id)
	}
	if !room.HasParticipant(user) {
		room.Participants = append(room.Participants, user)
	}
	cp := *room
	return &cp, nil
}

func (s *fakeRoomStore) participants(id domain.RoomID) []domain.UserID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.UserID(nil), s.rooms[id].Participants...)
}

type fakeUserStore struct {
	users map[domain.UserID]*domain.User
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[domain.UserID]*domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindUser(_ context.Context, id domain.UserID) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, id)
}

// stubResolver maps credentials straight to user ids.
type stubResolver map[string]domain.UserID

func (r stubResolver) Resolve(credential string) (domain.UserID, error) {
	if id, ok := r[credential]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: invalid token", core.ErrUnauthorized)
}
