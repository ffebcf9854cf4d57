package core_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

type fakeConn struct {
	id     core.ConnID
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: core.ConnID(id)}
}

func (c *fakeConn) ID() core.ConnID { return c.id }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		out[i] = string(f)
	}
	return out
}

func TestBindSubscribesPersonalGroup(t *testing.T) {
	reg := core.NewRegistry()
	conn := newFakeConn("c1")

	err := reg.Bind(conn, domain.UserID("u1"))
	assert.NoError(t, err)
	assert.Equal(t, 1, reg.GroupSize(core.PersonalGroup("u1")))

	user, ok := reg.UserOf(conn.ID())
	assert.True(t, ok)
	assert.Equal(t, domain.UserID("u1"), user)
}

func TestBindTwiceIsAnError(t *testing.T) {
	reg := core.NewRegistry()
	conn := newFakeConn("c1")

	assert.NoError(t, reg.Bind(conn, "u1"))
	assert.Error(t, reg.Bind(conn, "u1"))
	assert.Equal(t, 1, reg.GroupSize(core.PersonalGroup("u1")))
}

func TestJoinRoomIsIdempotent(t *testing.T) {
	reg := core.NewRegistry()
	conn := newFakeConn("c1")
	assert.NoError(t, reg.Bind(conn, "u1"))

	reg.JoinRoom(conn.ID(), "room-1")
	reg.JoinRoom(conn.ID(), "room-1")
	assert.Equal(t, 1, reg.GroupSize("room-1"))

	reg.LeaveRoom(conn.ID(), "room-1")
	reg.LeaveRoom(conn.ID(), "room-1")
	assert.Equal(t, 0, reg.GroupSize("room-1"))
}

func TestJoinRoomForUnknownConnIsANoop(t *testing.T) {
	reg := core.NewRegistry()
	reg.JoinRoom("ghost", "room-1")
	assert.Equal(t, 0, reg.GroupSize("room-1"))
}

func TestUnbindRemovesFromEveryGroup(t *testing.T) {
	reg := core.NewRegistry()
	conn := newFakeConn("c1")
	assert.NoError(t, reg.Bind(conn, "u1"))
	reg.JoinRoom(conn.ID(), "room-1")
	reg.JoinRoom(conn.ID(), "room-2")

	reg.Unbind(conn.ID())

	assert.Equal(t, 0, reg.GroupSize(core.PersonalGroup("u1")))
	assert.Equal(t, 0, reg.GroupSize("room-1"))
	assert.Equal(t, 0, reg.GroupSize("room-2"))
	_, ok := reg.UserOf(conn.ID())
	assert.False(t, ok)
}

func TestUnbindNeverBoundConnIsANoop(t *testing.T) {
	reg := core.NewRegistry()
	reg.Unbind("ghost")
}

func TestMulticastReachesEveryConnOfAUser(t *testing.T) {
	reg := core.NewRegistry()
	phone := newFakeConn("phone")
	laptop := newFakeConn("laptop")
	assert.NoError(t, reg.Bind(phone, "u1"))
	assert.NoError(t, reg.Bind(laptop, "u1"))

	sent := reg.Multicast(core.PersonalGroup("u1"), core.Frame(`{"event":"connected"}`))

	assert.Equal(t, 2, sent)
	assert.Len(t, phone.received(), 1)
	assert.Len(t, laptop.received(), 1)
}

func TestMulticastIsFIFOPerConnection(t *testing.T) {
	reg := core.NewRegistry()
	conn := newFakeConn("c1")
	assert.NoError(t, reg.Bind(conn, "u1"))

	for i := 0; i < 5; i++ {
		reg.Multicast(core.PersonalGroup("u1"), core.Frame(fmt.Sprintf("frame-%d", i)))
	}

	got := conn.received()
	assert.Len(t, got, 5)
	for i, f := range got {
		assert.Equal(t, fmt.Sprintf("frame-%d", i), f)
	}
}

func TestMulticastSkipsSaturatedConnections(t *testing.T) {
	reg := core.NewRegistry()
	healthy := newFakeConn("healthy")
	stuck := newFakeConn("stuck")
	stuck.full = true
	assert.NoError(t, reg.Bind(healthy, "u1"))
	assert.NoError(t, reg.Bind(stuck, "u1"))

	sent := reg.Multicast(core.PersonalGroup("u1"), core.Frame("hello"))

	assert.Equal(t, 1, sent)
	assert.Len(t, healthy.received(), 1)
	assert.Empty(t, stuck.received())
}

func TestMulticastToRoomGroup(t *testing.T) {
	reg := core.NewRegistry()
	a := newFakeConn("a")
	b := newFakeConn("b")
	outsider := newFakeConn("outsider")
	assert.NoError(t, reg.Bind(a, "ua"))
	assert.NoError(t, reg.Bind(b, "ub"))
	assert.NoError(t, reg.Bind(outsider, "uc"))
	reg.JoinRoom(a.ID(), "abc123")
	reg.JoinRoom(b.ID(), "abc123")

	sent := reg.Multicast("abc123", core.Frame("room-frame"))

	assert.Equal(t, 2, sent)
	assert.Len(t, a.received(), 1)
	assert.Len(t, b.received(), 1)
	assert.Empty(t, outsider.received())
}
