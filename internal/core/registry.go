package core

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/rsinha/huddle/internal/domain"
)

type connEntry struct {
	conn   Conn
	user   domain.UserID
	groups map[GroupKey]struct{}
}

// Registry is the process-local index of live connections. It is the sole
// owner of connection-to-user and connection-to-group mappings; critical
// sections are in-memory only and never span store I/O.
type Registry struct {
	mu     sync.RWMutex
	conns  map[ConnID]*connEntry
	groups map[GroupKey]map[ConnID]Conn
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[ConnID]*connEntry),
		groups: make(map[GroupKey]map[ConnID]Conn),
	}
}

// Bind registers an authenticated connection under userID and subscribes it
// to the user's personal group. Binding twice is a programming error.
func (r *Registry) Bind(c Conn, userID domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c.ID()]; ok {
		return fmt.Errorf("connection %s already bound", c.ID())
	}
	e := &connEntry{conn: c, user: userID, groups: make(map[GroupKey]struct{})}
	r.conns[c.ID()] = e
	r.joinLocked(e, PersonalGroup(userID))
	log.Info().Str("module", "core.registry").Str("conn", string(c.ID())).Str("user", string(userID)).Msg("bound connection")
	return nil
}

func (r *Registry) UserOf(id ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.user, true
	}
	return "", false
}

// JoinRoom subscribes a bound connection to a room group. Idempotent;
// a no-op for connections the registry does not know.
func (r *Registry) JoinRoom(id ConnID, key GroupKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return
	}
	r.joinLocked(e, key)
	log.Debug().Str("module", "core.registry").Str("conn", string(id)).Str("group", string(key)).Msg("joined group")
}

// LeaveRoom is the idempotent inverse of JoinRoom.
func (r *Registry) LeaveRoom(id ConnID, key GroupKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return
	}
	delete(e.groups, key)
	r.dropFromGroupLocked(id, key)
	log.Debug().Str("module", "core.registry").Str("conn", string(id)).Str("group", string(key)).Msg("left group")
}

// Unbind removes a connection from every group. Runs on disconnect and is a
// no-op for connections that never completed the handshake.
func (r *Registry) Unbind(id ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return
	}
	for key := range e.groups {
		r.dropFromGroupLocked(id, key)
	}
	delete(r.conns, id)
	log.Info().Str("module", "core.registry").Str("conn", string(id)).Str("user", string(e.user)).Msg("unbound connection")
}

// Multicast delivers a frame to every connection in the group and reports the
// number delivered. Each connection observes its own frames in enqueue order;
// nothing is promised across connections.
func (r *Registry) Multicast(key GroupKey, f Frame) int {
	r.mu.RLock()
	targets := make([]Conn, 0, len(r.groups[key]))
	for _, c := range r.groups[key] {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.TrySend(f); err != nil {
			log.Warn().Str("module", "core.registry").Str("conn", string(c.ID())).Str("group", string(key)).Msg("dropped frame on backpressure")
			continue
		}
		sent++
	}
	return sent
}

func (r *Registry) GroupSize(key GroupKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[key])
}

// Connections snapshots the group's members, for callers that need to filter
// or subscribe individual connections.
func (r *Registry) Connections(key GroupKey) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conn, 0, len(r.groups[key]))
	for _, c := range r.groups[key] {
		out = append(out, c)
	}
	return out
}

func (r *Registry) joinLocked(e *connEntry, key GroupKey) {
	e.groups[key] = struct{}{}
	g, ok := r.groups[key]
	if !ok {
		g = make(map[ConnID]Conn)
		r.groups[key] = g
	}
	g[e.conn.ID()] = e.conn
}

func (r *Registry) dropFromGroupLocked(id ConnID, key GroupKey) {
	g, ok := r.groups[key]
	if !ok {
		return
	}
	delete(g, id)
	if len(g) == 0 {
		delete(r.groups, key)
	}
}
