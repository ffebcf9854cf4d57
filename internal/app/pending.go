package app

import (
	"sync"
	"time"

	"github.com/rsinha/huddle/internal/domain"
)

type pendingKey struct {
	Room domain.RoomID
	User domain.UserID
}

// PendingJoinRequests tracks in-flight admin-approval exchanges. An entry
// lives from admin:join-request until the admin responds or the TTL fires;
// nothing is persisted, a restart abandons all of them.
type PendingJoinRequests struct {
	mu     sync.Mutex
	ttl    time.Duration
	timers map[pendingKey]*time.Timer
}

func NewPendingJoinRequests(ttl time.Duration) *PendingJoinRequests {
	return &PendingJoinRequests{ttl: ttl, timers: make(map[pendingKey]*time.Timer)}
}

// Add records a request and arms its expiry. A repeated request for the same
// (room, user) pair resets the clock.
func (p *PendingJoinRequests) Add(room domain.RoomID, user domain.UserID, onExpire func()) {
	key := pendingKey{Room: room, User: user}
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[key]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(p.ttl, func() {
		p.mu.Lock()
		// A request resolved or re-armed between the fire and the lock wins.
		live := p.timers[key] == timer
		if live {
			delete(p.timers, key)
		}
		p.mu.Unlock()
		if live && onExpire != nil {
			onExpire()
		}
	})
	p.timers[key] = timer
}

// Resolve discards a request, reporting whether one was pending.
func (p *PendingJoinRequests) Resolve(room domain.RoomID, user domain.UserID) bool {
	key := pendingKey{Room: room, User: user}
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(p.timers, key)
	return true
}

// RoomFor finds the room of a user's pending request; the reject payload
// carries only the user id.
func (p *PendingJoinRequests) RoomFor(user domain.UserID) (domain.RoomID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.timers {
		if key.User == user {
			return key.Room, true
		}
	}
	return "", false
}

// Stop cancels every armed timer, for shutdown.
func (p *PendingJoinRequests) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, t := range p.timers {
		t.Stop()
		delete(p.timers, key)
	}
}
