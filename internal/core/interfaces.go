package core

import (
	"errors"

	"github.com/rsinha/huddle/internal/domain"
)

// Frame is an encoded event ready for the wire.
type Frame []byte

type ConnID string

var ErrBackpressure = errors.New("backpressure")

// Conn is a live transport endpoint (WebSocket).
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	ID() ConnID
	// TrySend enqueues a frame without blocking. ErrBackpressure means the
	// connection's send queue is full and the frame was dropped.
	TrySend(Frame) error
	Close()
}

// GroupKey addresses a multicast set in the registry: a user id for the
// personal group, a chat or room id for room groups.
type GroupKey string

func PersonalGroup(id domain.UserID) GroupKey { return GroupKey(id) }
