// Package app holds the signaling-layer use cases: handshake admission and
// the room membership coordinator.
package app

import (
	"context"

	"github.com/rsinha/huddle/internal/domain"
)

// IdentityResolver verifies an access credential and resolves its subject.
type IdentityResolver interface {
	Resolve(credential string) (domain.UserID, error)
}

// The durable store collaborators. Each call is atomic; implementations must
// keep AddParticipant an idempotent set union so duplicate approvals and
// retries are safe without locking.

type UserStore interface {
	FindUser(ctx context.Context, id domain.UserID) (*domain.User, error)
}

type RoomStore interface {
	CreateRoom(ctx context.Context, admin domain.UserID, password string) (*domain.Room, error)
	FindRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	AddParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) (*domain.Room, error)
}

type ChatStore interface {
	FindChat(ctx context.Context, id domain.ChatID) (*domain.Chat, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, msg *domain.Message) error
	FindMessage(ctx context.Context, id domain.MessageID) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id domain.MessageID) error
}
