package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

func (s *Store) FindChat(ctx context.Context, id domain.ChatID) (*domain.Chat, error) {
	var chat domain.Chat
	err := s.chats().FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: chat %s", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find chat: %v", core.ErrInternal, err)
	}
	return &chat, nil
}
