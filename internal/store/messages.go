package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

func (s *Store) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if _, err := s.messages().InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("%w: insert message: %v", core.ErrInternal, err)
	}
	// Chat keeps a pointer to its latest message for list views.
	_, err := s.chats().UpdateOne(ctx,
		bson.M{"_id": msg.Chat},
		bson.M{"$set": bson.M{"lastMessage": msg.ID, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("%w: update last message: %v", core.ErrInternal, err)
	}
	return nil
}

func (s *Store) FindMessage(ctx context.Context, id domain.MessageID) (*domain.Message, error) {
	var msg domain.Message
	err := s.messages().FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: message %s", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find message: %v", core.ErrInternal, err)
	}
	return &msg, nil
}

func (s *Store) DeleteMessage(ctx context.Context, id domain.MessageID) error {
	res, err := s.messages().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: delete message: %v", core.ErrInternal, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: message %s", core.ErrNotFound, id)
	}
	return nil
}
