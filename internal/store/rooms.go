package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/rsinha/huddle/internal/core"
	"github.com/rsinha/huddle/internal/domain"
)

const roomIDLen = 12

// CreateRoom inserts a fresh active room with the caller as admin. An
// optional password is stored bcrypt-hashed, never in the clear.
func (s *Store) CreateRoom(ctx context.Context, admin domain.UserID, password string) (*domain.Room, error) {
	now := time.Now().UTC()
	room := &domain.Room{
		RoomID:       domain.RoomID(uuid.NewString()[:roomIDLen]),
		Admin:        admin,
		Participants: []domain.UserID{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%w: hash room password: %v", core.ErrInternal, err)
		}
		room.Password = string(hash)
	}
	if _, err := s.rooms().InsertOne(ctx, room); err != nil {
		return nil, fmt.Errorf("%w: insert room: %v", core.ErrInternal, err)
	}
	return room, nil
}

func (s *Store) FindRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var room domain.Room
	err := s.rooms().FindOne(ctx, bson.M{"roomId": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: room %s", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find room: %v", core.ErrInternal, err)
	}
	return &room, nil
}

// AddParticipant unions the user into the participant set. $addToSet makes
// the call idempotent: duplicate approvals and retries converge on the same
// document.
func (s *Store) AddParticipant(ctx context.Context, id domain.RoomID, user domain.UserID) (*domain.Room, error) {
	var room domain.Room
	err := s.rooms().FindOneAndUpdate(ctx,
		bson.M{"roomId": id},
		bson.M{
			"$addToSet": bson.M{"participants": user},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: room %s", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: add participant: %v", core.ErrInternal, err)
	}
	return &room, nil
}

// ComparePassword checks a cleartext password against the room's hash.
func ComparePassword(room *domain.Room, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(room.Password), []byte(password)); err != nil {
		return fmt.Errorf("%w: invalid room password", core.ErrUnauthorized)
	}
	return nil
}
