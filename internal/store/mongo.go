// Package store is the MongoDB persistence layer for rooms, users, chats
// and messages. Every operation is a single atomic call; there are no
// multi-document transactions.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxPoolSize = 20

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetMaxPoolSize(maxPoolSize))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Info().Str("module", "store").Str("db", dbName).Msg("mongo connected")
	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) rooms() *mongo.Collection    { return s.db.Collection("rooms") }
func (s *Store) users() *mongo.Collection    { return s.db.Collection("users") }
func (s *Store) chats() *mongo.Collection    { return s.db.Collection("chats") }
func (s *Store) messages() *mongo.Collection { return s.db.Collection("chatmessages") }
