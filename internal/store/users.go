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

// FindUser fetches the identity referenced by a verified credential subject.
// domain.User carries no credential fields, so nothing sensitive decodes.
func (s *Store) FindUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %v", core.ErrInternal, err)
	}
	return &user, nil
}
