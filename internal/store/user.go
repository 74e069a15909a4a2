package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"shaheen-admin/internal/model"
	"shaheen-admin/internal/normalize"
)

type UserStore struct {
	users *mongo.Collection
}

func NewUserStore(db *MongoDB) *UserStore {
	return &UserStore{users: db.Collection(model.UserCollection)}
}

// Get returns the volunteer profile, or nil if not found.
func (s *UserStore) Get(ctx context.Context, id string) (*model.Volunteer, error) {
	var doc bson.M
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	v := volunteerOf(doc)
	return &v, nil
}

func (s *UserStore) List(ctx context.Context) ([]model.Volunteer, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	results := make([]model.Volunteer, 0, len(docs))
	for _, doc := range docs {
		results = append(results, volunteerOf(doc))
	}
	return results, nil
}

// GetMany returns the profiles found among ids, keyed by id.
func (s *UserStore) GetMany(ctx context.Context, ids []string) (map[string]*model.Volunteer, error) {
	out := make(map[string]*model.Volunteer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	for _, doc := range docs {
		v := volunteerOf(doc)
		out[v.ID] = &v
	}
	return out, nil
}

func volunteerOf(doc bson.M) model.Volunteer {
	data, _ := plain(doc).(map[string]any)
	id := text(data["_id"])
	if oid, ok := data["_id"].(bson.ObjectID); ok {
		id = oid.Hex()
	}
	return normalize.Volunteer(id, data)
}
