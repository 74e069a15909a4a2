package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"shaheen-admin/internal/model"
)

type MasjidStore struct {
	masjids *mongo.Collection
}

func NewMasjidStore(db *MongoDB) *MasjidStore {
	return &MasjidStore{masjids: db.Collection(model.MasjidCollection)}
}

// Upsert replaces the masjid document with the same ID or creates it.
func (s *MasjidStore) Upsert(ctx context.Context, m model.Masjid) error {
	_, err := s.masjids.ReplaceOne(ctx, bson.M{"_id": m.ID}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert masjid %s: %w", m.ID, err)
	}
	return nil
}

type WinnerStore struct {
	winners    *mongo.Collection
	volunteers *mongo.Collection
}

func NewWinnerStore(db *MongoDB) *WinnerStore {
	return &WinnerStore{
		winners:    db.Collection(model.WinnerCollection),
		volunteers: db.Collection(model.VolunteerWinnerCollection),
	}
}

func (s *WinnerStore) List(ctx context.Context) ([]*model.Winner, error) {
	cursor, err := s.winners.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find winners: %w", err)
	}
	var results []*model.Winner
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode winners: %w", err)
	}
	return results, nil
}

func (s *WinnerStore) VolunteerIDs(ctx context.Context) ([]string, error) {
	cursor, err := s.volunteers.Find(ctx, bson.M{"type": "volunteer"})
	if err != nil {
		return nil, fmt.Errorf("find volunteer winners: %w", err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode volunteer winners: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, text(doc["id"]))
	}
	return ids, nil
}
