package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"shaheen-admin/internal/model"
)

type StudentStore struct {
	students *mongo.Collection
}

func NewStudentStore(db *MongoDB) *StudentStore {
	return &StudentStore{students: db.Collection(model.StudentCollection)}
}

// Get returns the student, or nil if not found.
func (s *StudentStore) Get(ctx context.Context, id string) (*model.Student, error) {
	var st model.Student
	err := s.students.FindOne(ctx, bson.M{"_id": id}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &st, nil
}

// GetMany returns the students found for ids, keyed by id. Missing ids are absent.
func (s *StudentStore) GetMany(ctx context.Context, ids []string) (map[string]*model.Student, error) {
	out := make(map[string]*model.Student, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.students.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}
	var results []*model.Student
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	for _, st := range results {
		out[st.ID] = st
	}
	return out, nil
}

func (s *StudentStore) List(ctx context.Context) ([]*model.Student, error) {
	cursor, err := s.students.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}
	var results []*model.Student
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return results, nil
}

// ApplyStreak writes the streak only if the stored streak_count is below u.Count.
// It reports whether the write matched.
func (s *StudentStore) ApplyStreak(ctx context.Context, id string, u model.StreakUpdate) (bool, error) {
	set := bson.M{"streak": u.Streak, "streak_count": u.Count, "streak_last_modified": u.At}
	res, err := s.students.UpdateOne(ctx, bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"streak_count": bson.M{"$lt": u.Count}},
			bson.M{"streak_count": bson.M{"$exists": false}},
		},
	}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update streak: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// ResetStreak clears the streak after the student's attendance was deleted.
func (s *StudentStore) ResetStreak(ctx context.Context, id string, at time.Time) error {
	res, err := s.students.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"streak":               0,
			"streak_count":         0,
			"streak_last_modified": at,
		},
		"$inc": bson.M{"streak_epoch": 1},
	})
	if err != nil {
		return fmt.Errorf("reset streak: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("reset streak %s: %w", id, model.ErrNotFound)
	}
	return nil
}
