package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"shaheen-admin/internal/model"
)

type AttendanceStore struct {
	attendance *mongo.Collection
	// loc reads stored timestamps that carry no offset.
	loc *time.Location
}

func NewAttendanceStore(ctx context.Context, db *MongoDB, loc *time.Location) (*AttendanceStore, error) {
	attendance := db.Collection(model.AttendanceCollection)

	if _, err := attendance.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "attendance_time", Value: -1}}},
		{Keys: bson.D{{Key: "attendance_time", Value: 1}}},
		{Keys: bson.D{{Key: "tracked_by.userId", Value: 1}, {Key: "attendance_time", Value: -1}}},
	}); err != nil {
		return nil, fmt.Errorf("create attendance indexes: %w", err)
	}

	return &AttendanceStore{attendance: attendance, loc: loc}, nil
}

// attendanceDoc mirrors model.AttendanceEvent with a loosely typed timestamp,
// since older documents store attendance_time as a string.
type attendanceDoc struct {
	ID             string              `bson:"_id"`
	StudentID      string              `bson:"studentId"`
	AttendanceTime any                 `bson:"attendance_time"`
	Name           string              `bson:"name"`
	DisplayName    string              `bson:"displayName"`
	Class          any                 `bson:"class"`
	Section        any                 `bson:"section"`
	School         string              `bson:"school"`
	GuardianNumber any                 `bson:"guardianNumber"`
	MasjidDetails  model.MasjidDetails `bson:"masjid_details"`
	TrackedBy      model.TrackedBy     `bson:"tracked_by"`
}

func (d *attendanceDoc) event(loc *time.Location) (*model.AttendanceEvent, error) {
	at, err := model.ParseTimestamp(d.AttendanceTime, loc)
	if err != nil {
		return nil, fmt.Errorf("attendance %s: %w", d.ID, err)
	}
	return &model.AttendanceEvent{
		ID:             d.ID,
		StudentID:      d.StudentID,
		AttendanceTime: at,
		Name:           d.Name,
		DisplayName:    d.DisplayName,
		Class:          text(d.Class),
		Section:        text(d.Section),
		School:         d.School,
		GuardianNumber: text(d.GuardianNumber),
		MasjidDetails:  d.MasjidDetails,
		TrackedBy:      d.TrackedBy,
	}, nil
}

// Get returns the event stored under key, or nil if not found.
func (s *AttendanceStore) Get(ctx context.Context, key string) (*model.AttendanceEvent, error) {
	var doc attendanceDoc
	err := s.attendance.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return doc.event(s.loc)
}

// Insert creates the event. An existing key yields model.ErrDuplicateWrite.
func (s *AttendanceStore) Insert(ctx context.Context, evt *model.AttendanceEvent) error {
	if _, err := s.attendance.InsertOne(ctx, evt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert attendance %s: %w", evt.ID, model.ErrDuplicateWrite)
		}
		return fmt.Errorf("insert attendance %s: %w", evt.ID, err)
	}
	return nil
}

// InsertMany writes events unordered and returns the keys that were created.
// Events whose key already exists are skipped.
func (s *AttendanceStore) InsertMany(ctx context.Context, evts []*model.AttendanceEvent) ([]string, error) {
	if len(evts) == 0 {
		return nil, nil
	}
	docs := make([]any, len(evts))
	for i, e := range evts {
		docs[i] = e
	}
	_, err := s.attendance.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	failed := make(map[int]bool)
	if err != nil {
		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) || bwe.WriteConcernError != nil {
			return nil, fmt.Errorf("insert attendance batch: %w", err)
		}
		for _, we := range bwe.WriteErrors {
			if !isDuplicateCode(we.Code) {
				return nil, fmt.Errorf("insert attendance batch: %w", err)
			}
			failed[we.Index] = true
		}
	}
	created := make([]string, 0, len(evts))
	for i, e := range evts {
		if !failed[i] {
			created = append(created, e.ID)
		}
	}
	return created, nil
}

func (s *AttendanceStore) CountByStudent(ctx context.Context, studentID string) (int64, error) {
	n, err := s.attendance.CountDocuments(ctx, bson.M{"studentId": studentID})
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return n, nil
}

// Latest returns the student's most recent event, or nil if there is none.
func (s *AttendanceStore) Latest(ctx context.Context, studentID string) (*model.AttendanceEvent, error) {
	evts, err := s.find(ctx, bson.M{"studentId": studentID},
		options.Find().SetSort(bson.D{{Key: "attendance_time", Value: -1}}).SetLimit(5))
	if err != nil {
		return nil, err
	}
	if len(evts) == 0 {
		return nil, nil
	}
	return evts[0], nil
}

// ListByStudent returns every readable event for the student, oldest first.
func (s *AttendanceStore) ListByStudent(ctx context.Context, studentID string) ([]*model.AttendanceEvent, error) {
	return s.find(ctx, bson.M{"studentId": studentID},
		options.Find().SetSort(bson.D{{Key: "attendance_time", Value: 1}}))
}

// ListBetween returns events with from <= attendance_time < to.
func (s *AttendanceStore) ListBetween(ctx context.Context, from, to time.Time) ([]*model.AttendanceEvent, error) {
	return s.find(ctx, bson.M{"attendance_time": bson.M{"$gte": from, "$lt": to}}, options.Find())
}

// ListByTracker returns events logged by the user since from, newest first.
func (s *AttendanceStore) ListByTracker(ctx context.Context, userID string, from time.Time) ([]*model.AttendanceEvent, error) {
	return s.find(ctx, bson.M{
		"tracked_by.userId": userID,
		"attendance_time":   bson.M{"$gte": from},
	}, options.Find().SetSort(bson.D{{Key: "attendance_time", Value: -1}}))
}

func (s *AttendanceStore) DeleteByStudent(ctx context.Context, studentID string) (int64, error) {
	res, err := s.attendance.DeleteMany(ctx, bson.M{"studentId": studentID})
	if err != nil {
		return 0, fmt.Errorf("delete attendance: %w", err)
	}
	return res.DeletedCount, nil
}

// find decodes matching events, logging and skipping those with an unreadable timestamp.
func (s *AttendanceStore) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*model.AttendanceEvent, error) {
	cursor, err := s.attendance.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*model.AttendanceEvent
	for cursor.Next(ctx) {
		var doc attendanceDoc
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("WARN skip attendance document: %v", err)
			continue
		}
		evt, err := doc.event(s.loc)
		if err != nil {
			log.Printf("WARN skip %v", err)
			continue
		}
		results = append(results, evt)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return results, nil
}
