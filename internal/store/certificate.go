package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"shaheen-admin/internal/model"
)

type CertificateStore struct {
	students   *mongo.Collection
	volunteers *mongo.Collection
}

func NewCertificateStore(ctx context.Context, db *MongoDB) (*CertificateStore, error) {
	students := db.Collection(model.CertificateCollection)
	volunteers := db.Collection(model.VolunteerCertificateCollection)

	if _, err := students.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "studentId", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create certificates indexes: %w", err)
	}
	if _, err := volunteers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "period", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create volunteer_certificates indexes: %w", err)
	}

	return &CertificateStore{students: students, volunteers: volunteers}, nil
}

func (s *CertificateStore) collection(kind model.CertificateKind) *mongo.Collection {
	if kind == model.CertificateKindVolunteer {
		return s.volunteers
	}
	return s.students
}

func (s *CertificateStore) Get(ctx context.Context, kind model.CertificateKind, id string) (*model.Certificate, error) {
	var doc certificateDoc
	err := s.collection(kind).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find certificate %s: %w", id, err)
	}
	return doc.certificate(kind), nil
}

// Insert creates the certificate. An existing ID yields model.ErrDuplicateWrite.
//
// The write is an upsert with $setOnInsert so an existing certificate matches
// instead of raising a duplicate key error, which would abort a surrounding
// transaction.
func (s *CertificateStore) Insert(ctx context.Context, c *model.Certificate) error {
	fields, err := insertFields(c)
	if err != nil {
		return fmt.Errorf("encode certificate %s: %w", c.IdempotencyKey, err)
	}
	res, err := s.collection(c.Kind).UpdateOne(ctx,
		bson.M{"_id": c.ID},
		bson.M{"$setOnInsert": fields},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert certificate %s: %w", c.IdempotencyKey, model.ErrDuplicateWrite)
		}
		return fmt.Errorf("insert certificate %s: %w", c.IdempotencyKey, err)
	}
	if res.UpsertedCount == 0 {
		return fmt.Errorf("insert certificate %s: %w", c.IdempotencyKey, model.ErrDuplicateWrite)
	}
	return nil
}

// insertFields encodes c without its _id, which the upsert filter supplies.
func insertFields(c *model.Certificate) (bson.D, error) {
	raw, err := bson.Marshal(c)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	fields := doc[:0]
	for _, e := range doc {
		if e.Key != "_id" {
			fields = append(fields, e)
		}
	}
	return fields, nil
}

func (s *CertificateStore) List(ctx context.Context, kind model.CertificateKind) ([]*model.Certificate, error) {
	cursor, err := s.collection(kind).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find certificates: %w", err)
	}
	var docs []certificateDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode certificates: %w", err)
	}
	results := make([]*model.Certificate, 0, len(docs))
	for i := range docs {
		results = append(results, docs[i].certificate(kind))
	}
	return results, nil
}

// certificateDoc reads certificates written before ids and keys were derived,
// whose _id may be an ObjectID and whose time may be missing.
type certificateDoc struct {
	ID             any                 `bson:"_id"`
	IdempotencyKey string              `bson:"idempotency_key"`
	StudentID      string              `bson:"studentId"`
	Name           string              `bson:"name"`
	GuardianNumber any                 `bson:"guardianNumber"`
	MasjidDetails  model.MasjidDetails `bson:"masjid_details"`
	DOB            any                 `bson:"dob"`
	Time           any                 `bson:"time"`
	SpecialProgram bool                `bson:"special_program"`
	Cycle          int64               `bson:"cycle"`
	Epoch          int64               `bson:"epoch"`
	Period         string              `bson:"period"`
	Percentage     float64             `bson:"percentage"`
}

func (d *certificateDoc) certificate(kind model.CertificateKind) *model.Certificate {
	c := &model.Certificate{
		IdempotencyKey: d.IdempotencyKey,
		Kind:           kind,
		StudentID:      d.StudentID,
		Name:           d.Name,
		GuardianNumber: text(d.GuardianNumber),
		MasjidDetails:  d.MasjidDetails,
		SpecialProgram: d.SpecialProgram,
		Cycle:          d.Cycle,
		Epoch:          d.Epoch,
		Period:         d.Period,
		Percentage:     d.Percentage,
	}
	switch id := d.ID.(type) {
	case bson.ObjectID:
		c.ID = id.Hex()
	default:
		c.ID = text(id)
	}
	// A missing issue time is left zero and reported as blank.
	if t, err := model.ParseTimestamp(d.Time, nil); err == nil {
		c.Time = t
	}
	if dob, err := model.ParseTimestamp(d.DOB, nil); err == nil {
		c.DOB = &dob
	}
	return c
}
