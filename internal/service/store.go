package service

import (
	"context"
	"time"

	"shaheen-admin/internal/model"
)

// Lookups return nil, nil when the document does not exist.

type StudentStore interface {
	Get(ctx context.Context, id string) (*model.Student, error)
	GetMany(ctx context.Context, ids []string) (map[string]*model.Student, error)
	List(ctx context.Context) ([]*model.Student, error)
	ApplyStreak(ctx context.Context, id string, u model.StreakUpdate) (bool, error)
	ResetStreak(ctx context.Context, id string, at time.Time) error
}

type AttendanceStore interface {
	Get(ctx context.Context, key string) (*model.AttendanceEvent, error)
	Insert(ctx context.Context, evt *model.AttendanceEvent) error
	InsertMany(ctx context.Context, evts []*model.AttendanceEvent) ([]string, error)
	CountByStudent(ctx context.Context, studentID string) (int64, error)
	Latest(ctx context.Context, studentID string) (*model.AttendanceEvent, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.AttendanceEvent, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*model.AttendanceEvent, error)
	ListByTracker(ctx context.Context, userID string, from time.Time) ([]*model.AttendanceEvent, error)
	DeleteByStudent(ctx context.Context, studentID string) (int64, error)
}

type CertificateStore interface {
	Get(ctx context.Context, kind model.CertificateKind, id string) (*model.Certificate, error)
	Insert(ctx context.Context, c *model.Certificate) error
	List(ctx context.Context, kind model.CertificateKind) ([]*model.Certificate, error)
}

type VolunteerStore interface {
	Get(ctx context.Context, id string) (*model.Volunteer, error)
	GetMany(ctx context.Context, ids []string) (map[string]*model.Volunteer, error)
	List(ctx context.Context) ([]model.Volunteer, error)
}

type MasjidStore interface {
	Upsert(ctx context.Context, m model.Masjid) error
}

type WinnerStore interface {
	List(ctx context.Context) ([]*model.Winner, error)
	// VolunteerIDs returns the id of every volunteer winner entry in stored
	// order, "" for entries without one.
	VolunteerIDs(ctx context.Context) ([]string, error)
}

// Transactor runs fn atomically where the backing store supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
