package model

import (
	"time"
)

const (
	CertificateCollection          = "certificates"
	VolunteerCertificateCollection = "volunteer_certificates"
)

type CertificateKind string

const (
	CertificateKindStudent   CertificateKind = "student"
	CertificateKindVolunteer CertificateKind = "volunteer"
)

// Certificate is an issued completion record. ID is derived from IdempotencyKey.
type Certificate struct {
	ID             string          `bson:"_id" json:"id"`
	IdempotencyKey string          `bson:"idempotency_key" json:"idempotency_key"`
	Kind           CertificateKind `bson:"kind" json:"kind"`
	StudentID      string          `bson:"studentId" json:"student_id"` // subject id, also for volunteers
	Name           string          `bson:"name" json:"name"`
	GuardianNumber string          `bson:"guardianNumber,omitempty" json:"guardian_number"`
	MasjidDetails  MasjidDetails   `bson:"masjid_details" json:"masjid_details"`
	DOB            *time.Time      `bson:"dob,omitempty" json:"dob"`
	Time           time.Time       `bson:"time" json:"time"` // triggering attendance instant
	SpecialProgram bool            `bson:"special_program" json:"special_program"`
	Cycle          int64           `bson:"cycle,omitempty" json:"cycle"`
	Epoch          int64           `bson:"epoch,omitempty" json:"epoch"`
	Period         string          `bson:"period,omitempty" json:"period"`
	Percentage     float64         `bson:"percentage,omitempty" json:"percentage"`
	CreatedAt      time.Time       `bson:"created_at" json:"created_at"`
}
