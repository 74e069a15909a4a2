package model

import (
	"time"
)

const (
	AttendanceCollection = "Attendance"

	// SystemTrackerID marks events recorded without a volunteer.
	SystemTrackerID   = "system"
	SystemTrackerName = "Unknown"
)

// TrackedBy identifies who logged an attendance event.
type TrackedBy struct {
	UserID string `bson:"userId" json:"user_id"`
	Name   string `bson:"name" json:"name"`
}

// MasjidDetails is the affiliated-location snapshot carried by students, events and certificates.
type MasjidDetails struct {
	MasjidID      string `bson:"masjidId,omitempty" json:"masjid_id"`
	MasjidName    string `bson:"masjidName,omitempty" json:"masjid_name"`
	ClusterNumber any    `bson:"clusterNumber,omitempty" json:"cluster_number"`
}

type AttendanceEvent struct {
	ID             string        `bson:"_id" json:"id"` // studentId_YYYY-MM-DD
	StudentID      string        `bson:"studentId" json:"student_id"`
	AttendanceTime time.Time     `bson:"attendance_time" json:"attendance_time"`
	Name           string        `bson:"name" json:"name"`
	DisplayName    string        `bson:"displayName" json:"display_name"`
	Class          string        `bson:"class,omitempty" json:"class"`
	Section        string        `bson:"section,omitempty" json:"section"`
	School         string        `bson:"school,omitempty" json:"school"`
	GuardianNumber string        `bson:"guardianNumber,omitempty" json:"guardian_number"`
	MasjidDetails  MasjidDetails `bson:"masjid_details" json:"masjid_details"`
	TrackedBy      TrackedBy     `bson:"tracked_by" json:"tracked_by"`
}

// AttendanceKey returns the canonical document key for a student's attendance on a local day.
func AttendanceKey(studentID, day string) string {
	return studentID + "_" + day
}

// NewAttendanceEvent denormalizes the student's context onto an event for the given instant.
// day is the local calendar day of at, formatted YYYY-MM-DD.
func NewAttendanceEvent(s *Student, at time.Time, day string) *AttendanceEvent {
	return &AttendanceEvent{
		ID:             AttendanceKey(s.ID, day),
		StudentID:      s.ID,
		AttendanceTime: at,
		Name:           s.Name,
		DisplayName:    s.Name,
		Class:          s.Class,
		Section:        s.Section,
		School:         s.SchoolName,
		GuardianNumber: s.GuardianNumber,
		MasjidDetails:  s.MasjidDetails,
		TrackedBy:      s.Tracker(),
	}
}
