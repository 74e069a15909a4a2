package model

import (
	"time"
)

const StudentCollection = "students"

// StudentVolunteer is the volunteer assigned to a student at registration.
type StudentVolunteer struct {
	VolunteerID   string `bson:"volunteerId,omitempty" json:"volunteer_id"`
	VolunteerName string `bson:"volunteerName,omitempty" json:"volunteer_name"`
}

type Student struct {
	ID                     string            `bson:"_id" json:"id"`
	Name                   string            `bson:"name" json:"name"`
	Class                  string            `bson:"class,omitempty" json:"class"`
	Section                string            `bson:"section,omitempty" json:"section"`
	SchoolName             string            `bson:"school_name,omitempty" json:"school_name"`
	GuardianName           string            `bson:"guardianName,omitempty" json:"guardian_name"`
	GuardianNumber         string            `bson:"guardianNumber,omitempty" json:"guardian_number"`
	DOB                    *time.Time        `bson:"dob,omitempty" json:"dob"`
	MasjidDetails          MasjidDetails     `bson:"masjid_details" json:"masjid_details"`
	Volunteer              *StudentVolunteer `bson:"volunteer,omitempty" json:"volunteer"`
	SpecialProgramEligible bool              `bson:"special_program_eligible,omitempty" json:"special_program_eligible"`

	// Streak state, written only by the streak service.
	Streak             int        `bson:"streak" json:"streak"`
	StreakLastModified *time.Time `bson:"streak_last_modified,omitempty" json:"streak_last_modified"`
	StreakCount        int64      `bson:"streak_count,omitempty" json:"streak_count"`
	// StreakEpoch counts streak resets.
	StreakEpoch int64 `bson:"streak_epoch,omitempty" json:"streak_epoch"`
}

// Tracker returns the volunteer recorded on new events, defaulting to the system sentinel.
func (s *Student) Tracker() TrackedBy {
	t := TrackedBy{UserID: SystemTrackerID, Name: SystemTrackerName}
	if s.Volunteer != nil {
		if s.Volunteer.VolunteerID != "" {
			t.UserID = s.Volunteer.VolunteerID
		}
		if s.Volunteer.VolunteerName != "" {
			t.Name = s.Volunteer.VolunteerName
		}
	}
	return t
}

// StreakUpdate is a conditional streak write: it applies only when the stored
// StreakCount is lower than Count. At becomes streak_last_modified.
type StreakUpdate struct {
	Streak int
	Count  int64
	At     time.Time
}
