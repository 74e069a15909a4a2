package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestParseTimestamp(t *testing.T) {
	ist := time.FixedZone("IST", 330*60)
	want := time.Date(2025, 8, 1, 5, 30, 0, 0, ist)

	tests := []struct {
		name    string
		in      any
		want    time.Time
		wantErr bool
	}{
		{name: "time", in: want, want: want},
		{name: "datetime", in: bson.NewDateTimeFromTime(want), want: want},
		{name: "rfc3339", in: "2025-08-01T05:30:00+05:30", want: want},
		{name: "naive string uses location", in: "2025-08-01 05:30:00", want: want},
		{name: "bson timestamp", in: bson.Timestamp{T: uint32(want.Unix())}, want: want},
		{name: "nil", in: nil, wantErr: true},
		{name: "garbage", in: "yesterday", wantErr: true},
		{name: "number", in: 42, wantErr: true},
		{name: "zero time", in: time.Time{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in, ist)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTimestamp)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestStudentTracker(t *testing.T) {
	s := &Student{ID: "s1"}
	assert.Equal(t, TrackedBy{UserID: SystemTrackerID, Name: SystemTrackerName}, s.Tracker())

	s.Volunteer = &StudentVolunteer{VolunteerID: "v1"}
	assert.Equal(t, TrackedBy{UserID: "v1", Name: SystemTrackerName}, s.Tracker())

	s.Volunteer.VolunteerName = "Imran"
	assert.Equal(t, TrackedBy{UserID: "v1", Name: "Imran"}, s.Tracker())
}

func TestNewAttendanceEvent(t *testing.T) {
	at := time.Date(2025, 8, 3, 0, 15, 0, 0, time.UTC)
	s := &Student{
		ID:             "s1",
		Name:           "Ayaan",
		Class:          "5",
		GuardianNumber: "999",
		MasjidDetails:  MasjidDetails{MasjidID: "m1", MasjidName: "Noor", ClusterNumber: 4},
	}

	evt := NewAttendanceEvent(s, at, "2025-08-03")

	assert.Equal(t, "s1_2025-08-03", evt.ID)
	assert.Equal(t, "Ayaan", evt.DisplayName)
	assert.Equal(t, "Noor", evt.MasjidDetails.MasjidName)
	assert.Equal(t, SystemTrackerID, evt.TrackedBy.UserID)
	assert.True(t, at.Equal(evt.AttendanceTime))
}
