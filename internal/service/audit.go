package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shaheen-admin/internal/model"
	"shaheen-admin/internal/normalize"
)

// AuditService answers "what did this volunteer record" questions.
type AuditService struct {
	volunteers VolunteerStore
	attendance AttendanceStore
}

func NewAuditService(volunteers VolunteerStore, attendance AttendanceStore) *AuditService {
	return &AuditService{volunteers: volunteers, attendance: attendance}
}

// FindVolunteers returns volunteers whose name contains fragment, ignoring case and accents.
func (s *AuditService) FindVolunteers(ctx context.Context, fragment string) ([]model.Volunteer, error) {
	needle := normalize.Fold(fragment)
	if needle == "" {
		return nil, fmt.Errorf("empty volunteer name")
	}
	all, err := s.volunteers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	var out []model.Volunteer
	for _, v := range all {
		if strings.Contains(normalize.Fold(v.Name), needle) {
			out = append(out, v)
		}
	}
	sortByLocation(out, func(v model.Volunteer) (string, string, string) { return v.Name, v.Masjid, v.ID })
	return out, nil
}

// Activity lists events recorded by the volunteer since from, newest first.
func (s *AuditService) Activity(ctx context.Context, volunteerID string, from time.Time) ([]*model.AttendanceEvent, error) {
	evts, err := s.attendance.ListByTracker(ctx, volunteerID, from)
	if err != nil {
		return nil, fmt.Errorf("list attendance by %s: %w", volunteerID, err)
	}
	return evts, nil
}
