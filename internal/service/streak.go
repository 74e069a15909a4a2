package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"shaheen-admin/internal/chilla"
	"shaheen-admin/internal/model"
)

// StreakResult describes one application of the streak rule.
type StreakResult struct {
	StudentID string
	Total     int64
	Step      chilla.Step
	// Applied is false when the stored streak already reflects Total or a later count.
	Applied     bool
	Certificate *model.Certificate
	Issued      bool
}

type StreakService struct {
	students   StudentStore
	attendance AttendanceStore
	certs      *CertificateService
	tx         Transactor
	modulo     int
	now        func() time.Time
}

func NewStreakService(students StudentStore, attendance AttendanceStore, certs *CertificateService, tx Transactor, modulo int) *StreakService {
	return &StreakService{
		students:   students,
		attendance: attendance,
		certs:      certs,
		tx:         tx,
		modulo:     modulo,
		now:        time.Now,
	}
}

// Refresh counts the student's attendance and applies the streak rule to it.
func (s *StreakService) Refresh(ctx context.Context, studentID string) (*StreakResult, error) {
	var res *StreakResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		total, err := s.attendance.CountByStudent(ctx, studentID)
		if err != nil {
			return fmt.Errorf("count attendance: %w", err)
		}
		res, err = s.apply(ctx, studentID, total)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Apply applies the streak rule for a known total count.
func (s *StreakService) Apply(ctx context.Context, studentID string, total int64) (*StreakResult, error) {
	var res *StreakResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.apply(ctx, studentID, total)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// apply issues the cycle certificate before writing the streak, so a failed
// issue leaves the streak untouched and a retry completes both.
func (s *StreakService) apply(ctx context.Context, studentID string, total int64) (*StreakResult, error) {
	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("student %s: %w", studentID, model.ErrNotFound)
	}

	res := &StreakResult{StudentID: studentID, Total: total, Step: chilla.Advance(total, s.modulo)}

	if res.Step.Completed {
		latest, err := s.attendance.Latest(ctx, studentID)
		if err != nil {
			return nil, fmt.Errorf("get latest attendance: %w", err)
		}
		if latest == nil {
			return nil, fmt.Errorf("student %s: %w", studentID, model.ErrNoAttendanceRecords)
		}
		res.Certificate, res.Issued, err = s.certs.IssueStudent(ctx, st, latest, res.Step.Cycle)
		if err != nil {
			return nil, err
		}
		if res.Issued {
			log.Printf("Certificate issued: student=%s cycle=%d", studentID, res.Step.Cycle)
		}
	}

	res.Applied, err = s.students.ApplyStreak(ctx, studentID, model.StreakUpdate{
		Streak: res.Step.Streak,
		Count:  total,
		At:     s.now(),
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
