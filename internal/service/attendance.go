package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"shaheen-admin/internal/chilla"
	"shaheen-admin/internal/model"
)

type AttendanceService struct {
	students   StudentStore
	attendance AttendanceStore
	streaks    *StreakService
	cal        chilla.Calendar
	now        func() time.Time
	// backfillTime picks the local time of day for a backfilled event.
	backfillTime func() time.Duration
}

func NewAttendanceService(students StudentStore, attendance AttendanceStore, streaks *StreakService, cal chilla.Calendar) *AttendanceService {
	return &AttendanceService{
		students:     students,
		attendance:   attendance,
		streaks:      streaks,
		cal:          cal,
		now:          time.Now,
		backfillTime: randomFajrTime,
	}
}

// randomFajrTime returns a time between 05:00:00 and 05:59:59.
func randomFajrTime() time.Duration {
	return 5*time.Hour + time.Duration(rand.Intn(3600))*time.Second
}

type RecordResult struct {
	Event   *model.AttendanceEvent
	Created bool
	Streak  *StreakResult
}

// Record logs attendance for the current local day. An existing event for the day
// is kept; the streak is refreshed either way.
func (s *AttendanceService) Record(ctx context.Context, studentID string) (*RecordResult, error) {
	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("student %s: %w", studentID, model.ErrNotFound)
	}

	now := s.now()
	res := &RecordResult{Event: model.NewAttendanceEvent(st, now, s.cal.DayKey(now))}
	switch err := s.attendance.Insert(ctx, res.Event); {
	case err == nil:
		res.Created = true
	case errors.Is(err, model.ErrDuplicateWrite):
		log.Printf("Attendance already recorded: %s", res.Event.ID)
	default:
		return nil, err
	}

	if res.Streak, err = s.streaks.Refresh(ctx, studentID); err != nil {
		return nil, fmt.Errorf("refresh streak: %w", err)
	}
	return res, nil
}

type BackfillSummary struct {
	Days    int
	Created int
	Skipped int
	Missing []string
	Failed  int
}

// Backfill records one event per student for every local day from start through end.
// Days that already have an event are skipped. Failures are logged per student.
func (s *AttendanceService) Backfill(ctx context.Context, studentIDs []string, start, end chilla.Date) (*BackfillSummary, error) {
	days := chilla.DaysBetweenInclusive(start, end)
	if days == 0 {
		return nil, fmt.Errorf("backfill %s to %s: empty range", start, end)
	}

	found, err := s.students.GetMany(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("get students: %w", err)
	}
	sum := &BackfillSummary{Days: days}
	var students []*model.Student
	for _, id := range studentIDs {
		st, ok := found[id]
		if !ok {
			log.Printf("WARN student not found: %s", id)
			sum.Missing = append(sum.Missing, id)
			continue
		}
		students = append(students, st)
	}

	for i := 0; i < days; i++ {
		day := start.AddDays(i)
		base := s.cal.Midnight(day)
		evts := make([]*model.AttendanceEvent, 0, len(students))
		owner := make(map[string]string, len(students))
		for _, st := range students {
			evt := model.NewAttendanceEvent(st, base.Add(s.backfillTime()), day.String())
			evts = append(evts, evt)
			owner[evt.ID] = st.ID
		}

		created, err := s.attendance.InsertMany(ctx, evts)
		if err != nil {
			return sum, fmt.Errorf("backfill %s: %w", day, err)
		}
		sum.Created += len(created)
		sum.Skipped += len(evts) - len(created)

		for _, key := range created {
			studentID := owner[key]
			if _, err := s.streaks.Refresh(ctx, studentID); err != nil {
				log.Printf("ERROR refresh streak for %s: %v", studentID, err)
				sum.Failed++
			}
		}
		log.Printf("Backfilled %s: %d created, %d skipped", day, len(created), len(evts)-len(created))
	}
	return sum, nil
}

type DeleteSummary struct {
	Students int
	Events   int64
	Failed   int
}

// DeleteAll removes every event of each student and resets the streak.
func (s *AttendanceService) DeleteAll(ctx context.Context, studentIDs []string) *DeleteSummary {
	sum := &DeleteSummary{}
	for _, id := range studentIDs {
		n, err := s.attendance.DeleteByStudent(ctx, id)
		if err != nil {
			log.Printf("ERROR delete attendance for %s: %v", id, err)
			sum.Failed++
			continue
		}
		if err := s.students.ResetStreak(ctx, id, s.now()); err != nil {
			log.Printf("ERROR reset streak for %s: %v", id, err)
			sum.Failed++
			continue
		}
		log.Printf("Deleted %d attendance records for %s", n, id)
		sum.Students++
		sum.Events += n
	}
	return sum
}

// CalendarDay is one row of a student's attendance history.
type CalendarDay struct {
	Day     string
	Present bool
	At      time.Time
}

// History lists every local day from start through end with the first event of each day.
func (s *AttendanceService) History(ctx context.Context, studentID string, start, end chilla.Date) (*model.Student, []CalendarDay, error) {
	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("get student: %w", err)
	}
	if st == nil {
		return nil, nil, fmt.Errorf("student %s: %w", studentID, model.ErrNotFound)
	}
	evts, err := s.attendance.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	first := make(map[string]time.Time)
	for _, e := range evts {
		key := s.cal.DayKey(e.AttendanceTime)
		if t, ok := first[key]; !ok || e.AttendanceTime.Before(t) {
			first[key] = e.AttendanceTime
		}
	}

	p := chilla.Period{Start: start, End: end}
	var days []CalendarDay
	for _, key := range s.cal.DayKeys(p) {
		at, ok := first[key]
		days = append(days, CalendarDay{Day: key, Present: ok, At: at})
	}
	return st, days, nil
}
