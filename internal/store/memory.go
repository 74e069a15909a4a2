package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"shaheen-admin/internal/model"
)

// Memory is an in-process store used by tests and dry runs. Each collection is
// reached through a view that satisfies the same contract as its MongoDB store.
type Memory struct {
	mu   sync.Mutex
	txMu sync.Mutex

	students   map[string]*model.Student
	attendance map[string]*model.AttendanceEvent
	certs      map[model.CertificateKind]map[string]*model.Certificate
	users      map[string]model.Volunteer
	masjids    map[string]model.Masjid
	winners    []*model.Winner
	volWinners []string
}

func NewMemory() *Memory {
	return &Memory{
		students:   make(map[string]*model.Student),
		attendance: make(map[string]*model.AttendanceEvent),
		certs: map[model.CertificateKind]map[string]*model.Certificate{
			model.CertificateKindStudent:   {},
			model.CertificateKindVolunteer: {},
		},
		users:   make(map[string]model.Volunteer),
		masjids: make(map[string]model.Masjid),
	}
}

// WithTransaction serializes fn against other transactions. Writes are not rolled back.
func (m *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

func (m *Memory) PutStudent(s model.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[s.ID] = &s
}

func (m *Memory) PutUser(v model.Volunteer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[v.ID] = v
}

func (m *Memory) PutWinner(w model.Winner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.winners = append(m.winners, &w)
}

// PutVolunteerWinner appends a volunteer winner entry; "" models an entry without an id.
func (m *Memory) PutVolunteerWinner(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volWinners = append(m.volWinners, id)
}

// PutAttendance stores the event, overwriting any existing key.
func (m *Memory) PutAttendance(e model.AttendanceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance[e.ID] = &e
}

func (m *Memory) Masjid(id string) (model.Masjid, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.masjids[id]
	return v, ok
}

func (m *Memory) Students() *MemoryStudents         { return &MemoryStudents{m} }
func (m *Memory) Attendance() *MemoryAttendance     { return &MemoryAttendance{m} }
func (m *Memory) Certificates() *MemoryCertificates { return &MemoryCertificates{m} }
func (m *Memory) Users() *MemoryUsers               { return &MemoryUsers{m} }
func (m *Memory) Masjids() *MemoryMasjids           { return &MemoryMasjids{m} }
func (m *Memory) Winners() *MemoryWinners           { return &MemoryWinners{m} }

type MemoryStudents struct{ m *Memory }

func (s *MemoryStudents) Get(_ context.Context, id string) (*model.Student, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	st, ok := s.m.students[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (s *MemoryStudents) GetMany(_ context.Context, ids []string) (map[string]*model.Student, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make(map[string]*model.Student, len(ids))
	for _, id := range ids {
		if st, ok := s.m.students[id]; ok {
			cp := *st
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *MemoryStudents) List(_ context.Context) ([]*model.Student, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]*model.Student, 0, len(s.m.students))
	for _, st := range s.m.students {
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStudents) ApplyStreak(_ context.Context, id string, u model.StreakUpdate) (bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	st, ok := s.m.students[id]
	if !ok || st.StreakCount >= u.Count {
		return false, nil
	}
	st.Streak = u.Streak
	st.StreakCount = u.Count
	at := u.At
	st.StreakLastModified = &at
	return true, nil
}

func (s *MemoryStudents) ResetStreak(_ context.Context, id string, at time.Time) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	st, ok := s.m.students[id]
	if !ok {
		return fmt.Errorf("reset streak %s: %w", id, model.ErrNotFound)
	}
	st.Streak = 0
	st.StreakCount = 0
	st.StreakEpoch++
	st.StreakLastModified = &at
	return nil
}

type MemoryAttendance struct{ m *Memory }

func (a *MemoryAttendance) Get(_ context.Context, key string) (*model.AttendanceEvent, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	e, ok := a.m.attendance[key]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (a *MemoryAttendance) Insert(_ context.Context, evt *model.AttendanceEvent) error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	if _, ok := a.m.attendance[evt.ID]; ok {
		return fmt.Errorf("insert attendance %s: %w", evt.ID, model.ErrDuplicateWrite)
	}
	cp := *evt
	a.m.attendance[evt.ID] = &cp
	return nil
}

func (a *MemoryAttendance) InsertMany(_ context.Context, evts []*model.AttendanceEvent) ([]string, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	var created []string
	for _, e := range evts {
		if _, ok := a.m.attendance[e.ID]; ok {
			continue
		}
		cp := *e
		a.m.attendance[e.ID] = &cp
		created = append(created, e.ID)
	}
	return created, nil
}

func (a *MemoryAttendance) CountByStudent(_ context.Context, studentID string) (int64, error) {
	return int64(len(a.filter(func(e *model.AttendanceEvent) bool { return e.StudentID == studentID }))), nil
}

func (a *MemoryAttendance) Latest(_ context.Context, studentID string) (*model.AttendanceEvent, error) {
	evts := a.filter(func(e *model.AttendanceEvent) bool { return e.StudentID == studentID })
	if len(evts) == 0 {
		return nil, nil
	}
	return evts[len(evts)-1], nil
}

func (a *MemoryAttendance) ListByStudent(_ context.Context, studentID string) ([]*model.AttendanceEvent, error) {
	return a.filter(func(e *model.AttendanceEvent) bool { return e.StudentID == studentID }), nil
}

func (a *MemoryAttendance) ListBetween(_ context.Context, from, to time.Time) ([]*model.AttendanceEvent, error) {
	return a.filter(func(e *model.AttendanceEvent) bool {
		return !e.AttendanceTime.Before(from) && e.AttendanceTime.Before(to)
	}), nil
}

func (a *MemoryAttendance) ListByTracker(_ context.Context, userID string, from time.Time) ([]*model.AttendanceEvent, error) {
	evts := a.filter(func(e *model.AttendanceEvent) bool {
		return e.TrackedBy.UserID == userID && !e.AttendanceTime.Before(from)
	})
	for i, j := 0, len(evts)-1; i < j; i, j = i+1, j-1 {
		evts[i], evts[j] = evts[j], evts[i]
	}
	return evts, nil
}

func (a *MemoryAttendance) DeleteByStudent(_ context.Context, studentID string) (int64, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	var n int64
	for k, e := range a.m.attendance {
		if e.StudentID == studentID {
			delete(a.m.attendance, k)
			n++
		}
	}
	return n, nil
}

// filter returns copies of matching events, oldest first.
func (a *MemoryAttendance) filter(keep func(*model.AttendanceEvent) bool) []*model.AttendanceEvent {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	var out []*model.AttendanceEvent
	for _, e := range a.m.attendance {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AttendanceTime.Equal(out[j].AttendanceTime) {
			return out[i].AttendanceTime.Before(out[j].AttendanceTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type MemoryCertificates struct{ m *Memory }

func (c *MemoryCertificates) Get(_ context.Context, kind model.CertificateKind, id string) (*model.Certificate, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	cert, ok := c.m.certs[kind][id]
	if !ok {
		return nil, nil
	}
	cp := *cert
	return &cp, nil
}

func (c *MemoryCertificates) Insert(_ context.Context, cert *model.Certificate) error {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	coll := c.m.certs[cert.Kind]
	if coll == nil {
		return fmt.Errorf("insert certificate %s: unknown kind %q", cert.IdempotencyKey, cert.Kind)
	}
	if _, ok := coll[cert.ID]; ok {
		return fmt.Errorf("insert certificate %s: %w", cert.IdempotencyKey, model.ErrDuplicateWrite)
	}
	cp := *cert
	coll[cert.ID] = &cp
	return nil
}

func (c *MemoryCertificates) List(_ context.Context, kind model.CertificateKind) ([]*model.Certificate, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	out := make([]*model.Certificate, 0, len(c.m.certs[kind]))
	for _, cert := range c.m.certs[kind] {
		cp := *cert
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type MemoryUsers struct{ m *Memory }

func (u *MemoryUsers) Get(_ context.Context, id string) (*model.Volunteer, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	v, ok := u.m.users[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (u *MemoryUsers) GetMany(_ context.Context, ids []string) (map[string]*model.Volunteer, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	out := make(map[string]*model.Volunteer, len(ids))
	for _, id := range ids {
		if v, ok := u.m.users[id]; ok {
			cp := v
			out[id] = &cp
		}
	}
	return out, nil
}

func (u *MemoryUsers) List(_ context.Context) ([]model.Volunteer, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	out := make([]model.Volunteer, 0, len(u.m.users))
	for _, v := range u.m.users {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type MemoryMasjids struct{ m *Memory }

func (s *MemoryMasjids) Upsert(_ context.Context, m model.Masjid) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.masjids[m.ID] = m
	return nil
}

type MemoryWinners struct{ m *Memory }

func (w *MemoryWinners) List(_ context.Context) ([]*model.Winner, error) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	out := make([]*model.Winner, 0, len(w.m.winners))
	for _, win := range w.m.winners {
		cp := *win
		out = append(out, &cp)
	}
	return out, nil
}

func (w *MemoryWinners) VolunteerIDs(_ context.Context) ([]string, error) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	return append([]string(nil), w.m.volWinners...), nil
}
