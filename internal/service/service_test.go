package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaheen-admin/internal/chilla"
	"shaheen-admin/internal/model"
	"shaheen-admin/internal/store"
)

var (
	cal   = chilla.NewCalendar(chilla.DefaultOffsetMinutes)
	first = chilla.DefaultPeriods()[0]
)

type fixture struct {
	mem     *store.Memory
	certs   *CertificateService
	streaks *StreakService
	att     *AttendanceService
	reports *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	certs := NewCertificateService(mem.Certificates())
	streaks := NewStreakService(mem.Students(), mem.Attendance(), certs, mem, chilla.DefaultModulo)
	att := NewAttendanceService(mem.Students(), mem.Attendance(), streaks, cal)
	att.backfillTime = func() time.Duration { return 5*time.Hour + 30*time.Minute }
	reports := NewReportService(mem.Students(), mem.Attendance(), mem.Users(), mem.Certificates(), mem.Winners(),
		chilla.NewEngine(cal, chilla.DefaultThreshold), chilla.DefaultPeriods())
	return &fixture{mem: mem, certs: certs, streaks: streaks, att: att, reports: reports}
}

func (f *fixture) addEvents(studentID, tracker string, start chilla.Date, days int) {
	for i := 0; i < days; i++ {
		day := start.AddDays(i)
		f.mem.PutAttendance(model.AttendanceEvent{
			ID:             model.AttendanceKey(studentID, day.String()),
			StudentID:      studentID,
			Name:           studentID,
			AttendanceTime: cal.Midnight(day).Add(5 * time.Hour),
			TrackedBy:      model.TrackedBy{UserID: tracker},
		})
	}
}

func (f *fixture) studentCerts(t *testing.T) []*model.Certificate {
	t.Helper()
	list, err := f.mem.Certificates().List(context.Background(), model.CertificateKindStudent)
	require.NoError(t, err)
	return list
}

func TestStreakRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.PutStudent(model.Student{ID: "s1", Name: "Ayaan", SpecialProgramEligible: true})

	f.addEvents("s1", "v1", first.Start, 39)
	res, err := f.streaks.Refresh(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 39, res.Step.Streak)
	assert.False(t, res.Step.Completed)
	assert.True(t, res.Applied)
	assert.Empty(t, f.studentCerts(t))

	f.addEvents("s1", "v1", first.Start.AddDays(39), 1)
	res, err = f.streaks.Refresh(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Step.Streak)
	assert.True(t, res.Step.Completed)
	assert.True(t, res.Issued)
	require.NotNil(t, res.Certificate)
	assert.Equal(t, StudentCertificateKey("s1", 0, 1), res.Certificate.IdempotencyKey)
	assert.True(t, res.Certificate.SpecialProgram)
	assert.Equal(t, cal.Midnight(first.End).Add(5*time.Hour), res.Certificate.Time)

	st, err := f.mem.Students().Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Streak)
	assert.EqualValues(t, 40, st.StreakCount)
	assert.NotNil(t, st.StreakLastModified)

	// Replay of the same count issues nothing and leaves the streak alone.
	res, err = f.streaks.Refresh(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, res.Issued)
	assert.False(t, res.Applied)
	assert.Len(t, f.studentCerts(t), 1)
}

// abortingTx mimics a MongoDB session: after any failed write inside the
// transaction every later write fails until the next transaction starts.
type abortingTx struct {
	aborted bool
	runs    int
}

func (tx *abortingTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.aborted = false
	tx.runs++
	return fn(ctx)
}

type abortingCerts struct {
	CertificateStore
	tx *abortingTx
}

func (c abortingCerts) Insert(ctx context.Context, cert *model.Certificate) error {
	if c.tx.aborted {
		return errors.New("transaction aborted")
	}
	err := c.CertificateStore.Insert(ctx, cert)
	if err != nil {
		c.tx.aborted = true
	}
	return err
}

type abortingStudents struct {
	StudentStore
	tx *abortingTx
}

func (s abortingStudents) ApplyStreak(ctx context.Context, id string, u model.StreakUpdate) (bool, error) {
	if s.tx.aborted {
		return false, errors.New("transaction aborted")
	}
	return s.StudentStore.ApplyStreak(ctx, id, u)
}

func TestStreakReplayInsideTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tx := &abortingTx{}
	students := abortingStudents{StudentStore: f.mem.Students(), tx: tx}
	certs := NewCertificateService(abortingCerts{CertificateStore: f.mem.Certificates(), tx: tx})
	streaks := NewStreakService(students, f.mem.Attendance(), certs, tx, chilla.DefaultModulo)

	f.mem.PutStudent(model.Student{ID: "s1"})
	f.addEvents("s1", "v1", first.Start, 40)

	res, err := streaks.Refresh(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, res.Issued)

	res, err = streaks.Refresh(ctx, "s1")
	require.NoError(t, err, "a replayed completion must not abort the transaction")
	assert.False(t, res.Issued)
	assert.False(t, tx.aborted)
	assert.Equal(t, 2, tx.runs)
	assert.Len(t, f.studentCerts(t), 1)
}

func TestStreakCyclesAfterDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.PutStudent(model.Student{ID: "s1"})

	f.addEvents("s1", "v1", first.Start, 40)
	res, err := f.streaks.Refresh(ctx, "s1")
	require.NoError(t, err)
	require.True(t, res.Issued)

	sum := f.att.DeleteAll(ctx, []string{"s1"})
	assert.Equal(t, 1, sum.Students)
	assert.EqualValues(t, 40, sum.Events)

	f.addEvents("s1", "v1", first.Start.AddDays(40), 40)
	res, err = f.streaks.Refresh(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, res.Issued, "a cycle earned after a reset is a new certificate")
	require.NotNil(t, res.Certificate)
	assert.Equal(t, StudentCertificateKey("s1", 1, 1), res.Certificate.IdempotencyKey)
	assert.EqualValues(t, 1, res.Certificate.Epoch)
	assert.Len(t, f.studentCerts(t), 2)
}

func TestStudentCertificateKey(t *testing.T) {
	assert.Equal(t, "student:s1:cycle:2", StudentCertificateKey("s1", 0, 2))
	assert.Equal(t, "student:s1:epoch:3:cycle:2", StudentCertificateKey("s1", 3, 2))
	assert.NotEqual(t, CertificateID(StudentCertificateKey("s1", 0, 1)), CertificateID(StudentCertificateKey("s1", 1, 1)))
}

func TestStreakErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.streaks.Apply(ctx, "ghost", 3)
	assert.ErrorIs(t, err, model.ErrNotFound)

	f.mem.PutStudent(model.Student{ID: "s1"})
	_, err = f.streaks.Apply(ctx, "s1", 40)
	assert.ErrorIs(t, err, model.ErrNoAttendanceRecords)

	st, _ := f.mem.Students().Get(ctx, "s1")
	assert.Equal(t, 0, st.Streak)
	assert.EqualValues(t, 0, st.StreakCount, "failed completion leaves the streak untouched")

	res, err := f.streaks.Apply(ctx, "s1", 0)
	require.NoError(t, err)
	assert.False(t, res.Step.Completed)
}

func TestCertificateIssueIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	key := VolunteerCertificateKey("v1", "1st Chilla")
	issued, err := f.certs.Issue(ctx, &model.Certificate{IdempotencyKey: key, Kind: model.CertificateKindVolunteer})
	require.NoError(t, err)
	assert.True(t, issued)

	issued, err = f.certs.Issue(ctx, &model.Certificate{IdempotencyKey: key, Kind: model.CertificateKindVolunteer})
	require.NoError(t, err)
	assert.False(t, issued)

	_, err = f.certs.Issue(ctx, &model.Certificate{Kind: model.CertificateKindStudent})
	assert.Error(t, err)

	assert.Equal(t, CertificateID(key), CertificateID(key))
	assert.NotEqual(t, CertificateID(key), CertificateID(VolunteerCertificateKey("v1", "2nd Chilla")))
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.PutStudent(model.Student{ID: "s1", Name: "Ayaan", Volunteer: &model.StudentVolunteer{VolunteerID: "v1", VolunteerName: "Imran"}})
	f.att.now = func() time.Time { return time.Date(2025, 8, 1, 19, 0, 0, 0, time.UTC) }

	res, err := f.att.Record(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "s1_2025-08-02", res.Event.ID)
	assert.Equal(t, "v1", res.Event.TrackedBy.UserID)
	assert.Equal(t, 1, res.Streak.Step.Streak)

	res, err = f.att.Record(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 1, res.Streak.Step.Streak)

	_, err = f.att.Record(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestBackfillAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.PutStudent(model.Student{ID: "s1", Name: "Ayaan"})
	f.mem.PutStudent(model.Student{ID: "s2", Name: "Bilal"})

	sum, err := f.att.Backfill(ctx, []string{"s1", "s2", "ghost"}, first.Start, first.End)
	require.NoError(t, err)
	assert.Equal(t, 40, sum.Days)
	assert.Equal(t, 80, sum.Created)
	assert.Equal(t, []string{"ghost"}, sum.Missing)
	assert.Zero(t, sum.Failed)
	assert.Len(t, f.studentCerts(t), 2)

	evt, err := f.mem.Attendance().Get(ctx, "s1_2025-08-05")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-05", cal.DayKey(evt.AttendanceTime))

	sum, err = f.att.Backfill(ctx, []string{"s1", "s2"}, first.Start, first.End)
	require.NoError(t, err)
	assert.Zero(t, sum.Created)
	assert.Equal(t, 80, sum.Skipped)
	assert.Len(t, f.studentCerts(t), 2)

	_, err = f.att.Backfill(ctx, []string{"s1"}, first.End, first.Start)
	assert.Error(t, err)

	del := f.att.DeleteAll(ctx, []string{"s1", "ghost"})
	assert.Equal(t, 1, del.Students)
	assert.EqualValues(t, 40, del.Events)
	assert.Equal(t, 1, del.Failed)

	n, _ := f.mem.Attendance().CountByStudent(ctx, "s1")
	assert.Zero(t, n)
	st, _ := f.mem.Students().Get(ctx, "s1")
	assert.Equal(t, 0, st.Streak)
	assert.EqualValues(t, 0, st.StreakCount)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.PutStudent(model.Student{ID: "s1"})
	f.addEvents("s1", "v1", first.Start.AddDays(1), 2)

	_, days, err := f.att.History(ctx, "s1", first.Start, first.Start.AddDays(4))
	require.NoError(t, err)
	require.Len(t, days, 5)
	assert.False(t, days[0].Present)
	assert.True(t, days[1].Present)
	assert.True(t, days[2].Present)
	assert.False(t, days[3].Present)
	assert.Equal(t, "2025-08-02", days[1].Day)
}

func TestStudentMatrix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.PutStudent(model.Student{ID: "s1", Name: "zaid", GuardianName: "OMAR", MasjidDetails: model.MasjidDetails{MasjidName: "Noor", ClusterNumber: 10}})
	f.mem.PutStudent(model.Student{ID: "s2", Name: "Ali", MasjidDetails: model.MasjidDetails{MasjidName: "bilal", ClusterNumber: 2}})
	f.mem.PutStudent(model.Student{ID: "s3", Name: "Amir"})
	f.addEvents("s1", "v1", first.Start, 3)
	f.addEvents("s2", "v1", first.Start.AddDays(2), 1)

	m, err := f.reports.StudentMatrix(ctx, first)
	require.NoError(t, err)
	assert.Len(t, m.Days, 40)
	require.Len(t, m.Rows, 2, "students without attendance are left out")

	assert.Equal(t, "s2", m.Rows[0].StudentID, "cluster 2 sorts before cluster 10")
	assert.Equal(t, "2", m.Rows[0].Cluster)
	assert.Equal(t, 1, m.Rows[0].TotalPresent)
	assert.True(t, m.Rows[0].Present[2])

	assert.Equal(t, "S1", m.Rows[1].Name)
	assert.Equal(t, "Omar", m.Rows[1].GuardianName)
	assert.Equal(t, 3, m.Rows[1].TotalPresent)
	assert.Equal(t, "Noor", m.Rows[1].Masjid)
}

func TestVolunteerReports(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.PutUser(model.Volunteer{ID: "v1", Name: "Imran"})
	f.mem.PutUser(model.Volunteer{ID: "v2", Name: "Hafiz Zaid"})
	f.mem.PutUser(model.Volunteer{ID: "v3", Name: "Idle"})
	// v1 records two students a day for 28 days; v2 records one for 27.
	f.addEvents("s1", "v1", first.Start, 28)
	f.addEvents("s2", "v1", first.Start, 28)
	f.addEvents("s3", "v2", first.Start, 27)
	f.addEvents("s4", "v2", chilla.DefaultPeriods()[1].Start, 40)

	reports, err := f.reports.VolunteerReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	r := reports[0]
	require.Len(t, r.Rows, 3)
	assert.Equal(t, "v1", r.Rows[0].Volunteer.ID)
	assert.Equal(t, 70.0, r.Rows[0].Summary.Percentage)
	assert.Equal(t, 56, r.Rows[0].Summary.TotalRecords)
	assert.Equal(t, 2.0, r.Rows[0].Summary.AvgPerDay)
	assert.Equal(t, 67.5, r.Rows[1].Summary.Percentage)
	assert.Equal(t, 67, r.Rows[1].TotalDaysAllWindows)
	assert.Equal(t, 83, r.TotalRecords)

	eligible := r.Eligible()
	require.Len(t, eligible, 1)
	assert.Equal(t, "v1", eligible[0].Volunteer.ID)

	second := reports[1].Eligible()
	require.Len(t, second, 1)
	assert.Equal(t, chilla.TierPerfect, second[0].Summary.Tier)
	assert.Equal(t, 1, TierCounts(second)[chilla.TierPerfect])
	assert.Equal(t, 100.0, AveragePercentage(second))
}

func TestCertificateGroupsAndWinners(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := func(student string, cycle int64, cluster any, masjidID string, special bool) {
		_, err := f.certs.Issue(ctx, &model.Certificate{
			IdempotencyKey: StudentCertificateKey(student, 0, cycle),
			Kind:           model.CertificateKindStudent,
			StudentID:      student,
			Name:           student,
			MasjidDetails:  model.MasjidDetails{MasjidID: masjidID, MasjidName: masjidID, ClusterNumber: cluster},
			Time:           time.Date(2025, 9, int(10-cycle), 0, 0, 0, 0, time.UTC),
			SpecialProgram: special,
		})
		require.NoError(t, err)
	}
	issue("a", 1, 10, "m1", false)
	issue("a", 2, 10, "m1", true)
	issue("b", 1, 2, "m2", false)
	issue("c", 1, nil, "", false)

	groups, err := f.reports.CertificateGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, 1, groups[0].Count)
	assert.Len(t, groups[0].Students, 2)
	assert.Equal(t, 2, groups[1].Count)
	a := groups[1].Students[0]
	assert.True(t, a.Certificates[0].Time.Before(a.Certificates[1].Time))

	clusters := ClusterCounts(groups[0].Students)
	require.Len(t, clusters, 2)
	assert.Equal(t, "2", clusters[0].Label)
	assert.Equal(t, Unknown, clusters[1].Label)

	masjids := MasjidCounts(groups[0].Students)
	assert.Equal(t, Unknown, masjids[len(masjids)-1].Label)

	g, err := f.reports.GroupWithCount(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, g)

	f.mem.PutWinner(model.Winner{ID: "a", Name: "AYAAN khan", Prize: 1})
	rows, err := f.reports.Winners(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ayaan Khan", rows[0].Name)
	assert.Equal(t, 1, rows[0].CertificatesCount)
	assert.Equal(t, "N/A", rows[0].GuardianNumber)
	assert.Equal(t, "1", rows[0].Prize)
}

func TestAudit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.PutUser(model.Volunteer{ID: "v1", Name: "Imrân Shaikh"})
	f.mem.PutUser(model.Volunteer{ID: "v2", Name: "Imran Ali"})
	f.mem.PutUser(model.Volunteer{ID: "v3", Name: "Zaid"})
	f.addEvents("s1", "v3", first.Start, 3)

	audit := NewAuditService(f.mem.Users(), f.mem.Attendance())
	found, err := audit.FindVolunteers(ctx, "IMRAN")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = audit.FindVolunteers(ctx, "  ")
	assert.Error(t, err)

	evts, err := audit.Activity(ctx, "v3", cal.Midnight(first.Start.AddDays(1)))
	require.NoError(t, err)
	require.Len(t, evts, 2)
	assert.True(t, evts[0].AttendanceTime.After(evts[1].AttendanceTime))
}

func TestMasjidImport(t *testing.T) {
	f := newFixture(t)
	svc := NewMasjidService(f.mem.Masjids())
	sum := svc.Import(context.Background(), []map[string]string{
		{"Document ID": "m1", "Name": "Noor", "Cluster Number": "3"},
		{"documentId": "m2", "name": "Bilal", "clusterNumber": "4"},
		{"Document ID": "m3", "Name": "Taiba"},
	})
	assert.Equal(t, 2, sum.Imported)
	assert.Equal(t, 1, sum.Skipped)

	m, ok := f.mem.Masjid("m2")
	require.True(t, ok)
	assert.Equal(t, "4", m.ClusterNumber)
}

func TestVolunteerWinners(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mem.PutUser(model.Volunteer{ID: "v1", Name: "IMRAN khan", Phone: "0987", Masjid: "noor masjid", Cluster: "4"})
	f.mem.PutUser(model.Volunteer{ID: "v2", Name: "sana"})
	for _, id := range []string{"v2", " ", "v1", "ghost", "v2"} {
		f.mem.PutVolunteerWinner(id)
	}

	rows, err := f.reports.VolunteerWinners(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, &VolunteerWinnerRow{ID: "v2", Name: "Sana", Masjid: UnknownMasjid}, rows[0])
	assert.Equal(t, &VolunteerWinnerRow{ID: "v1", Name: "Imran Khan", Phone: "0987", Masjid: "Noor Masjid", Cluster: "4"}, rows[1])
	assert.Equal(t, &VolunteerWinnerRow{ID: "ghost", Name: Unknown, Masjid: UnknownMasjid}, rows[2])
}

func TestAttendanceOn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvents("s1", "v1", first.Start, 3)
	f.addEvents("s2", "v1", first.Start.AddDays(1), 1)

	evts, err := f.reports.AttendanceOn(ctx, first.Start.AddDays(1))
	require.NoError(t, err)
	require.Len(t, evts, 2)
	for _, e := range evts {
		assert.Equal(t, first.Start.AddDays(1).String(), cal.DayKey(e.AttendanceTime))
	}

	evts, err = f.reports.AttendanceOn(ctx, first.Start.AddDays(5))
	require.NoError(t, err)
	assert.Empty(t, evts)
}

func TestCertificatesBetween(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := func(student string, cycle int64, cluster string, day chilla.Date) {
		_, err := f.certs.Issue(ctx, &model.Certificate{
			IdempotencyKey: StudentCertificateKey(student, 0, cycle),
			Kind:           model.CertificateKindStudent,
			StudentID:      student,
			Name:           student,
			MasjidDetails:  model.MasjidDetails{MasjidName: "m" + cluster, ClusterNumber: cluster},
			Time:           cal.Midnight(day).Add(5 * time.Hour),
		})
		require.NoError(t, err)
	}
	issue("b", 1, "9", first.Start)
	issue("a", 1, "10", first.Start.AddDays(2))
	issue("a", 2, "10", first.Start.AddDays(9))
	issue("c", 1, "2", first.Start.AddDays(10))

	students, err := f.reports.CertificatesBetween(ctx, first.Start, first.Start.AddDays(9))
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "b", students[0].StudentID, "cluster 9 sorts before 10")
	assert.Equal(t, "a", students[1].StudentID)
	require.Len(t, students[1].Certificates, 2)
	assert.True(t, students[1].Certificates[0].Time.Before(students[1].Certificates[1].Time))

	students, err = f.reports.CertificatesBetween(ctx, first.Start.AddDays(20), first.Start.AddDays(30))
	require.NoError(t, err)
	assert.Empty(t, students)
}
