package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"shaheen-admin/internal/chilla"
	"shaheen-admin/internal/model"
	"shaheen-admin/internal/normalize"
)

const (
	Unknown       = "Unknown"
	UnknownMasjid = "Unknown Masjid"
)

// ReportService builds read-only projections for the spreadsheet and PDF exports.
type ReportService struct {
	students   StudentStore
	attendance AttendanceStore
	volunteers VolunteerStore
	certs      CertificateStore
	winners    WinnerStore
	engine     chilla.Engine
	windows    []chilla.Period
}

func NewReportService(students StudentStore, attendance AttendanceStore, volunteers VolunteerStore, certs CertificateStore, winners WinnerStore, engine chilla.Engine, windows []chilla.Period) *ReportService {
	return &ReportService{
		students:   students,
		attendance: attendance,
		volunteers: volunteers,
		certs:      certs,
		winners:    winners,
		engine:     engine,
		windows:    windows,
	}
}

func (s *ReportService) Windows() []chilla.Period { return s.windows }

func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
}

// sortByLocation orders items by cluster, then masjid, then name, ignoring case.
func sortByLocation[T any](items []T, key func(T) (cluster, masjid, name string)) {
	c := newCollator()
	sort.SliceStable(items, func(i, j int) bool {
		ac, am, an := key(items[i])
		bc, bm, bn := key(items[j])
		if r := c.CompareString(ac, bc); r != 0 {
			return r < 0
		}
		if r := c.CompareString(am, bm); r != 0 {
			return r < 0
		}
		return c.CompareString(an, bn) < 0
	})
}

// sortByPercentage orders rows by percentage descending, then name.
func sortByPercentage[T any](items []T, key func(T) (pct float64, name string)) {
	c := newCollator()
	sort.SliceStable(items, func(i, j int) bool {
		ap, an := key(items[i])
		bp, bn := key(items[j])
		if ap != bp {
			return ap > bp
		}
		return c.CompareString(an, bn) < 0
	})
}

func (s *ReportService) eventsIn(ctx context.Context, p chilla.Period) ([]*model.AttendanceEvent, error) {
	from, to := s.engine.Calendar.Bounds(p)
	evts, err := s.attendance.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", p.Name, err)
	}
	return evts, nil
}

// MatrixRow is one student's presence across the days of a period.
type MatrixRow struct {
	StudentID      string
	Name           string
	GuardianName   string
	GuardianNumber string
	Class          string
	Masjid         string
	Cluster        string
	Present        []bool
	TotalPresent   int
}

type StudentMatrix struct {
	Period chilla.Period
	Days   []string
	Rows   []*MatrixRow
}

// StudentMatrix lists every student with attendance in p and their presence per day.
func (s *ReportService) StudentMatrix(ctx context.Context, p chilla.Period) (*StudentMatrix, error) {
	evts, err := s.eventsIn(ctx, p)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[string][]*model.AttendanceEvent)
	var ids []string
	for _, e := range evts {
		if e.StudentID == "" {
			continue
		}
		if _, ok := byStudent[e.StudentID]; !ok {
			ids = append(ids, e.StudentID)
		}
		byStudent[e.StudentID] = append(byStudent[e.StudentID], e)
	}
	students, err := s.students.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get students: %w", err)
	}

	m := &StudentMatrix{Period: p, Days: s.engine.Calendar.DayKeys(p)}
	for _, id := range ids {
		evs := byStudent[id]
		first, st := evs[0], students[id]
		row := &MatrixRow{
			StudentID:      id,
			Name:           normalize.TitleCase(first.Name),
			GuardianNumber: first.GuardianNumber,
			Class:          first.Class,
			Masjid:         first.MasjidDetails.MasjidName,
			Cluster:        normalize.Text(first.MasjidDetails.ClusterNumber),
		}
		if st != nil {
			row.GuardianName = normalize.TitleCase(st.GuardianName)
			row.Name = orDefault(row.Name, normalize.TitleCase(st.Name))
			row.GuardianNumber = orDefault(row.GuardianNumber, st.GuardianNumber)
			row.Class = orDefault(row.Class, st.Class)
			row.Masjid = orDefault(row.Masjid, st.MasjidDetails.MasjidName)
			row.Cluster = orDefault(row.Cluster, normalize.Text(st.MasjidDetails.ClusterNumber))
		}
		row.Masjid = orDefault(row.Masjid, UnknownMasjid)

		sum := s.engine.Summarize(p, eventTimes(evs))
		row.Present = make([]bool, len(m.Days))
		for i, day := range m.Days {
			row.Present[i] = sum.Present[day]
		}
		row.TotalPresent = sum.DaysPresent
		m.Rows = append(m.Rows, row)
	}
	sortByLocation(m.Rows, func(r *MatrixRow) (string, string, string) { return r.Cluster, r.Masjid, r.Name })
	return m, nil
}

// StudentSummaryRow is a student's attendance percentage for one period.
type StudentSummaryRow struct {
	Student *model.Student
	Summary chilla.Summary
}

// StudentSummaries summarizes every student over p, highest percentage first.
func (s *ReportService) StudentSummaries(ctx context.Context, p chilla.Period) ([]*StudentSummaryRow, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	evts, err := s.eventsIn(ctx, p)
	if err != nil {
		return nil, err
	}
	times := make(map[string][]time.Time)
	for _, e := range evts {
		times[e.StudentID] = append(times[e.StudentID], e.AttendanceTime)
	}
	rows := make([]*StudentSummaryRow, 0, len(students))
	for _, st := range students {
		rows = append(rows, &StudentSummaryRow{Student: st, Summary: s.engine.Summarize(p, times[st.ID])})
	}
	sortByPercentage(rows, func(r *StudentSummaryRow) (float64, string) { return r.Summary.Percentage, r.Student.Name })
	return rows, nil
}

// VolunteerRow is a volunteer's record-taking activity for one period.
type VolunteerRow struct {
	Volunteer model.Volunteer
	Summary   chilla.Summary
	// TotalDaysAllWindows counts days worked across every configured window.
	TotalDaysAllWindows int
}

type VolunteerReport struct {
	Period       chilla.Period
	Rows         []*VolunteerRow
	TotalRecords int
}

// Eligible returns the rows at or above the eligibility threshold.
func (r *VolunteerReport) Eligible() []*VolunteerRow {
	var out []*VolunteerRow
	for _, row := range r.Rows {
		if row.Summary.Eligible {
			out = append(out, row)
		}
	}
	return out
}

// TierCounts counts rows per tier.
func TierCounts(rows []*VolunteerRow) map[chilla.Tier]int {
	counts := make(map[chilla.Tier]int)
	for _, r := range rows {
		counts[r.Summary.Tier]++
	}
	return counts
}

// AveragePercentage is the mean percentage of rows, rounded to two decimals.
func AveragePercentage(rows []*VolunteerRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	var total float64
	for _, r := range rows {
		total += r.Summary.Percentage
	}
	return chilla.Round2(total / float64(len(rows)))
}

// VolunteerReports summarizes every volunteer's events over each configured window.
// A volunteer's events are those they recorded.
func (s *ReportService) VolunteerReports(ctx context.Context) ([]*VolunteerReport, error) {
	volunteers, err := s.volunteers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	evts, err := s.eventsIn(ctx, chilla.Span(s.windows))
	if err != nil {
		return nil, err
	}
	times := make(map[string][]time.Time)
	for _, e := range evts {
		if e.TrackedBy.UserID == "" || e.TrackedBy.UserID == model.SystemTrackerID {
			continue
		}
		times[e.TrackedBy.UserID] = append(times[e.TrackedBy.UserID], e.AttendanceTime)
	}

	reports := make([]*VolunteerReport, len(s.windows))
	for i, w := range s.windows {
		reports[i] = &VolunteerReport{Period: w}
	}
	for _, v := range volunteers {
		rows := make([]*VolunteerRow, len(s.windows))
		total := 0
		for i, w := range s.windows {
			sum := s.engine.Summarize(w, times[v.ID])
			rows[i] = &VolunteerRow{Volunteer: v, Summary: sum}
			total += sum.DaysPresent
			reports[i].TotalRecords += sum.TotalRecords
		}
		for i, row := range rows {
			row.TotalDaysAllWindows = total
			reports[i].Rows = append(reports[i].Rows, row)
		}
	}
	for _, r := range reports {
		sortByPercentage(r.Rows, func(row *VolunteerRow) (float64, string) { return row.Summary.Percentage, row.Volunteer.Name })
	}
	return reports, nil
}

// CertifiedStudent is a student with the dates of every certificate they hold.
type CertifiedStudent struct {
	StudentID      string
	Name           string
	DOB            string
	GuardianNumber string
	MasjidID       string
	MasjidName     string
	Cluster        string
	Certificates   []*model.Certificate
}

// CertificateGroup holds the students with exactly Count certificates.
type CertificateGroup struct {
	Count    int
	Students []*CertifiedStudent
}

// CertificateGroups groups students by their exact number of certificates, ascending.
// Each student's certificates are ordered oldest first.
func (s *ReportService) CertificateGroups(ctx context.Context) ([]*CertificateGroup, error) {
	certs, err := s.certs.List(ctx, model.CertificateKindStudent)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	groups := make(map[int]*CertificateGroup)
	for _, cs := range certifiedStudents(certs) {
		n := len(cs.Certificates)
		g, ok := groups[n]
		if !ok {
			g = &CertificateGroup{Count: n}
			groups[n] = g
		}
		g.Students = append(g.Students, cs)
	}
	out := make([]*CertificateGroup, 0, len(groups))
	for _, g := range groups {
		sortByLocation(g.Students, func(cs *CertifiedStudent) (string, string, string) { return cs.Cluster, cs.MasjidName, cs.Name })
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count < out[j].Count })
	return out, nil
}

// CertificatesBetween returns the students holding certificates issued on the
// local days start through end, each with only those certificates, in
// cluster, masjid and name order.
func (s *ReportService) CertificatesBetween(ctx context.Context, start, end chilla.Date) ([]*CertifiedStudent, error) {
	certs, err := s.certs.List(ctx, model.CertificateKindStudent)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	from, to := s.engine.Calendar.Bounds(chilla.Period{Start: start, End: end})
	var in []*model.Certificate
	for _, c := range certs {
		if !c.Time.Before(from) && c.Time.Before(to) {
			in = append(in, c)
		}
	}
	students := certifiedStudents(in)
	sortByLocation(students, func(cs *CertifiedStudent) (string, string, string) { return cs.Cluster, cs.MasjidName, cs.Name })
	return students, nil
}

// certifiedStudents collects certificates per student, oldest first.
func certifiedStudents(certs []*model.Certificate) []*CertifiedStudent {
	var out []*CertifiedStudent
	byStudent := make(map[string]*CertifiedStudent)
	for _, c := range certs {
		if c.StudentID == "" {
			continue
		}
		cs, ok := byStudent[c.StudentID]
		if !ok {
			cs = &CertifiedStudent{
				StudentID:      c.StudentID,
				Name:           c.Name,
				GuardianNumber: c.GuardianNumber,
				MasjidID:       c.MasjidDetails.MasjidID,
				MasjidName:     c.MasjidDetails.MasjidName,
				Cluster:        normalize.Text(c.MasjidDetails.ClusterNumber),
			}
			if c.DOB != nil {
				cs.DOB = c.DOB.UTC().Format(time.DateOnly)
			}
			byStudent[c.StudentID] = cs
			out = append(out, cs)
		}
		cs.Certificates = append(cs.Certificates, c)
	}
	for _, cs := range out {
		sort.SliceStable(cs.Certificates, func(i, j int) bool {
			return cs.Certificates[i].Time.Before(cs.Certificates[j].Time)
		})
	}
	return out
}

// GroupWithCount returns the group with exactly count certificates, or nil.
func (s *ReportService) GroupWithCount(ctx context.Context, count int) (*CertificateGroup, error) {
	groups, err := s.CertificateGroups(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.Count == count {
			return g, nil
		}
	}
	return nil, nil
}

// CountRow is one line of a per-cluster or per-masjid tally.
type CountRow struct {
	Label    string
	Cluster  string
	MasjidID string
	Students int
}

// ClusterCounts tallies students per cluster in numeric order with Unknown last.
func ClusterCounts(students []*CertifiedStudent) []CountRow {
	counts := make(map[string]int)
	for _, cs := range students {
		counts[orDefault(cs.Cluster, Unknown)]++
	}
	rows := make([]CountRow, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, CountRow{Label: label, Cluster: label, Students: n})
	}
	sortUnknownLast(rows)
	return rows
}

// MasjidCounts tallies students per masjid by name with Unknown last.
func MasjidCounts(students []*CertifiedStudent) []CountRow {
	byID := make(map[string]*CountRow)
	for _, cs := range students {
		id := orDefault(cs.MasjidID, Unknown)
		r, ok := byID[id]
		if !ok {
			r = &CountRow{
				Label:    orDefault(cs.MasjidName, Unknown),
				Cluster:  orDefault(cs.Cluster, Unknown),
				MasjidID: id,
			}
			byID[id] = r
		}
		r.Students++
	}
	rows := make([]CountRow, 0, len(byID))
	for _, r := range byID {
		rows = append(rows, *r)
	}
	sortUnknownLast(rows)
	return rows
}

func sortUnknownLast(rows []CountRow) {
	c := newCollator()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Label, rows[j].Label
		if (a == Unknown) != (b == Unknown) {
			return b == Unknown
		}
		if r := c.CompareString(a, b); r != 0 {
			return r < 0
		}
		return rows[i].MasjidID < rows[j].MasjidID
	})
}

// WinnerRow is a prize winner with their count of regular certificates.
type WinnerRow struct {
	StudentID         string
	Name              string
	GuardianName      string
	GuardianNumber    string
	Cluster           string
	MasjidName        string
	Prize             string
	CertificatesCount int
}

// Winners lists prize winners with certificate counts excluding special program certificates.
func (s *ReportService) Winners(ctx context.Context) ([]*WinnerRow, error) {
	winners, err := s.winners.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list winners: %w", err)
	}
	certs, err := s.certs.List(ctx, model.CertificateKindStudent)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	counts := make(map[string]int)
	for _, c := range certs {
		if !c.SpecialProgram {
			counts[c.StudentID]++
		}
	}
	rows := make([]*WinnerRow, 0, len(winners))
	for _, w := range winners {
		rows = append(rows, &WinnerRow{
			StudentID:         w.ID,
			Name:              normalize.TitleCase(w.Name),
			GuardianName:      normalize.TitleCase(w.GuardianName),
			GuardianNumber:    orDefault(w.GuardianNumber, "N/A"),
			Cluster:           normalize.Text(w.ClusterNumber),
			MasjidName:        normalize.TitleCase(w.MasjidName),
			Prize:             normalize.Text(w.Prize),
			CertificatesCount: counts[w.ID],
		})
	}
	return rows, nil
}

// VolunteerWinnerRow is a volunteer prize winner with their contact and masjid.
type VolunteerWinnerRow struct {
	ID      string
	Name    string
	Phone   string
	Masjid  string
	Cluster string
}

// VolunteerWinners resolves the volunteer winner entries to profiles, in entry
// order with repeated ids listed once. Entries without an id are skipped and
// ids without a profile are listed as unknown.
func (s *ReportService) VolunteerWinners(ctx context.Context) ([]*VolunteerWinnerRow, error) {
	entries, err := s.winners.VolunteerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list volunteer winners: %w", err)
	}
	var ids []string
	seen := make(map[string]bool)
	for i, id := range entries {
		id = strings.TrimSpace(id)
		if id == "" {
			log.Printf("WARN volunteer winner entry %d has no id", i)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	profiles, err := s.volunteers.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get volunteers: %w", err)
	}
	rows := make([]*VolunteerWinnerRow, 0, len(ids))
	for _, id := range ids {
		v, ok := profiles[id]
		if !ok {
			log.Printf("WARN volunteer winner %s has no profile", id)
			rows = append(rows, &VolunteerWinnerRow{ID: id, Name: Unknown, Masjid: UnknownMasjid})
			continue
		}
		rows = append(rows, &VolunteerWinnerRow{
			ID:      id,
			Name:    normalize.TitleCase(orDefault(v.Name, Unknown)),
			Phone:   v.Phone,
			Masjid:  normalize.TitleCase(orDefault(v.Masjid, UnknownMasjid)),
			Cluster: v.Cluster,
		})
	}
	return rows, nil
}

// AttendanceOn lists the events recorded on one local day, earliest first.
func (s *ReportService) AttendanceOn(ctx context.Context, day chilla.Date) ([]*model.AttendanceEvent, error) {
	evts, err := s.eventsIn(ctx, chilla.Period{Name: day.String(), Start: day, End: day})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(evts, func(i, j int) bool { return evts[i].AttendanceTime.Before(evts[j].AttendanceTime) })
	return evts, nil
}

func eventTimes(evts []*model.AttendanceEvent) []time.Time {
	out := make([]time.Time, len(evts))
	for i, e := range evts {
		out[i] = e.AttendanceTime
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
