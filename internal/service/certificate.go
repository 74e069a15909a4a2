package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shaheen-admin/internal/chilla"
	"shaheen-admin/internal/model"
)

var certificateNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("shaheen-namaz/certificates"))

// StudentCertificateKey identifies a completed cycle. epoch counts the student's
// streak resets, so cycles earned again after a reset get new keys.
func StudentCertificateKey(studentID string, epoch, cycle int64) string {
	if epoch == 0 {
		return fmt.Sprintf("student:%s:cycle:%d", studentID, cycle)
	}
	return fmt.Sprintf("student:%s:epoch:%d:cycle:%d", studentID, epoch, cycle)
}

func VolunteerCertificateKey(volunteerID, period string) string {
	return fmt.Sprintf("volunteer:%s:period:%s", volunteerID, period)
}

// CertificateID derives the document id for an idempotency key.
func CertificateID(key string) string {
	return uuid.NewSHA1(certificateNamespace, []byte(key)).String()
}

// CertificateService issues at most one certificate per idempotency key.
type CertificateService struct {
	certs CertificateStore
	now   func() time.Time
}

func NewCertificateService(certs CertificateStore) *CertificateService {
	return &CertificateService{certs: certs, now: time.Now}
}

// Issue stores c under the id derived from c.IdempotencyKey. It reports false
// without error when a certificate with that key already exists.
//
// The existence check runs before the insert: inside a MongoDB transaction a
// failed insert aborts the transaction, so a known duplicate must never be written.
func (s *CertificateService) Issue(ctx context.Context, c *model.Certificate) (bool, error) {
	if c.IdempotencyKey == "" {
		return false, fmt.Errorf("issue certificate for %s: empty idempotency key", c.StudentID)
	}
	c.ID = CertificateID(c.IdempotencyKey)
	existing, err := s.certs.Get(ctx, c.Kind, c.ID)
	if err != nil {
		return false, fmt.Errorf("get certificate: %w", err)
	}
	if existing != nil {
		*c = *existing
		return false, nil
	}
	c.CreatedAt = s.now()
	if err := s.certs.Insert(ctx, c); err != nil {
		if errors.Is(err, model.ErrDuplicateWrite) {
			return false, nil
		}
		return false, fmt.Errorf("issue certificate: %w", err)
	}
	return true, nil
}

// IssueStudent records the completion of cycle, stamped with the triggering event.
func (s *CertificateService) IssueStudent(ctx context.Context, st *model.Student, evt *model.AttendanceEvent, cycle int64) (*model.Certificate, bool, error) {
	c := &model.Certificate{
		IdempotencyKey: StudentCertificateKey(st.ID, st.StreakEpoch, cycle),
		Kind:           model.CertificateKindStudent,
		StudentID:      st.ID,
		Name:           st.Name,
		GuardianNumber: st.GuardianNumber,
		MasjidDetails:  st.MasjidDetails,
		DOB:            st.DOB,
		Time:           evt.AttendanceTime,
		SpecialProgram: st.SpecialProgramEligible,
		Cycle:          cycle,
		Epoch:          st.StreakEpoch,
	}
	issued, err := s.Issue(ctx, c)
	return c, issued, err
}

// IssueVolunteer records a volunteer's eligibility for a chilla period, stamped
// with their last event in the period.
func (s *CertificateService) IssueVolunteer(ctx context.Context, v model.Volunteer, sum chilla.Summary) (*model.Certificate, bool, error) {
	c := &model.Certificate{
		IdempotencyKey: VolunteerCertificateKey(v.ID, sum.Period.Name),
		Kind:           model.CertificateKindVolunteer,
		StudentID:      v.ID,
		Name:           v.Name,
		GuardianNumber: v.Phone,
		MasjidDetails:  model.MasjidDetails{MasjidName: v.Masjid, ClusterNumber: v.Cluster},
		Time:           sum.LastEvent,
		Period:         sum.Period.Name,
		Percentage:     sum.Percentage,
	}
	issued, err := s.Issue(ctx, c)
	return c, issued, err
}
