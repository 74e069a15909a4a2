package chilla

import (
	"math"
	"time"
)

// DefaultThreshold is the attendance percentage that qualifies for a certificate.
const DefaultThreshold = 70.0

// Tier buckets an attendance percentage for report colouring.
type Tier string

const (
	TierPerfect Tier = "100"
	Tier90      Tier = "90-99"
	Tier80      Tier = "80-89"
	Tier70      Tier = "70-79"
	Tier50      Tier = "50-69"
	TierLow     Tier = "0-49"
)

// Tiers lists tiers from highest to lowest.
var Tiers = []Tier{TierPerfect, Tier90, Tier80, Tier70, Tier50, TierLow}

func TierOf(pct float64) Tier {
	switch {
	case pct >= 100:
		return TierPerfect
	case pct >= 90:
		return Tier90
	case pct >= 80:
		return Tier80
	case pct >= 70:
		return Tier70
	case pct >= 50:
		return Tier50
	default:
		return TierLow
	}
}

// Summary is the attendance of one subject over one period.
type Summary struct {
	Period       Period
	TotalDays    int
	DaysPresent  int
	DaysAbsent   int
	TotalRecords int
	// AvgPerDay is records per present day, rounded to two decimals.
	AvgPerDay  float64
	Percentage float64
	Tier       Tier
	Eligible   bool
	// Present holds the day keys with at least one event.
	Present map[string]bool
	// LastEvent is the latest event inside the period, or the midnight
	// starting the period's last day when there is none.
	LastEvent time.Time
}

// Engine summarizes attendance over chilla periods.
type Engine struct {
	Calendar  Calendar
	Threshold float64
}

func NewEngine(cal Calendar, threshold float64) Engine {
	return Engine{Calendar: cal, Threshold: threshold}
}

// Summarize counts distinct local days present inside p. Events outside p are ignored.
func (e Engine) Summarize(p Period, events []time.Time) Summary {
	s := Summary{Period: p, TotalDays: p.TotalDays(), Present: make(map[string]bool)}
	if s.TotalDays > 0 {
		from, to := e.Calendar.Bounds(p)
		for _, at := range events {
			if at.Before(from) || !at.Before(to) {
				continue
			}
			s.TotalRecords++
			s.Present[e.Calendar.DayKey(at)] = true
			if at.After(s.LastEvent) {
				s.LastEvent = at
			}
		}
	}
	if s.LastEvent.IsZero() {
		s.LastEvent = e.Calendar.Midnight(p.End)
	}
	s.DaysPresent = len(s.Present)
	s.DaysAbsent = s.TotalDays - s.DaysPresent
	s.Percentage = Percentage(s.DaysPresent, s.TotalDays)
	if s.DaysPresent > 0 {
		s.AvgPerDay = Round2(float64(s.TotalRecords) / float64(s.DaysPresent))
	}
	s.Tier = TierOf(s.Percentage)
	s.Eligible = s.TotalDays > 0 && s.Percentage >= e.Threshold
	return s
}

// Percentage is present/total as a percent rounded to two decimals, 0 when total is 0.
func Percentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round2(float64(present*100) / float64(total))
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
