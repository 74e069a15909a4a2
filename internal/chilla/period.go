package chilla

import (
	"fmt"
	"strings"
)

// Period is a named, inclusive window of local calendar days.
type Period struct {
	Name  string
	Start Date
	End   Date
}

func (p Period) TotalDays() int {
	return DaysBetweenInclusive(p.Start, p.End)
}

// Contains reports whether the YYYY-MM-DD day key falls inside the period.
func (p Period) Contains(dayKey string) bool {
	return dayKey >= p.Start.String() && dayKey <= p.End.String()
}

// Slug is the period name made safe for folder and file names ("1st Chilla" -> "1st_Chilla").
func (p Period) Slug() string {
	return strings.Join(strings.Fields(p.Name), "_")
}

func (p Period) String() string {
	return fmt.Sprintf("%s (%s to %s)", p.Name, p.Start, p.End)
}

// DefaultPeriods are the three chillas of the 2025 program.
func DefaultPeriods() []Period {
	return []Period{
		{Name: "1st Chilla", Start: Date{2025, 8, 1}, End: Date{2025, 9, 9}},
		{Name: "2nd Chilla", Start: Date{2025, 9, 10}, End: Date{2025, 10, 19}},
		{Name: "3rd Chilla", Start: Date{2025, 10, 20}, End: Date{2025, 11, 28}},
	}
}

// Span returns a period from the first start to the last end.
func Span(periods []Period) Period {
	if len(periods) == 0 {
		return Period{}
	}
	span := Period{Name: "All", Start: periods[0].Start, End: periods[0].End}
	for _, p := range periods[1:] {
		if p.Start.Before(span.Start) {
			span.Start = p.Start
		}
		if span.End.Before(p.End) {
			span.End = p.End
		}
	}
	return span
}

// ParsePeriods parses "name=YYYY-MM-DD..YYYY-MM-DD;name=...".
func ParsePeriods(s string) ([]Period, error) {
	var periods []Period
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, rng, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("window %q: missing '='", part)
		}
		start, end, err := ParseRange(rng)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", part, err)
		}
		periods = append(periods, Period{Name: strings.TrimSpace(name), Start: start, End: end})
	}
	return periods, nil
}

// ParseRange parses "YYYY-MM-DD..YYYY-MM-DD".
func ParseRange(s string) (start, end Date, err error) {
	from, to, ok := strings.Cut(s, "..")
	if !ok {
		return Date{}, Date{}, fmt.Errorf("missing '..'")
	}
	if start, err = ParseDate(strings.TrimSpace(from)); err != nil {
		return Date{}, Date{}, err
	}
	if end, err = ParseDate(strings.TrimSpace(to)); err != nil {
		return Date{}, Date{}, err
	}
	if end.Before(start) {
		return Date{}, Date{}, fmt.Errorf("range %s ends before it starts", s)
	}
	return start, end, nil
}

// ValidatePeriods checks that windows are named, non-empty, ordered and non-overlapping.
func ValidatePeriods(periods []Period) error {
	if len(periods) == 0 {
		return fmt.Errorf("no chilla windows configured")
	}
	seen := make(map[string]bool, len(periods))
	for i, p := range periods {
		if p.Name == "" {
			return fmt.Errorf("window %d: empty name", i+1)
		}
		if seen[p.Name] {
			return fmt.Errorf("window %q: duplicate name", p.Name)
		}
		seen[p.Name] = true
		if p.TotalDays() == 0 {
			return fmt.Errorf("window %q: end %s before start %s", p.Name, p.End, p.Start)
		}
		if i > 0 && !periods[i-1].End.Before(p.Start) {
			return fmt.Errorf("window %q overlaps or precedes %q", p.Name, periods[i-1].Name)
		}
	}
	return nil
}
