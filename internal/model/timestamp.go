package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp converts a stored attendance_time value into an instant.
// Strings without an offset are read in loc.
func ParseTimestamp(v any, loc *time.Location) (time.Time, error) {
	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case *time.Time:
		if tv != nil {
			t = *tv
		}
	case bson.DateTime:
		t = tv.Time()
	case bson.Timestamp:
		t = time.Unix(int64(tv.T), 0)
	case string:
		parsed, err := parseTimestampString(tv, loc)
		if err != nil {
			return time.Time{}, err
		}
		t = parsed
	case nil:
		return time.Time{}, fmt.Errorf("%w: missing", ErrInvalidTimestamp)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidTimestamp, v)
	}
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("%w: zero value", ErrInvalidTimestamp)
	}
	return t, nil
}

func parseTimestampString(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
