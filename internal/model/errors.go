package model

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrNoAttendanceRecords = errors.New("no attendance records")
	ErrInvalidTimestamp    = errors.New("invalid timestamp")

	// ErrDuplicateWrite reports a write to an existing deterministic key.
	// Callers treat it as a skip.
	ErrDuplicateWrite = errors.New("duplicate write")
)
