// Package model defines the candidate-job records read by the visibility engine.
//
// Records arrive from the candidate-data layer with free-text remarks. They are
// mapped once, here, onto a closed Status so the decision logic never compares
// raw strings.
package model

import (
	"encoding/json"
	"strings"
)

// Status is the job status of a candidate-job record as far as contact
// visibility is concerned.
type Status string

const (
	StatusJoined  Status = "JOINED"
	StatusAbscond Status = "ABSCOND"
	StatusOther   Status = "OTHER"
)

// ParseStatus maps a free-text remark onto a Status. Matching ignores case and
// surrounding whitespace. Unrecognised remarks become StatusOther; this never
// fails.
func ParseStatus(remark string) Status {
	switch strings.ToLower(strings.TrimSpace(remark)) {
	case "joined":
		return StatusJoined
	case "abscond":
		return StatusAbscond
	}
	return StatusOther
}

// IsJoined reports whether s is StatusJoined.
func IsJoined(s Status) bool { return s == StatusJoined }

// IsAbscond reports whether s is StatusAbscond.
func IsAbscond(s Status) bool { return s == StatusAbscond }

// UnmarshalJSON accepts any remark string (or null) and normalises it.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		// Non-string remarks (numbers, objects) are not statuses we know.
		*s = StatusOther
		return nil
	}
	if raw == nil {
		*s = StatusOther
		return nil
	}
	*s = ParseStatus(*raw)
	return nil
}
