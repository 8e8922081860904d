package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ID is a candidate identifier. The data layer sends it either as a JSON
// string or as a number; both decode to the same textual ID.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	s, err := lenientString(b)
	if err != nil {
		return err
	}
	*id = ID(strings.TrimSpace(s))
	return nil
}

// RawPhone is a phone field exactly as entered. Spreadsheet imports sometimes
// store numbers as JSON numbers, so those are accepted too.
type RawPhone string

// UnmarshalJSON accepts strings, numbers and null.
func (p *RawPhone) UnmarshalJSON(b []byte) error {
	s, err := lenientString(b)
	if err != nil {
		return err
	}
	*p = RawPhone(s)
	return nil
}

func lenientString(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		err := json.Unmarshal(b, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// RevenueEntry is one billing line of a candidate-job record. Only the joining
// date matters here.
type RevenueEntry struct {
	JoiningDate string `json:"joiningDate"`
}

// CandidateJobRecord is one row of the candidate report: a candidate applied
// to (or placed at) one client. Phone fields hold the raw text as entered.
// A candidate appears once per job, so JobID rather than CandidateID names a
// row.
type CandidateJobRecord struct {
	JobID          ID             `json:"jobId,omitempty"`
	CandidateID    ID             `json:"candidateId"`
	CandidateName  string         `json:"candidateName"`
	ClientName     string         `json:"clientName"`
	Phone1         RawPhone       `json:"phone1"`
	Phone2         RawPhone       `json:"phone2"`
	Status         Status         `json:"status"`
	RevenueEntries []RevenueEntry `json:"revenueEntries"`
}

// JoiningDate returns the record's authoritative joining date: the one on its
// first (most recent) revenue entry.
func (r CandidateJobRecord) JoiningDate() (time.Time, bool) {
	if len(r.RevenueEntries) == 0 {
		return time.Time{}, false
	}
	return ParseDate(r.RevenueEntries[0].JoiningDate)
}

// Snapshot is the ordered set of records currently loaded by the caller.
// Order matters: ties between records sharing a phone number go to the
// earliest one.
type Snapshot []CandidateJobRecord
