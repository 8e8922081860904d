// Package report serves the candidate report and the contact-visibility
// decisions attached to it.
//
// The decision logic itself lives in the visibility package and is pure. This
// package owns everything around it: loading a page of records, choosing
// "today" in the configured zone, memoizing decision sets, and gating
// click-through on masked numbers.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jobmate/visibility-service/internal/model"
	"jobmate/visibility-service/internal/visibility"
)

// RecordSource loads report pages.
type RecordSource interface {
	ListCandidateJobs(ctx context.Context, f Filter) (model.Snapshot, error)
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	Location  *time.Location   // zone of "today"; UTC if nil
	PageLimit int              // maximum page size; 100 if zero
	Now       func() time.Time // clock; time.Now if nil
}

// Service encapsulates the report and visibility use cases.
// It has no dependency on net/http or gRPC.
type Service struct {
	src   RecordSource
	cache Cache     // may be nil
	pub   Publisher // may be nil
	loc   *time.Location
	limit int
	now   func() time.Time
}

// NewService returns a configured Service.
func NewService(src RecordSource, cache Cache, pub Publisher, opts Options) *Service {
	s := &Service{src: src, cache: cache, pub: pub, loc: opts.Location, limit: opts.PageLimit, now: opts.Now}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.limit <= 0 {
		s.limit = 100
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ─── Request / response types ────────────────────────────────────────────────

// EvaluateRequest carries a caller-held snapshot. Today is optional
// (YYYY-MM-DD); it defaults to the current date in the service zone.
type EvaluateRequest struct {
	Today   string         `json:"today"`
	Records model.Snapshot `json:"records"`
}

// EvaluateResponse lists one RecordVisibility per request record, in order.
type EvaluateResponse struct {
	Today     string                        `json:"today"`
	Decisions []visibility.RecordVisibility `json:"decisions"`
}

// ContactRequest asks to open a messaging app on one phone slot of one
// record in the snapshot. JobID picks the row; CandidateID alone is accepted
// only when the candidate has a single row.
type ContactRequest struct {
	EvaluateRequest
	JobID       model.ID `json:"jobId"`
	CandidateID model.ID `json:"candidateId"`
	Slot        string   `json:"slot"`
}

// ContactTarget is the click-through destination for a visible number.
type ContactTarget struct {
	JobID       model.ID        `json:"jobId,omitempty"`
	CandidateID model.ID        `json:"candidateId"`
	Slot        visibility.Slot `json:"slot"`
	Link        string          `json:"link"`
}

// ReportRow is one line of the candidate report. Raw phone values are never
// included; only the decisions are.
type ReportRow struct {
	JobID         model.ID             `json:"jobId"`
	CandidateID   model.ID             `json:"candidateId"`
	CandidateName string               `json:"candidateName"`
	ClientName    string               `json:"clientName"`
	Status        model.Status         `json:"status"`
	Phone1        *visibility.Decision `json:"phone1"`
	Phone2        *visibility.Decision `json:"phone2"`
}

// Report is one page of the candidate report.
type Report struct {
	Today  string      `json:"today"`
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
	Rows   []ReportRow `json:"rows"`
}

// ─── Business logic ──────────────────────────────────────────────────────────

// Today returns the current civil date in the service zone.
func (s *Service) Today() time.Time {
	return model.CivilDate(s.now().In(s.loc))
}

// resolveToday parses an explicit day or falls back to Today.
func (s *Service) resolveToday(raw string) (time.Time, error) {
	if raw == "" {
		return s.Today(), nil
	}
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}, &ValidationError{Msg: fmt.Sprintf("today must be YYYY-MM-DD, got %q", raw)}
	}
	return t, nil
}

// CandidateReport loads one page of records and decides every phone on it.
// The page is the snapshot: numbers shared with records on other pages are
// not considered.
func (s *Service) CandidateReport(ctx context.Context, f Filter) (*Report, error) {
	if f.Offset < 0 {
		return nil, &ValidationError{Msg: "offset must be >= 0"}
	}
	if f.Limit <= 0 || f.Limit > s.limit {
		f.Limit = s.limit
	}

	snap, err := s.src.ListCandidateJobs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("candidateReport: %w", err)
	}

	today := s.Today()
	decisions := s.decide(ctx, snap, today)

	rows := make([]ReportRow, len(snap))
	for i, rec := range snap {
		rows[i] = ReportRow{
			JobID:         rec.JobID,
			CandidateID:   rec.CandidateID,
			CandidateName: rec.CandidateName,
			ClientName:    rec.ClientName,
			Status:        rec.Status,
			Phone1:        decisions[i].Phone1,
			Phone2:        decisions[i].Phone2,
		}
	}
	return &Report{Today: model.FormatDate(today), Offset: f.Offset, Limit: f.Limit, Rows: rows}, nil
}

// Evaluate decides every phone of a caller-supplied snapshot.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	today, err := s.resolveToday(req.Today)
	if err != nil {
		return nil, err
	}
	return &EvaluateResponse{
		Today:     model.FormatDate(today),
		Decisions: s.decide(ctx, req.Records, today),
	}, nil
}

// OpenContact returns the messaging link for one phone slot, recomputing its
// decision from the snapshot rather than trusting the caller.
// Returns ErrNotFound when the record or number is not in the snapshot, a
// ValidationError when the request does not name exactly one record, and
// visibility.ErrMaskedContact when the number is masked.
func (s *Service) OpenContact(ctx context.Context, userID string, req ContactRequest) (*ContactTarget, error) {
	slot, err := visibility.ParseSlot(req.Slot)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	today, err := s.resolveToday(req.Today)
	if err != nil {
		return nil, err
	}

	idx, err := findRecord(req.Records, req.JobID, req.CandidateID)
	if err != nil {
		return nil, err
	}
	rec := req.Records[idx]

	reg := visibility.NewRegistry(req.Records)
	d, ok := visibility.DecideSlot(req.Records, idx, slot, reg, today)
	if !ok {
		return nil, ErrNotFound
	}
	link, err := visibility.ContactLink(d)
	if err != nil {
		slog.Info("masked contact refused", "userId", userID, "jobId", rec.JobID, "candidateId", rec.CandidateID, "slot", slot, "reason", d.Reason)
		return nil, err
	}

	s.publish(ctx, ChannelContactOpened, map[string]string{
		"type":        ChannelContactOpened,
		"userId":      userID,
		"jobId":       string(rec.JobID),
		"candidateId": string(rec.CandidateID),
		"slot":        string(slot),
		"day":         model.FormatDate(today),
	})

	return &ContactTarget{JobID: rec.JobID, CandidateID: rec.CandidateID, Slot: slot, Link: link}, nil
}

// findRecord returns the index of the single record matching jobID and
// candidateID (empty values match anything).
func findRecord(snap model.Snapshot, jobID, candidateID model.ID) (int, error) {
	if jobID == "" && candidateID == "" {
		return 0, &ValidationError{Msg: "jobId or candidateId is required"}
	}
	idx, n := -1, 0
	for i, rec := range snap {
		if (jobID == "" || rec.JobID == jobID) && (candidateID == "" || rec.CandidateID == candidateID) {
			if idx < 0 {
				idx = i
			}
			n++
		}
	}
	switch {
	case n == 0:
		return 0, ErrNotFound
	case n > 1:
		return 0, &ValidationError{Msg: fmt.Sprintf("candidate %s has %d rows; jobId is required", candidateID, n)}
	}
	return idx, nil
}

// decide returns the decisions for snap, memoized per (snapshot, today).
// Cache failures are logged and fall through to recomputation.
func (s *Service) decide(ctx context.Context, snap model.Snapshot, today time.Time) []visibility.RecordVisibility {
	if s.cache == nil || len(snap) == 0 {
		return visibility.Decide(snap, today)
	}

	key := SnapshotKey(snap, today)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("decision cache read failed", "key", key, "err", err)
	} else if ok && len(cached) == len(snap) {
		return cached
	}

	out := visibility.Decide(snap, today)
	if err := s.cache.Set(ctx, key, out); err != nil {
		slog.Warn("decision cache write failed", "key", key, "err", err)
	}
	return out
}

// publish sends an event (non-fatal).
func (s *Service) publish(ctx context.Context, channel string, payload map[string]string) {
	if s.pub == nil {
		return
	}
	b, _ := json.Marshal(payload)
	if err := s.pub.Publish(ctx, channel, b); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when a candidate or phone slot is not in the snapshot.
var ErrNotFound = errors.New("candidate phone not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
