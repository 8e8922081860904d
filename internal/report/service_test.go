package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobmate/visibility-service/internal/model"
	"jobmate/visibility-service/internal/report"
	"jobmate/visibility-service/internal/visibility"
)

// ── CandidateReport ────────────────────────────────────────────────────────

func TestCandidateReport_DecidesPage(t *testing.T) {
	src := &fakeSource{snap: model.Snapshot{
		rec("1", "Asha", "Acme", "9876543210", model.StatusJoined, daysAgo(10)),
		rec("2", "Ravi", "Globex", "9876543210", model.StatusOther),
	}}
	svc := newService(src, nil, nil)

	rep, err := svc.CandidateReport(context.Background(), report.Filter{Limit: 500})
	if err != nil {
		t.Fatalf("CandidateReport unexpected error: %v", err)
	}
	if src.lastArg.Limit != 50 {
		t.Errorf("limit passed to source = %d, want clamped to 50", src.lastArg.Limit)
	}
	if rep.Today != "2024-06-01" {
		t.Errorf("today = %s, want 2024-06-01", rep.Today)
	}
	if len(rep.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rep.Rows))
	}
	for _, row := range rep.Rows {
		if row.Phone1 == nil || !row.Phone1.Masked || row.Phone1.DisplayValue != "98xxxxxx10" {
			t.Errorf("row %s phone1 = %+v, want masked", row.CandidateID, row.Phone1)
		}
	}
}

func TestCandidateReport_NegativeOffset(t *testing.T) {
	svc := newService(&fakeSource{}, nil, nil)
	_, err := svc.CandidateReport(context.Background(), report.Filter{Offset: -1})
	var ve *report.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestCandidateReport_SourceError(t *testing.T) {
	svc := newService(&fakeSource{err: errors.New("db down")}, nil, nil)
	if _, err := svc.CandidateReport(context.Background(), report.Filter{}); err == nil {
		t.Error("expected error from failing source")
	}
}

// ── Evaluate ───────────────────────────────────────────────────────────────

func TestEvaluate_ExplicitToday(t *testing.T) {
	svc := newService(nil, nil, nil)
	req := report.EvaluateRequest{
		Today:   "2024-09-09",
		Records: model.Snapshot{rec("1", "Asha", "Acme", "9876543210", model.StatusJoined, "2024-06-01")},
	}

	resp, err := svc.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("Evaluate unexpected error: %v", err)
	}
	// 2024-06-01 → 2024-09-09 is exactly 100 days.
	if d := resp.Decisions[0].Phone1; d.Masked {
		t.Errorf("decision = %+v, want shown after 100 days", *d)
	}
}

func TestEvaluate_BadToday(t *testing.T) {
	svc := newService(nil, nil, nil)
	_, err := svc.Evaluate(context.Background(), report.EvaluateRequest{Today: "09/09/2024"})
	var ve *report.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

func TestEvaluate_TodayUsesServiceZone(t *testing.T) {
	// 20:00 UTC on 1 June is already 2 June in Kolkata.
	loc, _ := time.LoadLocation("Asia/Kolkata")
	svc := report.NewService(nil, nil, nil, report.Options{
		Location: loc,
		Now:      func() time.Time { return time.Date(2024, time.June, 1, 20, 0, 0, 0, time.UTC) },
	})
	resp, err := svc.Evaluate(context.Background(), report.EvaluateRequest{})
	if err != nil {
		t.Fatalf("Evaluate unexpected error: %v", err)
	}
	if resp.Today != "2024-06-02" {
		t.Errorf("today = %s, want 2024-06-02", resp.Today)
	}
}

// ── Memoization ────────────────────────────────────────────────────────────

func TestEvaluate_MemoizesPerSnapshotAndDay(t *testing.T) {
	cache := newFakeCache()
	svc := newService(nil, cache, nil)
	snap := model.Snapshot{rec("1", "Asha", "Acme", "9876543210", model.StatusOther)}

	for i := 0; i < 3; i++ {
		if _, err := svc.Evaluate(context.Background(), report.EvaluateRequest{Records: snap}); err != nil {
			t.Fatalf("Evaluate unexpected error: %v", err)
		}
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}

	// A different day must not reuse the entry.
	if _, err := svc.Evaluate(context.Background(), report.EvaluateRequest{Today: "2024-06-02", Records: snap}); err != nil {
		t.Fatalf("Evaluate unexpected error: %v", err)
	}
	if cache.sets != 2 {
		t.Errorf("cache sets = %d, want 2 after a day change", cache.sets)
	}
}

func TestEvaluate_CacheFailureFallsThrough(t *testing.T) {
	cache := newFakeCache()
	cache.fail = true
	svc := newService(nil, cache, nil)
	snap := model.Snapshot{rec("1", "Asha", "Acme", "9876543210", model.StatusJoined, daysAgo(2))}

	resp, err := svc.Evaluate(context.Background(), report.EvaluateRequest{Records: snap})
	if err != nil {
		t.Fatalf("Evaluate unexpected error: %v", err)
	}
	if !resp.Decisions[0].Phone1.Masked {
		t.Error("decision should still be computed when the cache is down")
	}
}

func TestSnapshotKey(t *testing.T) {
	day := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	a := model.Snapshot{
		rec("1", "Asha", "Acme", "9876543210", model.StatusOther),
		rec("2", "Ravi", "Acme", "9000000001", model.StatusOther),
	}
	b := model.Snapshot{a[1], a[0]}

	if report.SnapshotKey(a, day) != report.SnapshotKey(a, day) {
		t.Error("SnapshotKey is not stable")
	}
	if report.SnapshotKey(a, day) == report.SnapshotKey(b, day) {
		t.Error("reordering the snapshot must change the key")
	}
	if report.SnapshotKey(a, day) == report.SnapshotKey(a, day.AddDate(0, 0, 1)) {
		t.Error("changing the day must change the key")
	}
	if !strings.HasSuffix(report.SnapshotKey(a, day), ":2024-06-01") {
		t.Errorf("key %q should end with the day", report.SnapshotKey(a, day))
	}
}

// ── OpenContact ────────────────────────────────────────────────────────────

func contactSnapshot() model.Snapshot {
	return model.Snapshot{
		rec("X", "Asha", "Acme", "9876543210", model.StatusJoined, daysAgo(10)),
		rec("Y", "Ravi", "Globex", "9876543210", model.StatusOther),
		rec("Z", "Meena", "Initech", "+91 91234 56789", model.StatusOther),
	}
}

func TestOpenContact_VisibleNumber(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(nil, nil, pub)
	req := report.ContactRequest{
		EvaluateRequest: report.EvaluateRequest{Records: contactSnapshot()},
		CandidateID:     "Z",
		Slot:            "phone1",
	}

	target, err := svc.OpenContact(context.Background(), "recruiter-7", req)
	if err != nil {
		t.Fatalf("OpenContact unexpected error: %v", err)
	}
	if target.Link != "https://wa.me/919123456789" {
		t.Errorf("link = %q", target.Link)
	}
	if len(pub.events) != 1 || pub.events[0].channel != report.ChannelContactOpened {
		t.Fatalf("events = %+v, want one %s", pub.events, report.ChannelContactOpened)
	}
	if !strings.Contains(pub.events[0].payload, `"userId":"recruiter-7"`) {
		t.Errorf("payload %s should carry the recruiter id", pub.events[0].payload)
	}
}

func TestOpenContact_MaskedNumberRefused(t *testing.T) {
	pub := &fakePublisher{}
	svc := newService(nil, nil, pub)
	for _, id := range []model.ID{"X", "Y"} {
		req := report.ContactRequest{
			EvaluateRequest: report.EvaluateRequest{Records: contactSnapshot()},
			CandidateID:     id,
			Slot:            "phone1",
		}
		_, err := svc.OpenContact(context.Background(), "recruiter-7", req)
		if !errors.Is(err, visibility.ErrMaskedContact) {
			t.Errorf("candidate %s: error = %v, want ErrMaskedContact", id, err)
		}
	}
	if len(pub.events) != 0 {
		t.Errorf("refused contacts must not publish, got %+v", pub.events)
	}
}

func TestOpenContact_NotFound(t *testing.T) {
	svc := newService(nil, nil, nil)
	cases := []report.ContactRequest{
		{EvaluateRequest: report.EvaluateRequest{Records: contactSnapshot()}, CandidateID: "nobody", Slot: "phone1"},
		{EvaluateRequest: report.EvaluateRequest{Records: contactSnapshot()}, CandidateID: "Z", Slot: "phone2"},
	}
	for _, req := range cases {
		if _, err := svc.OpenContact(context.Background(), "u", req); !errors.Is(err, report.ErrNotFound) {
			t.Errorf("OpenContact(%s/%s) error = %v, want ErrNotFound", req.CandidateID, req.Slot, err)
		}
	}
}

func TestOpenContact_BadSlot(t *testing.T) {
	svc := newService(nil, nil, nil)
	req := report.ContactRequest{EvaluateRequest: report.EvaluateRequest{Records: contactSnapshot()}, CandidateID: "Z", Slot: "fax"}
	var ve *report.ValidationError
	if _, err := svc.OpenContact(context.Background(), "u", req); !errors.As(err, &ve) {
		t.Errorf("error = %v, want ValidationError", err)
	}
}

// sharedCandidate is one candidate on two job rows with the same number: the
// Acme row absconded 30 days ago (masked), the Globex row is shown.
func sharedCandidate(acmeFirst bool) model.Snapshot {
	acme := rec("C", "Kiran", "Acme", "9876543210", model.StatusAbscond, daysAgo(30))
	acme.JobID = "job-acme"
	globex := rec("C", "Kiran", "Globex", "9876543210", model.StatusOther)
	globex.JobID = "job-globex"
	if acmeFirst {
		return model.Snapshot{acme, globex}
	}
	return model.Snapshot{globex, acme}
}

func TestOpenContact_PicksRowByJobID(t *testing.T) {
	for _, acmeFirst := range []bool{true, false} {
		svc := newService(nil, nil, nil)
		snap := sharedCandidate(acmeFirst)

		masked := report.ContactRequest{EvaluateRequest: report.EvaluateRequest{Records: snap}, JobID: "job-acme", CandidateID: "C", Slot: "phone1"}
		if _, err := svc.OpenContact(context.Background(), "u", masked); !errors.Is(err, visibility.ErrMaskedContact) {
			t.Errorf("acmeFirst=%v: Acme row error = %v, want ErrMaskedContact", acmeFirst, err)
		}

		shown := report.ContactRequest{EvaluateRequest: report.EvaluateRequest{Records: snap}, JobID: "job-globex", Slot: "phone1"}
		target, err := svc.OpenContact(context.Background(), "u", shown)
		if err != nil {
			t.Fatalf("acmeFirst=%v: Globex row unexpected error: %v", acmeFirst, err)
		}
		if target.JobID != "job-globex" || target.CandidateID != "C" || target.Link != "https://wa.me/9876543210" {
			t.Errorf("acmeFirst=%v: target = %+v", acmeFirst, target)
		}
	}
}

func TestOpenContact_AmbiguousCandidate(t *testing.T) {
	svc := newService(nil, nil, nil)
	cases := []report.ContactRequest{
		{EvaluateRequest: report.EvaluateRequest{Records: sharedCandidate(true)}, CandidateID: "C", Slot: "phone1"},
		{EvaluateRequest: report.EvaluateRequest{Records: sharedCandidate(true)}, Slot: "phone1"},
	}
	for _, req := range cases {
		var ve *report.ValidationError
		if _, err := svc.OpenContact(context.Background(), "u", req); !errors.As(err, &ve) {
			t.Errorf("OpenContact(%q/%q) error = %v, want ValidationError", req.JobID, req.CandidateID, err)
		}
	}
}

func TestOpenContact_UnknownJobID(t *testing.T) {
	svc := newService(nil, nil, nil)
	req := report.ContactRequest{EvaluateRequest: report.EvaluateRequest{Records: sharedCandidate(true)}, JobID: "job-initech", Slot: "phone1"}
	if _, err := svc.OpenContact(context.Background(), "u", req); !errors.Is(err, report.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
