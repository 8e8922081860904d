package report_test

import (
	"context"
	"errors"
	"sync"
	"time"
	_ "time/tzdata"

	"jobmate/visibility-service/internal/model"
	"jobmate/visibility-service/internal/report"
	"jobmate/visibility-service/internal/visibility"
)

// fixedNow is 2024-06-01 evening in Kolkata, which is still 2024-06-01 in UTC.
var fixedNow = time.Date(2024, time.June, 1, 13, 0, 0, 0, time.UTC)

func daysAgo(n int) string {
	return model.FormatDate(fixedNow.AddDate(0, 0, -n))
}

func rec(id, name, client, phone string, st model.Status, joined ...string) model.CandidateJobRecord {
	r := model.CandidateJobRecord{
		CandidateID:   model.ID(id),
		CandidateName: name,
		ClientName:    client,
		Phone1:        model.RawPhone(phone),
		Status:        st,
	}
	for _, d := range joined {
		r.RevenueEntries = append(r.RevenueEntries, model.RevenueEntry{JoiningDate: d})
	}
	return r
}

type fakeSource struct {
	snap    model.Snapshot
	err     error
	lastArg report.Filter
}

func (f *fakeSource) ListCandidateJobs(_ context.Context, flt report.Filter) (model.Snapshot, error) {
	f.lastArg = flt
	return f.snap, f.err
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]visibility.RecordVisibility
	gets    int
	sets    int
	fail    bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]visibility.RecordVisibility)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]visibility.RecordVisibility, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.fail {
		return nil, false, errors.New("cache down")
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, v []visibility.RecordVisibility) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.fail {
		return errors.New("cache down")
	}
	c.entries[key] = v
	return nil
}

type published struct {
	channel string
	payload string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{channel, string(payload)})
	return nil
}

func newService(src report.RecordSource, cache report.Cache, pub report.Publisher) *report.Service {
	loc, _ := time.LoadLocation("Asia/Kolkata")
	return report.NewService(src, cache, pub, report.Options{
		Location:  loc,
		PageLimit: 50,
		Now:       func() time.Time { return fixedNow },
	})
}
