// Package scheduler wires up the cron job that announces phone numbers whose
// 100-day cooldown ends today.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jobmate/visibility-service/internal/model"
	"jobmate/visibility-service/internal/report"
	"jobmate/visibility-service/internal/visibility"
)

// JoinSource loads the records whose latest joining date is day.
type JoinSource interface {
	ListJoinedOn(ctx context.Context, day time.Time) (model.Snapshot, error)
}

// Scheduler wraps robfig/cron and runs the cooldown sweep.
type Scheduler struct {
	cron *cron.Cron
	src  JoinSource
	pub  report.Publisher
	spec string
	loc  *time.Location
	now  func() time.Time
	wg   sync.WaitGroup
}

// New creates a Scheduler firing on spec, evaluated in loc.
func New(src JoinSource, pub report.Publisher, spec string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithLogger(cron.DefaultLogger)),
		src:  src,
		pub:  pub,
		spec: spec,
		loc:  loc,
		now:  time.Now,
	}
}

// Start registers the sweep and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() { s.runSweep(ctx) })
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s (%s)", s.spec, s.loc)

	// Run once on startup so a tick missed while the process was down is
	// still announced.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSweep(ctx)
	}()

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running sweep.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runSweep(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		log.Printf("[scheduler] Sweep error: %v", err)
	}
}

// Sweep publishes one EVENT_COOLDOWN_EXPIRED per number released today and
// returns how many were published. Publication failures are logged and
// skipped.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	today := model.CivilDate(s.now().In(s.loc))
	day := today.AddDate(0, 0, -visibility.CooldownDays)

	snap, err := s.src.ListJoinedOn(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("listJoinedOn %s: %w", model.FormatDate(day), err)
	}

	phones := visibility.ExpiringOn(snap, today)
	if len(phones) == 0 {
		log.Printf("[scheduler] No numbers leave cooldown on %s", model.FormatDate(today))
		return 0, nil
	}

	sent := 0
	for _, phone := range phones {
		event, _ := json.Marshal(map[string]any{
			"type":         report.ChannelCooldownExpired,
			"phone":        phone,
			"joinedOn":     model.FormatDate(day),
			"day":          model.FormatDate(today),
			"candidateIds": candidatesWith(snap, phone),
		})
		if err := s.pub.Publish(ctx, report.ChannelCooldownExpired, event); err != nil {
			log.Printf("[scheduler] publish %s failed: %v", report.ChannelCooldownExpired, err)
			continue
		}
		sent++
	}

	log.Printf("[scheduler] Cooldown sweep complete — %d number(s) released", sent)
	return sent, nil
}

// candidatesWith lists, in snapshot order, the candidates carrying phone.
func candidatesWith(snap model.Snapshot, phone string) []model.ID {
	var ids []model.ID
	for _, rec := range snap {
		for _, raw := range []model.RawPhone{rec.Phone1, rec.Phone2} {
			if p, ok := visibility.NormalizePhone(raw); ok && p == phone {
				ids = append(ids, rec.CandidateID)
				break
			}
		}
	}
	return ids
}
