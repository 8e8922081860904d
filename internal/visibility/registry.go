package visibility

import (
	"time"

	"jobmate/visibility-service/internal/model"
)

// Registry is the cross-record state derived from one snapshot. It is built
// fresh by NewRegistry and never updated in place.
type Registry struct {
	// JoinedNumbers holds every number carried by a record whose status is Joined.
	JoinedNumbers map[string]struct{}
	// JoiningDates lists, per number, the valid joining dates recorded against
	// it. Numbers seen without any valid date map to an empty list.
	JoiningDates map[string][]time.Time
}

// NewRegistry derives the Registry of snap.
func NewRegistry(snap model.Snapshot) Registry {
	return Registry{
		JoinedNumbers: BuildJoinedNumbers(snap),
		JoiningDates:  BuildJoiningDates(snap),
	}
}

// BuildJoinedNumbers collects the numbers of every Joined record.
func BuildJoinedNumbers(snap model.Snapshot) map[string]struct{} {
	out := make(map[string]struct{})
	for _, rec := range snap {
		if !model.IsJoined(rec.Status) {
			continue
		}
		for _, p := range phonesOf(rec) {
			out[p] = struct{}{}
		}
	}
	return out
}

// BuildJoiningDates maps every number in snap to the first-entry joining
// dates of the records carrying it, in snapshot order.
func BuildJoiningDates(snap model.Snapshot) map[string][]time.Time {
	out := make(map[string][]time.Time)
	for _, rec := range snap {
		date, ok := rec.JoiningDate()
		for _, p := range phonesOf(rec) {
			dates, seen := out[p]
			if !seen {
				dates = []time.Time{}
			}
			if ok {
				dates = append(dates, date)
			}
			out[p] = dates
		}
	}
	return out
}

// IsTaken reports whether phone belongs to a Joined record.
func (r Registry) IsTaken(phone string) bool {
	_, ok := r.JoinedNumbers[phone]
	return ok
}

// cooldownExpired reports whether any date recorded for phone is at least
// CooldownDays before today.
func (r Registry) cooldownExpired(phone string, today time.Time) bool {
	for _, d := range r.JoiningDates[phone] {
		if DaysSince(d, today) >= CooldownDays {
			return true
		}
	}
	return false
}

// DaysSince counts whole calendar days from day to today. Clock and zone of
// both values are ignored. The result is negative for future dates.
func DaysSince(day, today time.Time) int {
	return int(model.CivilDate(today).Sub(model.CivilDate(day)).Hours() / 24)
}
