package visibility

import (
	"sort"
	"time"

	"jobmate/visibility-service/internal/model"
)

// ExpiringOn lists the numbers in snap whose earliest recorded joining date
// reaches CooldownDays exactly on today, i.e. numbers that become visible
// today. The result is sorted.
func ExpiringOn(snap model.Snapshot, today time.Time) []string {
	reg := NewRegistry(snap)
	var out []string
	for phone, dates := range reg.JoiningDates {
		if len(dates) == 0 {
			continue
		}
		earliest := dates[0]
		for _, d := range dates[1:] {
			if d.Before(earliest) {
				earliest = d
			}
		}
		if DaysSince(earliest, today) == CooldownDays {
			out = append(out, phone)
		}
	}
	sort.Strings(out)
	return out
}
