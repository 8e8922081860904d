package visibility

import (
	"time"

	"jobmate/visibility-service/internal/model"
)

// CooldownDays is how long after a joining date a number stays protected.
const CooldownDays = 100

// Reason records which rule produced a masking verdict.
type Reason string

const (
	ReasonNone            Reason = "NONE"
	ReasonCooldownExpired Reason = "COOLDOWN_EXPIRED"
	ReasonRecentlyJoined  Reason = "RECENTLY_JOINED"
	ReasonTakenByAnother  Reason = "TAKEN_BY_ANOTHER"
)

// Verdict is the outcome of evaluating one phone slot of one record.
type Verdict struct {
	Phone  string
	Masked bool
	Reason Reason
}

// Evaluate applies the masking rules to one slot of rec. The rules are tried
// in this order and the first match wins:
//
//  1. a recorded joining date for the number is CooldownDays or more old: shown
//  2. rec's own joining date is less than CooldownDays old: masked
//  3. the number belongs to a Joined record: masked
//  4. otherwise: shown
//
// The second result is false when the slot holds no number; no verdict is
// produced for it.
func Evaluate(rec model.CandidateJobRecord, slot Slot, reg Registry, today time.Time) (Verdict, bool) {
	phone, ok := NormalizePhone(slot.raw(rec))
	if !ok {
		return Verdict{}, false
	}

	v := Verdict{Phone: phone}
	switch {
	case reg.cooldownExpired(phone, today):
		v.Reason = ReasonCooldownExpired
	case recentlyJoined(rec, today):
		v.Masked, v.Reason = true, ReasonRecentlyJoined
	case reg.IsTaken(phone):
		v.Masked, v.Reason = true, ReasonTakenByAnother
	default:
		v.Reason = ReasonNone
	}
	return v, true
}

// ShouldMask is Evaluate reduced to its masking flag. Absent slots are never
// masked.
func ShouldMask(rec model.CandidateJobRecord, slot Slot, reg Registry, today time.Time) bool {
	v, ok := Evaluate(rec, slot, reg, today)
	return ok && v.Masked
}

func recentlyJoined(rec model.CandidateJobRecord, today time.Time) bool {
	date, ok := rec.JoiningDate()
	return ok && DaysSince(date, today) < CooldownDays
}
