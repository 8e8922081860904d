package visibility

import (
	"fmt"
	"time"

	"jobmate/visibility-service/internal/model"
)

const (
	defaultExplanation  = "Phone number"
	cooldownExplanation = "100 days completed — full number visible"
	doNotContact        = ", Don't contact them"
)

// Explain justifies the verdict for the record at index owner of snap.
//
// The owner's own Joined or Abscond history is reported first. Failing that,
// when the number is claimed elsewhere (and the cooldown did not release it),
// the first Joined record sharing the number is named, then the first Abscond
// one. Ties always go to the earliest record in snap.
func Explain(snap model.Snapshot, owner int, v Verdict, reg Registry) string {
	rec := snap[owner]

	if date, ok := rec.JoiningDate(); ok {
		switch {
		case model.IsJoined(rec.Status):
			msg := joinedOn(rec, date)
			if v.Masked {
				msg += doNotContact
			}
			return msg
		case model.IsAbscond(rec.Status):
			return joinedOn(rec, date) + " but absconded"
		}
	}

	if v.Reason != ReasonCooldownExpired &&
		(reg.IsTaken(v.Phone) || sharedWith(snap, owner, v.Phone, model.StatusAbscond) >= 0) {
		if i := sharedWith(snap, owner, v.Phone, model.StatusJoined); i >= 0 {
			return describe(snap[i]) + doNotContact
		}
		if i := sharedWith(snap, owner, v.Phone, model.StatusAbscond); i >= 0 {
			return describe(snap[i]) + " but absconded" + doNotContact
		}
		return rec.CandidateName + " is joined elsewhere" + doNotContact
	}

	if v.Reason == ReasonCooldownExpired {
		return cooldownExplanation
	}
	return defaultExplanation
}

// sharedWith returns the index of the first record other than owner whose
// status is st and which carries phone, or -1.
func sharedWith(snap model.Snapshot, owner int, phone string, st model.Status) int {
	for i, rec := range snap {
		if i == owner || rec.Status != st {
			continue
		}
		if hasPhone(rec, phone) {
			return i
		}
	}
	return -1
}

func joinedOn(rec model.CandidateJobRecord, date time.Time) string {
	return fmt.Sprintf("%s joined on %s in %s", rec.CandidateName, model.FormatDate(date), rec.ClientName)
}

// describe names another candidate's placement. Records without a usable
// joining date are still reported, just without the date.
func describe(rec model.CandidateJobRecord) string {
	if date, ok := rec.JoiningDate(); ok {
		return joinedOn(rec, date)
	}
	return fmt.Sprintf("%s joined in %s", rec.CandidateName, rec.ClientName)
}
