package visibility

import (
	"errors"
	"time"

	"jobmate/visibility-service/internal/model"
)

// MaskedContactMessage is shown to a recruiter who tries to open a messaging
// app on a redacted number.
const MaskedContactMessage = "Cannot open messaging for masked number"

// ErrMaskedContact is returned by ContactLink for masked decisions.
var ErrMaskedContact = errors.New("cannot open messaging for masked number")

// messagingBaseURL is the click-through target for visible numbers.
const messagingBaseURL = "https://wa.me/"

// Decision is what the report shows for one phone slot.
type Decision struct {
	Slot         Slot   `json:"slot"`
	Masked       bool   `json:"masked"`
	DisplayValue string `json:"displayValue"`
	Explanation  string `json:"explanation"`
	Reason       Reason `json:"reason"`

	// Phone is the normalised number. It never leaves the service.
	Phone string `json:"-"`
}

// RecordVisibility groups the decisions of one record. A nil slot had no
// number to decide on.
type RecordVisibility struct {
	CandidateID model.ID  `json:"candidateId"`
	Phone1      *Decision `json:"phone1"`
	Phone2      *Decision `json:"phone2"`
}

// Slot returns the decision for s, or nil.
func (rv RecordVisibility) Slot(s Slot) *Decision {
	if s == SlotPhone2 {
		return rv.Phone2
	}
	return rv.Phone1
}

// Decide evaluates every phone slot of every record in snap. The result has
// one entry per record, in snapshot order.
func Decide(snap model.Snapshot, today time.Time) []RecordVisibility {
	reg := NewRegistry(snap)
	out := make([]RecordVisibility, len(snap))
	for i, rec := range snap {
		rv := RecordVisibility{CandidateID: rec.CandidateID}
		for _, slot := range Slots {
			d, ok := DecideSlot(snap, i, slot, reg, today)
			if !ok {
				continue
			}
			if slot == SlotPhone1 {
				rv.Phone1 = &d
			} else {
				rv.Phone2 = &d
			}
		}
		out[i] = rv
	}
	return out
}

// DecideSlot produces the decision for one slot of the record at index idx.
// reg must have been built from snap.
func DecideSlot(snap model.Snapshot, idx int, slot Slot, reg Registry, today time.Time) (Decision, bool) {
	rec := snap[idx]
	v, ok := Evaluate(rec, slot, reg, today)
	if !ok {
		return Decision{}, false
	}

	d := Decision{
		Slot:         slot,
		Masked:       v.Masked,
		DisplayValue: string(slot.raw(rec)),
		Explanation:  Explain(snap, idx, v, reg),
		Reason:       v.Reason,
		Phone:        v.Phone,
	}
	if v.Masked {
		d.DisplayValue = MaskPhone(v.Phone)
	}
	return d, true
}

// ContactLink returns the messaging link for a visible number. Masked
// decisions are refused with ErrMaskedContact even when the display value
// was too short to redact.
func ContactLink(d Decision) (string, error) {
	if d.Masked {
		return "", ErrMaskedContact
	}
	return messagingBaseURL + d.Phone, nil
}
