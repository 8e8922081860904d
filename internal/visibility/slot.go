package visibility

import (
	"fmt"

	"jobmate/visibility-service/internal/model"
)

// Slot names one of the two phone fields of a record.
type Slot string

const (
	SlotPhone1 Slot = "phone1"
	SlotPhone2 Slot = "phone2"
)

// Slots lists both slots in display order.
var Slots = []Slot{SlotPhone1, SlotPhone2}

// ParseSlot converts a raw string to a Slot, returning an error for unknown
// values.
func ParseSlot(s string) (Slot, error) {
	switch sl := Slot(s); sl {
	case SlotPhone1, SlotPhone2:
		return sl, nil
	}
	return "", fmt.Errorf("unknown phone slot %q", s)
}

// raw returns the unnormalised value stored in this slot of rec.
func (s Slot) raw(rec model.CandidateJobRecord) model.RawPhone {
	if s == SlotPhone2 {
		return rec.Phone2
	}
	return rec.Phone1
}
