// Package visibility decides, for each candidate phone number in a report,
// whether it is shown in full or redacted, and explains why.
//
// Everything here is a pure function of a model.Snapshot and a "today" date.
// Nothing is cached between calls; callers that want memoization key it on
// both inputs.
package visibility

import (
	"strings"

	"golang.org/x/text/width"

	"jobmate/visibility-service/internal/model"
)

// minMaskLength is the shortest number worth redacting.
const minMaskLength = 6

// placeholders are raw values that mean "no number was entered".
var placeholders = map[string]struct{}{
	"":     {},
	"-":    {},
	"null": {},
	"nil":  {},
	"nill": {},
}

// NormalizePhone canonicalises a raw phone field into its digits.
// The second result is false when the field is absent: a placeholder, or
// text with no digits at all.
func NormalizePhone(raw model.RawPhone) (string, bool) {
	s := strings.TrimSpace(string(raw))
	if _, ok := placeholders[strings.ToLower(s)]; ok {
		return "", false
	}

	// Full-width digits (０-９) come in from some mobile keyboards.
	s = width.Narrow.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// MaskPhone redacts a digit string, keeping the first two and last two digits
// and replacing each digit in between with 'x'. Numbers shorter than six
// digits are returned unchanged.
func MaskPhone(digits string) string {
	if len(digits) < minMaskLength {
		return digits
	}
	return digits[:2] + strings.Repeat("x", len(digits)-4) + digits[len(digits)-2:]
}

// phonesOf returns the present, normalised numbers of a record.
func phonesOf(rec model.CandidateJobRecord) []string {
	out := make([]string, 0, 2)
	if p, ok := NormalizePhone(rec.Phone1); ok {
		out = append(out, p)
	}
	if p, ok := NormalizePhone(rec.Phone2); ok {
		out = append(out, p)
	}
	return out
}

// hasPhone reports whether either slot of rec normalises to phone.
func hasPhone(rec model.CandidateJobRecord, phone string) bool {
	for _, p := range phonesOf(rec) {
		if p == phone {
			return true
		}
	}
	return false
}
