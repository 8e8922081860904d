package visibility_test

import (
	"time"

	"jobmate/visibility-service/internal/model"
)

var today = time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)

// daysAgo renders the joining date n days before today.
func daysAgo(n int) string {
	return model.FormatDate(today.AddDate(0, 0, -n))
}

func record(id, name, client, phone string, st model.Status, joined ...string) model.CandidateJobRecord {
	rec := model.CandidateJobRecord{
		CandidateID:   model.ID(id),
		CandidateName: name,
		ClientName:    client,
		Phone1:        model.RawPhone(phone),
		Status:        st,
	}
	for _, d := range joined {
		rec.RevenueEntries = append(rec.RevenueEntries, model.RevenueEntry{JoiningDate: d})
	}
	return rec
}
