package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobmate/visibility-service/internal/model"
)

// Filter narrows a report page. Zero values mean "no filter".
type Filter struct {
	ClientName string
	Status     string // raw remark, matched case-insensitively
	Offset     int
	Limit      int
}

// PGStore loads candidate-job snapshots from the CRM database.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a PGStore backed by pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// recordSelect yields one row per candidate-job with its revenue joining
// dates, most recent entry first. Legacy rows store joining_date as text and
// may hold '0000-00-00'; parsing is left to the model package.
const recordSelect = `
	SELECT cj.id::text, cj.candidate_id::text, COALESCE(c.name, ''), COALESCE(cj.client_name, ''),
	       COALESCE(c.phone1, ''), COALESCE(c.phone2, ''), COALESCE(cj.remark, ''),
	       COALESCE(
	         array_agg(COALESCE(r.joining_date, '') ORDER BY r.created_at DESC)
	           FILTER (WHERE r.id IS NOT NULL),
	         '{}')
	FROM candidate_jobs cj
	JOIN candidates c ON c.id = cj.candidate_id
	LEFT JOIN revenues r ON r.candidate_job_id = cj.id`

const joinedOnQuery = `
	WITH latest AS (
	  SELECT DISTINCT ON (candidate_job_id) candidate_job_id, joining_date
	  FROM revenues
	  ORDER BY candidate_job_id, created_at DESC
	)` + recordSelect + `
	WHERE cj.id IN (SELECT candidate_job_id FROM latest WHERE left(trim(joining_date), 10) = $1)
	GROUP BY cj.id, c.id
	ORDER BY cj.id`

// ListCandidateJobs returns one page of the candidate report, newest first.
func (s *PGStore) ListCandidateJobs(ctx context.Context, f Filter) (model.Snapshot, error) {
	rows, err := s.pool.Query(ctx, recordSelect+`
		WHERE ($1::text = '' OR cj.client_name = $1)
		  AND ($2::text = '' OR lower(trim(cj.remark)) = lower(trim($2)))
		GROUP BY cj.id, c.id
		ORDER BY cj.updated_at DESC, cj.id DESC
		LIMIT $3 OFFSET $4`,
		f.ClientName, f.Status, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listCandidateJobs query: %w", err)
	}
	return scanSnapshot(rows)
}

// ListJoinedOn returns every candidate-job whose most recent revenue entry
// carries the given joining date. Only the date part of the stored text is
// compared, so timestamp forms match too.
func (s *PGStore) ListJoinedOn(ctx context.Context, day time.Time) (model.Snapshot, error) {
	rows, err := s.pool.Query(ctx, joinedOnQuery, model.FormatDate(day))
	if err != nil {
		return nil, fmt.Errorf("listJoinedOn query: %w", err)
	}
	return scanSnapshot(rows)
}

func scanSnapshot(rows pgx.Rows) (model.Snapshot, error) {
	defer rows.Close()

	snap := make(model.Snapshot, 0)
	for rows.Next() {
		var (
			rec            model.CandidateJobRecord
			jobID, id      string
			phone1, phone2 string
			remark         string
			joiningDates   []string
		)
		if err := rows.Scan(
			&jobID, &id, &rec.CandidateName, &rec.ClientName,
			&phone1, &phone2, &remark, &joiningDates,
		); err != nil {
			return nil, fmt.Errorf("scan candidate job: %w", err)
		}
		rec.JobID = model.ID(jobID)
		rec.CandidateID = model.ID(id)
		rec.Phone1 = model.RawPhone(phone1)
		rec.Phone2 = model.RawPhone(phone2)
		rec.Status = model.ParseStatus(remark)
		for _, d := range joiningDates {
			rec.RevenueEntries = append(rec.RevenueEntries, model.RevenueEntry{JoiningDate: d})
		}
		snap = append(snap, rec)
	}
	return snap, rows.Err()
}
