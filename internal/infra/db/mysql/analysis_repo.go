package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an analysis record. Records are insert-only; the
// pipeline never updates or deletes them.
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO analysis_results
  (id, image_url, variant, analysis_data, model_used, created_at)
VALUES (?,?,?,?,?,?);
`
	imageURL := stringOrDash(rec.ImageURL)
	variant := stringOrDash(rec.Variant)
	result := rec.Result
	if strings.TrimSpace(result) == "" {
		// analysis_data column requires valid JSON; use empty object
		result = "{}"
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, rec.ID, imageURL, variant, result, rec.ModelUsed, createdAt)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Record, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, image_url, variant, analysis_data, model_used, created_at
FROM analysis_results
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var rec domain.Record
		var created time.Time
		if err := rows.Scan(&rec.ID, &rec.ImageURL, &rec.Variant, &rec.Result, &rec.ModelUsed, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt = created
		out = append(out, &rec)
	}
	return out, rows.Err()
}
