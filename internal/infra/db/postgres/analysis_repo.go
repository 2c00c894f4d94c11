package postgres

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

// Save inserts an analysis record (insert-only, see mysql adapter)
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO analysis_results
  (id, image_url, variant, analysis_data, model_used, created_at)
VALUES ($1,$2,$3,$4,$5,$6);
`
	imageURL := stringOrDash(rec.ImageURL)
	variant := stringOrDash(rec.Variant)
	result := rec.Result
	if strings.TrimSpace(result) == "" {
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
LIMIT $1 OFFSET $2;
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

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
