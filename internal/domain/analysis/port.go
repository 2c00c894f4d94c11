package analysis

import "context"

// Repository port for persisting and querying analysis records
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	Paginate(ctx context.Context, page, pageSize int) ([]*Record, error)
}
