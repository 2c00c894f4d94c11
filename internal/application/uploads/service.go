package uploads

import (
	"context"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/uploads"
)

// Service brokers direct-to-storage uploads. No side effects occur
// until the client actually PUTs bytes against the signed URL.
type Service struct {
	issuer uploads.Issuer
}

func NewService(issuer uploads.Issuer) *Service {
	return &Service{issuer: issuer}
}

// Request issues a signed slot for fileName. Uniqueness of fileName is
// the caller's responsibility; collisions overwrite.
func (s *Service) Request(ctx context.Context, fileName, contentType string) (*uploads.Slot, error) {
	return s.issuer.IssueSlot(ctx, fileName, contentType)
}
