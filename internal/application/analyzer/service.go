package analyzer

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/application"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/analysis"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/vision"
)

// DefaultThreshold is the scout confidence cutoff. A score at or below
// it escalates to the sniper pass; strictly above it accepts the scout.
const DefaultThreshold = 85

// Fetcher retrieves an image URL as inline bytes for inference.
type Fetcher interface {
	FetchInline(ctx context.Context, url string) (vision.ImagePart, error)
}

// Service implements the cascading confidence-gated pipeline:
// fetch -> scout -> threshold gate -> sniper -> best-effort persist.
// Safe for concurrent use; all fields are read-only after construction.
type Service struct {
	Engine  vision.Engine
	Fetcher Fetcher
	Repo    analysis.Repository
	Clock   application.Clock

	ScoutModel  string
	SniperModel string

	// Threshold overrides DefaultThreshold when non-zero.
	Threshold int

	// InferTimeout bounds each inference call. Unbounded waits on a
	// user-facing request are unacceptable; zero falls back to 2m.
	InferTimeout time.Duration
}

// Result is the accepted outcome of one analyze call.
type Result struct {
	Tier      analysis.ModelTier
	ModelUsed string
	Finding   analysis.Finding
	// RefinementFailed notes that a sniper pass ran but its output was
	// discarded as unparseable, so the scout finding stands.
	RefinementFailed bool
}

// Analyze runs the cascade for one image URL. The scout pass must parse
// before the sniper is ever invoked; a scout parse failure is fatal to
// the request, a sniper parse failure falls back to the scout result.
func (s *Service) Analyze(ctx context.Context, imageURL string, v Variant) (*Result, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, &analysis.ValidationError{Field: "imageUrl"}
	}

	img, err := s.Fetcher.FetchInline(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	scoutText, err := s.generate(ctx, s.ScoutModel, v, img)
	if err != nil {
		return nil, &analysis.InferenceError{Tier: analysis.TierScout, Err: err}
	}
	scout, err := parseFinding(analysis.TierScout, scoutText, v)
	if err != nil {
		// No escalation and no persistence when the screening tier
		// itself is unusable.
		return nil, err
	}

	res := &Result{Tier: analysis.TierScout, ModelUsed: s.ScoutModel, Finding: *scout}

	// Strict <= on purpose: a score exactly at the threshold still
	// escalates.
	if scout.Confidence <= s.threshold() {
		sniperText, err := s.generate(ctx, s.SniperModel, v, img)
		if err != nil {
			return nil, &analysis.InferenceError{Tier: analysis.TierSniper, Err: err}
		}
		if sniper, perr := parseFinding(analysis.TierSniper, sniperText, v); perr == nil {
			res = &Result{Tier: analysis.TierSniper, ModelUsed: s.SniperModel, Finding: *sniper}
		} else {
			log.Printf("analyze: sniper refinement discarded url=%s: %v", imageURL, perr)
			res.RefinementFailed = true
		}
	}

	s.persist(ctx, imageURL, v, res)
	return res, nil
}

func (s *Service) generate(ctx context.Context, model string, v Variant, img vision.ImagePart) (string, error) {
	timeout := s.InferTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := s.Engine.Generate(ctx, vision.Request{Model: model, Prompt: v.Prompt, Image: img})
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", ctx.Err()
	}
	return text, err
}

// persist is fire-and-forget with respect to the caller's success path:
// a storage failure is logged, never surfaced.
func (s *Service) persist(ctx context.Context, imageURL string, v Variant, res *Result) {
	if s.Repo == nil {
		return
	}
	rec := &analysis.Record{
		ID:        analysis.RecordID(uuid.New().String()),
		ImageURL:  imageURL,
		Variant:   v.Name,
		Result:    string(res.Finding.Raw),
		ModelUsed: res.ModelUsed,
		CreatedAt: s.now(),
	}
	if err := s.Repo.Save(ctx, rec); err != nil {
		log.Printf("analyze: record save failed url=%s model=%s: %v", imageURL, res.ModelUsed, err)
	}
}

func (s *Service) threshold() int {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return DefaultThreshold
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}
