package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
)

// Uploader pushes one local image to storage and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Analyzer invokes the cascading analyze endpoint for one image URL and
// variant, returning the finding and the model identifier used.
type Analyzer interface {
	Analyze(ctx context.Context, imageURL, variant string) (json.RawMessage, string, error)
}

// QualityChecker gates an item's uploaded images before analysis.
type QualityChecker interface {
	Check(ctx context.Context, urls []string) error
}

// Orchestrator drives each item through upload -> quality check ->
// fitment analysis -> product analysis. Items are processed strictly
// sequentially to respect upstream rate limits; this is a deliberate
// throughput/latency tradeoff.
type Orchestrator struct {
	Uploads  Uploader
	Analyzer Analyzer
	Quality  QualityChecker // optional

	// OnProgress, when set, is called after every item mutation.
	OnProgress func(*Item)

	items []*Item
}

// Add enqueues one item covering the given image paths.
func (o *Orchestrator) Add(images ...string) *Item {
	it := newItem(images)
	o.items = append(o.items, it)
	return it
}

// Items returns the ordered queue.
func (o *Orchestrator) Items() []*Item { return o.items }

// Run processes every pending item in order. A failing item is marked
// errored and does not block the ones after it. Returns the number of
// items that completed.
func (o *Orchestrator) Run(ctx context.Context) int {
	done := 0
	for _, it := range o.items {
		if it.Status != StatusPending {
			continue
		}
		if err := ctx.Err(); err != nil {
			it.fail(err)
			o.notify(it)
			continue
		}
		if err := o.process(ctx, it); err != nil {
			log.Printf("batch: item %s failed: %v", it.ID, err)
			it.fail(err)
		} else {
			done++
		}
		o.notify(it)
	}
	return done
}

func (o *Orchestrator) process(ctx context.Context, it *Item) error {
	if err := it.advance(StatusUploading); err != nil {
		return err
	}
	o.notify(it)

	urls := make([]string, 0, len(it.Images))
	for i, path := range it.Images {
		url, err := o.Uploads.Upload(ctx, path)
		if err != nil {
			return fmt.Errorf("upload %s: %w", filepath.Base(path), err)
		}
		urls = append(urls, url)
		it.setProgress(10 + (i+1)*40/len(it.Images))
		o.notify(it)
	}

	if err := it.advance(StatusQualityCheck); err != nil {
		return err
	}
	it.setProgress(55)
	o.notify(it)
	if o.Quality != nil {
		if err := o.Quality.Check(ctx, urls); err != nil {
			return fmt.Errorf("quality check: %w", err)
		}
	}

	if err := it.advance(StatusAnalyzing); err != nil {
		return err
	}
	o.notify(it)

	// Multi-aspect analysis on the primary image: fitment first, then
	// shoppable products.
	fitment, model, err := o.Analyzer.Analyze(ctx, urls[0], "fitment")
	if err != nil {
		return fmt.Errorf("fitment analysis: %w", err)
	}
	it.Fitment = fitment
	it.ModelUsed = model
	it.setProgress(75)
	o.notify(it)

	products, _, err := o.Analyzer.Analyze(ctx, urls[0], "product")
	if err != nil {
		return fmt.Errorf("product analysis: %w", err)
	}
	it.Products = products
	it.setProgress(95)
	o.notify(it)

	if err := it.advance(StatusComplete); err != nil {
		return err
	}
	it.setProgress(100)
	return nil
}

func (o *Orchestrator) notify(it *Item) {
	if o.OnProgress != nil {
		o.OnProgress(it)
	}
}
