package batch

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Status represents the lifecycle of a batch item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusUploading    Status = "uploading"
	StatusQualityCheck Status = "quality_check"
	StatusAnalyzing    Status = "analyzing"
	StatusComplete     Status = "complete"
	StatusError        Status = "error"
)

// Allowed forward transitions. Error is reachable from every in-flight
// state; retry is the only path out of it.
var transitions = map[Status][]Status{
	StatusPending:      {StatusUploading, StatusError},
	StatusUploading:    {StatusQualityCheck, StatusError},
	StatusQualityCheck: {StatusAnalyzing, StatusError},
	StatusAnalyzing:    {StatusComplete, StatusError},
	StatusError:        {StatusPending},
}

// Item is one user-submitted unit of work: one or more images treated
// as a single subject. Items exist only for the lifetime of the batch;
// no server-side counterpart persists their identity.
type Item struct {
	ID       string
	Images   []string
	Status   Status
	Progress int

	// Per-aspect results from the analyze endpoint.
	Fitment  json.RawMessage
	Products json.RawMessage

	// ModelUsed records the tier identifier of the fitment pass.
	ModelUsed string

	Err string
}

func newItem(images []string) *Item {
	return &Item{
		ID:     uuid.New().String(),
		Images: images,
		Status: StatusPending,
	}
}

func (it *Item) advance(to Status) error {
	for _, next := range transitions[it.Status] {
		if next == to {
			it.Status = to
			return nil
		}
	}
	return fmt.Errorf("batch: invalid transition %s -> %s", it.Status, to)
}

// setProgress keeps progress monotonically non-decreasing while the
// item is in flight. Only Retry resets it.
func (it *Item) setProgress(p int) {
	if p > 100 {
		p = 100
	}
	if p > it.Progress {
		it.Progress = p
	}
}

func (it *Item) fail(err error) {
	it.Err = err.Error()
	it.Status = StatusError
}

// Retry returns an errored item to the queue and resets its progress.
func (it *Item) Retry() error {
	if err := it.advance(StatusPending); err != nil {
		return err
	}
	it.Progress = 0
	it.Err = ""
	return nil
}
