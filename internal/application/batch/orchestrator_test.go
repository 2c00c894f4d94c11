package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

type fakeUploader struct {
	failPaths map[string]bool
	uploaded  []string
}

func (f *fakeUploader) Upload(ctx context.Context, path string) (string, error) {
	if f.failPaths[path] {
		return "", errors.New("storage rejected upload")
	}
	f.uploaded = append(f.uploaded, path)
	return "https://cdn.example.com/" + path, nil
}

type fakeAnalyzer struct {
	failVariants map[string]bool
	calls        []string // "<url>|<variant>"
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, imageURL, variant string) (json.RawMessage, string, error) {
	f.calls = append(f.calls, imageURL+"|"+variant)
	if f.failVariants[variant] {
		return nil, "", errors.New("analyze failed")
	}
	return json.RawMessage(fmt.Sprintf(`{"variant":%q}`, variant)), "scout-model-id", nil
}

func newOrchestrator() (*Orchestrator, *fakeUploader, *fakeAnalyzer) {
	up := &fakeUploader{failPaths: map[string]bool{}}
	an := &fakeAnalyzer{failVariants: map[string]bool{}}
	return &Orchestrator{Uploads: up, Analyzer: an}, up, an
}

func TestRun_DrivesItemThroughAllStages(t *testing.T) {
	t.Parallel()
	orch, _, an := newOrchestrator()
	it := orch.Add("truck-front.jpg", "truck-rear.jpg")

	if done := orch.Run(context.Background()); done != 1 {
		t.Fatalf("done = %d", done)
	}
	if it.Status != StatusComplete || it.Progress != 100 {
		t.Errorf("item ended %s at %d%%", it.Status, it.Progress)
	}
	want := []string{
		"https://cdn.example.com/truck-front.jpg|fitment",
		"https://cdn.example.com/truck-front.jpg|product",
	}
	if len(an.calls) != 2 || an.calls[0] != want[0] || an.calls[1] != want[1] {
		t.Errorf("analyze calls = %v, want %v", an.calls, want)
	}
	if string(it.Fitment) != `{"variant":"fitment"}` {
		t.Errorf("fitment = %s", it.Fitment)
	}
}

func TestRun_ProcessesItemsInOrder(t *testing.T) {
	t.Parallel()
	orch, up, _ := newOrchestrator()
	orch.Add("a.jpg")
	orch.Add("b.jpg")
	orch.Add("c.jpg")

	orch.Run(context.Background())

	want := []string{"a.jpg", "b.jpg", "c.jpg"}
	if len(up.uploaded) != 3 {
		t.Fatalf("uploaded %v", up.uploaded)
	}
	for i := range want {
		if up.uploaded[i] != want[i] {
			t.Errorf("upload order = %v, want %v", up.uploaded, want)
			break
		}
	}
}

func TestRun_ErroredItemDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	orch, up, _ := newOrchestrator()
	up.failPaths["bad.jpg"] = true
	bad := orch.Add("bad.jpg")
	good := orch.Add("good.jpg")

	if done := orch.Run(context.Background()); done != 1 {
		t.Fatalf("done = %d", done)
	}
	if bad.Status != StatusError || bad.Err == "" {
		t.Errorf("bad item: %s %q", bad.Status, bad.Err)
	}
	if good.Status != StatusComplete {
		t.Errorf("good item blocked: %s", good.Status)
	}
}

func TestRun_ProgressIsMonotonic(t *testing.T) {
	t.Parallel()
	orch, _, _ := newOrchestrator()
	it := orch.Add("one.jpg", "two.jpg", "three.jpg")

	last := -1
	orch.OnProgress = func(got *Item) {
		if got.Progress < last {
			t.Errorf("progress went backwards: %d -> %d", last, got.Progress)
		}
		last = got.Progress
	}
	orch.Run(context.Background())
	if it.Progress != 100 {
		t.Errorf("final progress %d", it.Progress)
	}
}

func TestRun_AnalyzeFailureMarksItem(t *testing.T) {
	t.Parallel()
	orch, _, an := newOrchestrator()
	an.failVariants["product"] = true
	it := orch.Add("one.jpg")

	orch.Run(context.Background())
	if it.Status != StatusError {
		t.Fatalf("status %s", it.Status)
	}
	if it.Fitment == nil {
		t.Error("fitment result should survive a product-pass failure")
	}
}

func TestRetry_ResetsProgressAndRequeues(t *testing.T) {
	t.Parallel()
	orch, up, _ := newOrchestrator()
	up.failPaths["flaky.jpg"] = true
	it := orch.Add("flaky.jpg")

	orch.Run(context.Background())
	if it.Status != StatusError {
		t.Fatalf("precondition: %s", it.Status)
	}

	if err := it.Retry(); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if it.Status != StatusPending || it.Progress != 0 || it.Err != "" {
		t.Errorf("retry left item %s %d%% %q", it.Status, it.Progress, it.Err)
	}

	delete(up.failPaths, "flaky.jpg")
	if done := orch.Run(context.Background()); done != 1 {
		t.Errorf("retried item did not complete")
	}
}

func TestRetry_OnlyFromError(t *testing.T) {
	t.Parallel()
	it := newItem([]string{"a.jpg"})
	if err := it.Retry(); err == nil {
		t.Error("retry from pending should be rejected")
	}
}

func TestRun_QualityGateFailure(t *testing.T) {
	t.Parallel()
	orch, _, an := newOrchestrator()
	orch.Quality = qualityFunc(func(ctx context.Context, urls []string) error {
		return errors.New("image too blurry")
	})
	it := orch.Add("blurry.jpg")

	orch.Run(context.Background())
	if it.Status != StatusError {
		t.Fatalf("status %s", it.Status)
	}
	if len(an.calls) != 0 {
		t.Errorf("analysis ran despite failed quality gate")
	}
}

type qualityFunc func(ctx context.Context, urls []string) error

func (f qualityFunc) Check(ctx context.Context, urls []string) error { return f(ctx, urls) }
