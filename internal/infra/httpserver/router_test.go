package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/application/analyzer"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/analysis"
	domuploads "github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/uploads"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/infra/httpserver"
)

type fakeAnalyzer struct {
	res   *analyzer.Result
	err   error
	calls int
	gotV  analyzer.Variant
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, imageURL string, v analyzer.Variant) (*analyzer.Result, error) {
	f.calls++
	f.gotV = v
	if strings.TrimSpace(imageURL) == "" {
		return nil, &analysis.ValidationError{Field: "imageUrl"}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

type fakeSlots struct {
	err error
}

func (f *fakeSlots) Request(ctx context.Context, fileName, contentType string) (*domuploads.Slot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domuploads.Slot{
		SignedURL: "https://store.example.com/presigned/" + fileName,
		Path:      fileName,
		PublicURL: "https://cdn.example.com/" + fileName,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

type fakeRepo struct {
	records []*analysis.Record
}

func (f *fakeRepo) Save(ctx context.Context, rec *analysis.Record) error { return nil }
func (f *fakeRepo) Paginate(ctx context.Context, page, pageSize int) ([]*analysis.Record, error) {
	return f.records, nil
}

func newTestServer(a httpserver.AnalyzerService) *httptest.Server {
	return httptest.NewServer(httpserver.NewRouter(a, &fakeSlots{}, &fakeRepo{}))
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestAnalyzeEndpoint_Success(t *testing.T) {
	t.Parallel()
	fa := &fakeAnalyzer{res: &analyzer.Result{
		Tier:      analysis.TierSniper,
		ModelUsed: "sniper-model-id",
		Finding: analysis.Finding{
			Raw:        json.RawMessage(`{"part_name":"ARB Summit Bumper","manufacturer_guess":"ARB","confidence_score":93,"seo_optimized_alt_text":"ARB Summit steel front bumper"}`),
			Confidence: 93,
		},
	}}
	ts := newTestServer(fa)
	defer ts.Close()

	resp, out := postJSON(t, ts.URL+"/api/analyze", `{"imageUrl":"https://example.com/bumper.jpg"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if out["success"] != true {
		t.Errorf("success = %v", out["success"])
	}
	if out["model_used"] != "sniper-model-id" {
		t.Errorf("model_used = %v", out["model_used"])
	}
	data, _ := out["data"].(map[string]any)
	if data["part_name"] != "ARB Summit Bumper" {
		t.Errorf("data.part_name = %v", data["part_name"])
	}
	if fa.gotV.Name != "part" {
		t.Errorf("default variant = %q, want part", fa.gotV.Name)
	}
}

func TestAnalyzeEndpoint_MissingImageURL(t *testing.T) {
	t.Parallel()
	ts := newTestServer(&fakeAnalyzer{})
	defer ts.Close()

	resp, out := postJSON(t, ts.URL+"/api/analyze", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
	if out["error"] != "Missing required field: imageUrl" {
		t.Errorf("error = %v", out["error"])
	}
	if out["success"] != false {
		t.Errorf("success = %v", out["success"])
	}
}

func TestAnalyzeEndpoint_UnknownVariant(t *testing.T) {
	t.Parallel()
	fa := &fakeAnalyzer{}
	ts := newTestServer(fa)
	defer ts.Close()

	resp, _ := postJSON(t, ts.URL+"/api/analyze", `{"imageUrl":"https://example.com/a.jpg","variant":"bodykit"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
	if fa.calls != 0 {
		t.Errorf("analyzer called %d times for invalid input", fa.calls)
	}
}

func TestAnalyzeEndpoint_ScoutFormatErrorIs502WithRaw(t *testing.T) {
	t.Parallel()
	fa := &fakeAnalyzer{err: &analysis.FormatError{
		Tier:   analysis.TierScout,
		Raw:    "I think it's a bumper",
		Reason: "invalid JSON",
	}}
	ts := newTestServer(fa)
	defer ts.Close()

	resp, out := postJSON(t, ts.URL+"/api/analyze", `{"imageUrl":"https://example.com/bumper.jpg"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status %d, want 502", resp.StatusCode)
	}
	if out["error"] != "Scout model returned invalid JSON" {
		t.Errorf("error = %v", out["error"])
	}
	if out["raw"] != "I think it's a bumper" {
		t.Errorf("raw = %v", out["raw"])
	}
}

func TestAnalyzeEndpoint_InternalErrorIs500(t *testing.T) {
	t.Parallel()
	fa := &fakeAnalyzer{err: &analysis.InferenceError{Tier: analysis.TierScout, Err: context.DeadlineExceeded}}
	ts := newTestServer(fa)
	defer ts.Close()

	resp, out := postJSON(t, ts.URL+"/api/analyze", `{"imageUrl":"https://example.com/bumper.jpg"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", resp.StatusCode)
	}
	if out["success"] != false {
		t.Errorf("success = %v", out["success"])
	}
}

func TestAnalyzeEndpoint_BlocksInternalHosts(t *testing.T) {
	t.Parallel()
	fa := &fakeAnalyzer{}
	ts := newTestServer(fa)
	defer ts.Close()

	resp, _ := postJSON(t, ts.URL+"/api/analyze", `{"imageUrl":"http://127.0.0.1:9000/internal.jpg"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
	if fa.calls != 0 {
		t.Errorf("analyzer reached for blocked URL")
	}
}

func TestUploadsEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(&fakeAnalyzer{})
	defer ts.Close()

	resp, out := postJSON(t, ts.URL+"/api/uploads", `{"fileName":"uploads/abc-truck.jpg","contentType":"image/jpeg"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if out["path"] != "uploads/abc-truck.jpg" {
		t.Errorf("path = %v", out["path"])
	}
	if !strings.HasPrefix(out["signedUrl"].(string), "https://store.example.com/presigned/") {
		t.Errorf("signedUrl = %v", out["signedUrl"])
	}

	resp, out = postJSON(t, ts.URL+"/api/uploads", `{"contentType":"image/jpeg"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
	if out["error"] != "Missing required field: fileName" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestAnalysesEndpoint_EmptyListIsArray(t *testing.T) {
	t.Parallel()
	ts := newTestServer(&fakeAnalyzer{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/analyses?page=1&page_size=5000")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.Data == nil {
		t.Errorf("expected success with empty array, got %+v", out)
	}
}
