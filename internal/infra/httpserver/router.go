package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/application/analyzer"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/analysis"
	domuploads "github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/uploads"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/vision"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/middleware"
)

// AnalyzerService is the cascade entry point the router depends on.
// Narrow interfaces here so tests substitute fakes.
type AnalyzerService interface {
	Analyze(ctx context.Context, imageURL string, v analyzer.Variant) (*analyzer.Result, error)
}

// SlotService issues signed upload slots.
type SlotService interface {
	Request(ctx context.Context, fileName, contentType string) (*domuploads.Slot, error)
}

type Router struct {
	analyzerSvc AnalyzerService
	uploadsSvc  SlotService
	repo        analysis.Repository
}

func NewRouter(analyzerSvc AnalyzerService, uploadsSvc SlotService, repo analysis.Repository) http.Handler {
	r := &Router{analyzerSvc: analyzerSvc, uploadsSvc: uploadsSvc, repo: repo}
	mux := chi.NewRouter()

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/uploads", r.wrap(r.handleUploadSlot))
		rt.Get("/analyses", r.wrap(r.handleList))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps the error taxonomy onto the response envelope: validation
// -> 400, scout format failure -> 502 (with the raw model text), quota
// -> 429, anything else -> 500. Sniper format failures never reach
// here; the service recovers them internally.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var verr *analysis.ValidationError
		var ferr *analysis.FormatError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Error())
		case errors.As(err, &ferr):
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"success": false,
				"error":   "Scout model returned invalid JSON",
				"raw":     ferr.Raw,
			})
		case errors.Is(err, vision.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, "not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

// POST /api/analyze
// Body: {"imageUrl": "...", "variant": "part|fitment|product"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ImageURL string `json:"imageUrl"`
		Variant  string `json:"variant"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &analysis.ValidationError{Reason: "invalid JSON body"}
	}
	if body.ImageURL == "" {
		return &analysis.ValidationError{Field: "imageUrl"}
	}
	if err := middleware.ValidateURL(body.ImageURL); err != nil {
		return &analysis.ValidationError{Reason: err.Error()}
	}

	v := analyzer.PartDetection
	if body.Variant != "" {
		var ok bool
		if v, ok = analyzer.VariantByName(body.Variant); !ok {
			return &analysis.ValidationError{Reason: "unknown variant: " + body.Variant}
		}
	}

	res, err := r.analyzerSvc.Analyze(req.Context(), body.ImageURL, v)
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	middleware.IncrementAnalyses()
	if res.Tier == analysis.TierSniper {
		middleware.IncrementEscalated()
	}

	return writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"model_used": res.ModelUsed,
		"data":       res.Finding.Raw,
	})
}

// POST /api/uploads
// Body: {"fileName": "...", "contentType": "image/jpeg"}
func (r *Router) handleUploadSlot(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		FileName    string `json:"fileName"`
		ContentType string `json:"contentType"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &analysis.ValidationError{Reason: "invalid JSON body"}
	}
	if body.FileName == "" {
		return &analysis.ValidationError{Field: "fileName"}
	}
	if body.ContentType == "" {
		return &analysis.ValidationError{Field: "contentType"}
	}

	slot, err := r.uploadsSvc.Request(req.Context(), body.FileName, body.ContentType)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"signedUrl": slot.SignedURL,
		"path":      slot.Path,
		"publicUrl": slot.PublicURL,
		"expiresAt": slot.ExpiresAt,
	})
}

// GET /api/analyses?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	size = middleware.ValidateLimit(size)

	list, err := r.repo.Paginate(req.Context(), page, size)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*analysis.Record{}
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    list,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
