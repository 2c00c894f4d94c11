package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/vision"
)

// Client adapts the Gemini API to the vision.Engine port. One client is
// shared process-wide; the model is chosen per call so the scout and
// sniper tiers reuse the same connection.
type Client struct {
	genai *genai.Client
}

func New(ctx context.Context, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{genai: cl}, nil
}

func (c *Client) Close() error { return c.genai.Close() }

func (c *Client) Generate(ctx context.Context, req vision.Request) (string, error) {
	m := c.genai.GenerativeModel(req.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}
	// Code execution helps the model count and measure before answering.
	// Tool use rules out strict JSON response mode, so the caller strips
	// markdown fencing instead.
	m.Tools = []*genai.Tool{{CodeExecution: &genai.CodeExecution{}}}

	resp, err := m.GenerateContent(ctx,
		genai.Text(req.Prompt),
		&genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data},
	)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
			return "", vision.ErrQuotaExceeded
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: empty response for model %s", req.Model)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

func ptrFloat32(v float32) *float32 { return &v }
