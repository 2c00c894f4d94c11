package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/application/batch"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/application/links"
)

// apiClient implements batch.Uploader, batch.Analyzer and
// batch.QualityChecker against the HTTP API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		// Analyze calls wait on up to two model passes.
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Upload requests a signed slot, PUTs the file bytes against it and
// returns the public URL the analyze endpoint will fetch.
func (c *apiClient) Upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "image/jpeg"
	}

	// Namespace the object key so parallel batches never collide.
	objectName := fmt.Sprintf("uploads/%s-%s", uuid.New().String(), filepath.Base(path))

	var slot struct {
		SignedURL string `json:"signedUrl"`
		Path      string `json:"path"`
		PublicURL string `json:"publicUrl"`
	}
	err = c.postJSON(ctx, "/api/uploads", map[string]string{
		"fileName":    objectName,
		"contentType": contentType,
	}, &slot)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.SignedURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload PUT failed: %s", resp.Status)
	}

	return slot.PublicURL, nil
}

// Analyze calls the cascading analyze endpoint for one variant.
func (c *apiClient) Analyze(ctx context.Context, imageURL, variant string) (json.RawMessage, string, error) {
	var out struct {
		Success   bool            `json:"success"`
		ModelUsed string          `json:"model_used"`
		Data      json.RawMessage `json:"data"`
		Error     string          `json:"error"`
	}
	err := c.postJSON(ctx, "/api/analyze", map[string]string{
		"imageUrl": imageURL,
		"variant":  variant,
	}, &out)
	if err != nil {
		return nil, "", err
	}
	if !out.Success {
		return nil, "", fmt.Errorf("analyze failed: %s", out.Error)
	}
	return out.Data, out.ModelUsed, nil
}

// Check is the local quality gate: every image must have uploaded.
func (c *apiClient) Check(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return fmt.Errorf("no uploaded images to analyze")
	}
	return nil
}

func (c *apiClient) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: unexpected response (%s): %.200s", path, resp.Status, raw)
	}
	return nil
}

func printItem(it *batch.Item, rewriter links.Rewriter) {
	fmt.Printf("\nitem %s: %s\n", shortID(it.ID), it.Status)
	if it.Err != "" {
		fmt.Printf("  error: %s (retry with the same command)\n", it.Err)
		return
	}
	fmt.Printf("  model: %s\n", it.ModelUsed)
	fmt.Printf("  fitment: %s\n", compact(it.Fitment))
	fmt.Printf("  products: %s\n", compact(it.Products))

	// Shopping link for the primary product, affiliate-tagged.
	var products struct {
		Primary      string `json:"primary_product"`
		Manufacturer string `json:"manufacturer_guess"`
	}
	if err := json.Unmarshal(it.Products, &products); err == nil && products.Primary != "" {
		fmt.Printf("  shop: %s\n", rewriter.SearchLink(products.Primary, products.Manufacturer))
	}
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
