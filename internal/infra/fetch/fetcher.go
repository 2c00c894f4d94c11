package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/analysis"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/vision"
)

// defaultMIME is used when the origin declares no usable content type.
// Guessing beats failing here: the inference models tolerate a wrong
// image MIME far better than the pipeline tolerates a dead end.
const defaultMIME = "image/jpeg"

// Client retrieves a publicly reachable image URL and encodes it into
// the inline representation the inference API expects. Stateless and
// safe for concurrent use.
type Client struct {
	http *http.Client
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// NewWithHTTPClient is for tests.
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{http: hc}
}

func (c *Client) FetchInline(ctx context.Context, url string) (vision.ImagePart, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return vision.ImagePart{}, &analysis.FetchError{URL: url, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return vision.ImagePart{}, &analysis.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return vision.ImagePart{}, &analysis.FetchError{URL: url, Status: resp.Status}
	}

	// No size cap at this layer; limits belong to upload acceptance.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return vision.ImagePart{}, &analysis.FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	mimeType := defaultMIME
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if parsed, _, perr := mime.ParseMediaType(ct); perr == nil {
			mimeType = parsed
		} else {
			log.Printf("fetch: unparseable content type %q for %s, defaulting to %s", ct, url, defaultMIME)
		}
	} else {
		log.Printf("fetch: no content type for %s, defaulting to %s", url, defaultMIME)
	}

	return vision.ImagePart{Data: body, MIMEType: mimeType}, nil
}
