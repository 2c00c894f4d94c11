package vision

import "context"

// ImagePart is the inline binary-plus-MIME representation the inference
// APIs expect. Owned by a single request, never shared or persisted.
type ImagePart struct {
	Data     []byte
	MIMEType string
}

// Request is one multimodal inference call. The scout and sniper passes
// send an identical prompt and image; only Model differs.
type Request struct {
	Model  string
	Prompt string
	Image  ImagePart
}

// Engine is the port to a hosted multimodal model provider.
// Implementations are stateless and safe for concurrent use.
type Engine interface {
	Generate(ctx context.Context, req Request) (string, error)
}
