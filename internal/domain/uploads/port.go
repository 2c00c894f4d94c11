package uploads

import "context"

// Issuer port (interface for the object storage backend)
type Issuer interface {
	// IssueSlot returns a presigned upload credential for objectName.
	// The slot is scoped to that single key; re-issuing the same key
	// overwrites on upload.
	IssueSlot(ctx context.Context, objectName, contentType string) (*Slot, error)
}
