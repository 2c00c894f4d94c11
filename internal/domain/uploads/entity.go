package uploads

import "time"

// Slot is a time-bounded, write-once upload credential for a single
// object path. The client PUTs raw bytes to SignedURL and later reads
// the object back via PublicURL.
type Slot struct {
	SignedURL string    `json:"signedUrl"`
	Path      string    `json:"path"`
	PublicURL string    `json:"publicUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}
