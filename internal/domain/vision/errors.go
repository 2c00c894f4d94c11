package vision

import "errors"

// ErrQuotaExceeded indicates the provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("inference quota exceeded")
