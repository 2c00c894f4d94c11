package analysis

import "fmt"

// ValidationError is malformed or missing caller input. Surfaced as 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("Missing required field: %s", e.Field)
}

// FetchError means the image could not be retrieved from its URL.
type FetchError struct {
	URL    string
	Status string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// InferenceError means an upstream AI call failed at the transport,
// auth or quota level. The tier records which pass failed.
type InferenceError struct {
	Tier ModelTier
	Err  error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s inference failed: %v", e.Tier, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// FormatError means an upstream AI call succeeded but its output did not
// parse as the expected structured data. Fatal at the scout stage,
// recovered at the sniper stage by falling back to the scout result.
type FormatError struct {
	Tier   ModelTier
	Raw    string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s model returned invalid JSON: %s", e.Tier, e.Reason)
}
