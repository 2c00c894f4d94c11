package analyzer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/analysis"
)

// StripFences removes a leading ```json (or bare ```) fence and a
// trailing ``` from model output, then trims whitespace. Idempotent:
// already-clean JSON passes through unchanged.
func StripFences(s string) string {
	out := strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(out, "```json"); ok {
		out = rest
	} else if rest, ok := strings.CutPrefix(out, "```"); ok {
		out = rest
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), "```")
	return strings.TrimSpace(out)
}

// parseFinding validates one pass's output against the variant's
// required fields and the confidence contract: confidence_score must be
// an integer in [0,100]. Out-of-range or fractional scores are format
// failures, never clamped, since the escalation policy depends on the
// model's calibration being reported honestly.
func parseFinding(tier analysis.ModelTier, raw string, v Variant) (*analysis.Finding, error) {
	text := StripFences(raw)

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, &analysis.FormatError{Tier: tier, Raw: raw, Reason: "invalid JSON"}
	}

	for _, field := range v.RequiredFields {
		s, ok := obj[field].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, &analysis.FormatError{Tier: tier, Raw: raw, Reason: fmt.Sprintf("missing field %q", field)}
		}
	}

	num, ok := obj["confidence_score"].(json.Number)
	if !ok {
		return nil, &analysis.FormatError{Tier: tier, Raw: raw, Reason: "missing integer confidence_score"}
	}
	conf, err := strconv.Atoi(num.String())
	if err != nil || conf < 0 || conf > 100 {
		return nil, &analysis.FormatError{Tier: tier, Raw: raw, Reason: fmt.Sprintf("confidence_score %s not an integer in [0,100]", num)}
	}

	return &analysis.Finding{Raw: json.RawMessage(text), Confidence: conf}, nil
}
