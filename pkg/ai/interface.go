package ai

import (
	"context"
	"strings"
)

// Categories is the fixed label set every classification resolves to.
var Categories = []string{
	"offer",
	"interview_invite",
	"oa",
	"recruiter_reply",
	"rejection",
	"auto_ack",
	"not_job_related",
	"other",
}

// Classification is the outcome of classifying one email text.
type Classification struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence,omitempty"` // always nil for rules
	Source     string   `json:"source"`               // "ollama", "gemini" or "rules"
	Raw        string   `json:"raw,omitempty"`        // raw model output, if any
}

// ModelClassifier is the model-backed classification strategy. Any error it
// returns is mapped to the rules fallback by EmailClassifier; errors never
// reach the ingestion pipeline.
type ModelClassifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

// ValidLabel reports whether label (trimmed, case-insensitive) is in the
// fixed set, returning its normalized form.
func ValidLabel(label string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for _, c := range Categories {
		if c == normalized {
			return normalized, true
		}
	}
	return "", false
}

// ClampConfidence bounds a model-reported confidence to [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
