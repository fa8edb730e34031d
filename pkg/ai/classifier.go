package ai

import (
	"context"
	"log"
)

// EmailClassifier is the two-tier classifier: try the model strategy first,
// fall back to the deterministic rules on any failure. The fallback is an
// explicit branch so degraded classification stays visible in the code path,
// and callers never see an error.
type EmailClassifier struct {
	model ModelClassifier
}

// NewEmailClassifier wires the optional model strategy. A nil model means
// rules-only operation.
func NewEmailClassifier(model ModelClassifier) *EmailClassifier {
	return &EmailClassifier{model: model}
}

// Classify always succeeds. Output label is a member of Categories and
// confidence, when present, is within [0,1].
func (c *EmailClassifier) Classify(ctx context.Context, text string) Classification {
	if c.model != nil {
		result, err := c.model.Classify(ctx, text)
		if err == nil && result != nil {
			return *result
		}
		if err != nil {
			log.Printf("[AI] model classification failed, using rules: %v", err)
		}
	}
	return ClassifyByRules(text)
}
