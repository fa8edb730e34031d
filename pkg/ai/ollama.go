package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Options configures the model-backed classifier. Endpoint and Model are
// required; leaving both empty disables the strategy instead of failing
// construction.
type Options struct {
	Endpoint        string
	Model           string
	Timeout         time.Duration
	Temperature     float64
	MaxOutputTokens int
}

// OllamaClassifier implements ModelClassifier against an Ollama chat endpoint.
type OllamaClassifier struct {
	baseURL     string
	model       string
	temperature float64
	numPredict  int
	client      *http.Client
}

// NewOllamaClassifier builds the model strategy, or returns nil when the
// required options are absent.
func NewOllamaClassifier(opts Options) *OllamaClassifier {
	if opts.Endpoint == "" && opts.Model == "" {
		return nil
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "http://localhost:11434"
	}
	if opts.Model == "" {
		opts.Model = "llama3.1"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 256
	}
	return &OllamaClassifier{
		baseURL:     strings.TrimRight(opts.Endpoint, "/"),
		model:       opts.Model,
		temperature: opts.Temperature,
		numPredict:  opts.MaxOutputTokens,
		client:      &http.Client{Timeout: opts.Timeout},
	}
}

const systemPromptFormat = `You are a precise classifier for incoming job-search emails. Classify the email into one of these categories:
%s.
Respond with a minified JSON object like {"label":"interview_invite","confidence":0.82}. Confidence must be a number between 0 and 1. Pick "other" only if nothing else fits. No additional text.`

// Classify sends the text to the chat endpoint and parses the JSON verdict.
// Any transport failure, non-200 status, unparseable body or out-of-band
// label comes back as an error for the caller to fall back on.
func (o *OllamaClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty text")
	}

	payload := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": fmt.Sprintf(systemPromptFormat, strings.Join(Categories, ", "))},
			{"role": "user", "content": trimmed},
		},
		"stream": false,
		"options": map[string]interface{}{
			"temperature": o.temperature,
			"num_predict": o.numPredict,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/chat", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return parseVerdict(result.Message.Content)
}

// parseVerdict pulls the {"label":...,"confidence":...} object out of the
// model output, tolerating surrounding prose.
func parseVerdict(content string) (*Classification, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty model output")
	}

	jsonStr := content
	if !strings.HasPrefix(jsonStr, "{") || !strings.HasSuffix(jsonStr, "}") {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("no JSON object in model output")
		}
		jsonStr = content[start : end+1]
	}

	var verdict struct {
		Label      string      `json:"label"`
		Confidence interface{} `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
		return nil, fmt.Errorf("invalid JSON from model: %w", err)
	}

	label, ok := ValidLabel(verdict.Label)
	if !ok {
		return nil, fmt.Errorf("model returned unknown label %q", verdict.Label)
	}

	cls := &Classification{Label: label, Source: "ollama", Raw: content}
	switch v := verdict.Confidence.(type) {
	case float64:
		clamped := ClampConfidence(v)
		cls.Confidence = &clamped
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(v, "%f", &parsed); err == nil {
			clamped := ClampConfidence(parsed)
			cls.Confidence = &clamped
		}
	}
	return cls, nil
}
