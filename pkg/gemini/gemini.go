// Package gemini is a minimal client for the generateContent endpoint of the
// Google generative language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-1.5-flash"

	// placeholderKey is the value shipped in example configs; treating it as
	// absent keeps a copy-pasted config from burning real requests.
	placeholderKey = "YOUR_API_KEY_HERE"

	maxErrorBodyBytes = 4 * 1024
)

// ErrNoAPIKey is returned before any network I/O when the credential is
// missing or still the shipped placeholder.
var ErrNoAPIKey = errors.New("gemini api key is missing or not configured")

// StatusError reports a non-2xx backend reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini returned status %d: %s", e.Code, e.Body)
}

// Client calls the generative language backend. Generation parameters are
// fixed; only the endpoint, model and credential vary per installation.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	httpc    *http.Client
}

// New creates a client. Empty endpoint/model fall back to the defaults; a
// non-positive timeout falls back to 60s.
func New(endpoint, model, apiKey string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    model,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content       `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting `json:"safetySettings"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var defaultSafetySettings = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// Generate posts the prompt and returns the raw model text from the first
// candidate. Non-2xx status yields a *StatusError; a reply without a first
// candidate part is reported as malformed. No retries.
func (c *Client) Generate(ctx context.Context, promptText string) (string, error) {
	if c.apiKey == "" || c.apiKey == placeholderKey {
		return "", ErrNoAPIKey
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: promptText}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.3,
			TopP:            0.8,
			TopK:            40,
			MaxOutputTokens: 2048,
		},
		SafetySettings: defaultSafetySettings,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response has no candidate text")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
