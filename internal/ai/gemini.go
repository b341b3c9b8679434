package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Wire roles understood by the chat service.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one piece of a content turn.
type Part struct {
	Text string `json:"text"`
}

// Content is a single turn in the chat service's wire format.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content struct {
		Parts []Part `json:"parts"`
	} `json:"content"`
}

// Response is the service's generation result.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

type generateRequest struct {
	Contents []Content `json:"contents"`
}

// Client produces a model reply for an ordered list of turns.
type Client interface {
	Generate(ctx context.Context, contents []Content) (*Response, error)
}

// GeminiClient calls the generateContent REST endpoint directly. The
// conversation manager's reply handling is defined on the raw
// candidates/parts shape, so no SDK sits in between.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiClient creates a client for the given API key and model name.
func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Generate sends one chat request and decodes the candidates.
func (c *GeminiClient) Generate(ctx context.Context, contents []Content) (*Response, error) {
	payload, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat service returned %d: %s", resp.StatusCode, string(snippet))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return &out, nil
}
