// Package gemini is a minimal REST client for Gemini-style generateContent
// endpoints, used to produce extension source files from a description.
//
// The client makes exactly one attempt per call: no retries, no backoff.
// Callers treat every error as a signal to fall back to local templates,
// so retrying here would only delay that fallback.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"extforge/internal/classify"
	"extforge/internal/scaffold"
)

// ErrNoAPIKey is returned when the client is constructed without a key.
var ErrNoAPIKey = errors.New("API key not configured")

const (
	defaultBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel           = "gemini-1.5"
	defaultTimeout         = 30 * time.Second
	defaultMaxOutputTokens = 4000

	// Low temperature: file generation wants reproducible output, not
	// creative variation.
	generationTemperature = 0.2
)

const systemInstruction = "You generate source files for Chrome extensions (Manifest V3). " +
	"Respond with a single JSON object and nothing else."

// Config holds the client's construction-time settings. All values are
// explicit; the client never reads process environment or global state.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

// DefaultConfig returns the stock configuration for the given key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:          apiKey,
		BaseURL:         defaultBaseURL,
		Model:           defaultModel,
		Timeout:         defaultTimeout,
		MaxOutputTokens: defaultMaxOutputTokens,
	}
}

// Client talks to a generateContent endpoint.
type Client struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	logger          *zap.Logger
}

// NewClient creates a client with default settings for the given key.
func NewClient(apiKey string, logger *zap.Logger) *Client {
	return NewClientWithConfig(DefaultConfig(apiKey), logger)
}

// NewClientWithConfig creates a client with custom settings. Zero-valued
// fields fall back to the defaults, except APIKey which stays empty and
// surfaces as ErrNoAPIKey on use.
func NewClientWithConfig(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(config.Model) == "" {
		config.Model = defaultModel
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = defaultMaxOutputTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:          config.APIKey,
		baseURL:         strings.TrimRight(config.BaseURL, "/"),
		model:           config.Model,
		maxOutputTokens: config.MaxOutputTokens,
		httpClient:      &http.Client{Timeout: config.Timeout},
		logger:          logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateFiles asks the model for a filename to content mapping for the
// analyzed requirements. The response must be a JSON object whose keys all
// come from the known file names; anything else is an error. Satisfies
// scaffold.RemoteGenerator.
func (c *Client) GenerateFiles(ctx context.Context, req *classify.Requirements, description string) (map[string]string, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	// Apply the client timeout when the caller provided no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	c.logger.Debug("requesting remote generation",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(description)))

	reqBody := Request{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: buildPrompt(req, description)}},
			},
		},
		SystemInstruction: &Content{
			Parts: []Part{{Text: systemInstruction}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:      generationTemperature,
			MaxOutputTokens:  c.maxOutputTokens,
			ResponseMimeType: "application/json",
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp Response
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	var text strings.Builder
	for _, part := range apiResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	raw, err := extractJSONObject(text.String())
	if err != nil {
		return nil, err
	}

	var files map[string]string
	if err := json.Unmarshal([]byte(raw), &files); err != nil {
		return nil, fmt.Errorf("failed to decode file map: %w", err)
	}
	if err := scaffold.ValidateFileMap(files); err != nil {
		return nil, err
	}

	c.logger.Debug("remote generation completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("files", len(files)))
	return files, nil
}

// buildPrompt renders the requirement record and description into the
// user-turn text.
func buildPrompt(req *classify.Requirements, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User prompt: %s\n", description)
	b.WriteString("Detected requirements:\n")
	fmt.Fprintf(&b, "- needs_popup: %t\n", req.NeedsPopup)
	fmt.Fprintf(&b, "- needs_content_script: %t\n", req.NeedsContentScript)
	fmt.Fprintf(&b, "- needs_background: %t\n", req.NeedsBackground)
	fmt.Fprintf(&b, "- needs_css: %t\n", req.NeedsCSS)
	if len(req.Permissions) > 0 {
		fmt.Fprintf(&b, "- permissions: %s\n", strings.Join(req.Permissions, ", "))
	}

	names := scaffold.AllFileNames()
	sort.Strings(names)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}

	b.WriteString("\nProduce a JSON map where keys are filenames and values are the exact string contents for each file.")
	b.WriteString(" Only return valid JSON and nothing else.")
	fmt.Fprintf(&b, " Provide these keys when relevant: %s.", strings.Join(quoted, ", "))
	b.WriteString(" If a file is not needed, omit it.")
	b.WriteString(" Escape strings appropriately so the JSON loads cleanly.")
	return b.String()
}

// extractJSONObject recovers the JSON object from free-form model output by
// slicing from the first '{' to the last '}'. Markdown fences and prose
// around the object are discarded.
func extractJSONObject(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
