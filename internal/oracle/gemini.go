package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/specsift/specsift/internal/csi"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

const maxAttempts = 3

// GeminiClient calls the Gemini generateContent API as the section-boundary
// oracle and, for the downstream fan-out, as a per-section extractor.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client

	// Stats records call latencies for the /api/stats/oracle endpoint.
	Stats *Stats
}

// NewGeminiClient builds a client. An empty apiKey is allowed: every call
// then reports no boundaries, which the pipeline treats as an ordinary
// outcome.
func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: NewStats(time.Hour),
	}
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string { return c.model }

// SetBaseURL overrides the API endpoint; used by tests.
func (c *GeminiClient) SetBaseURL(u string) { c.baseURL = strings.TrimRight(u, "/") }

// Close releases idle connections.
func (c *GeminiClient) Close() { c.httpClient.CloseIdleConnections() }

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FindBoundaries asks the oracle which of the given pages start a new
// section. Missing credentials, transport failures, and garbled responses
// all degrade to an empty result.
func (c *GeminiClient) FindBoundaries(ctx context.Context, headers []PageHeader) ([]Boundary, error) {
	if c.apiKey == "" || len(headers) == 0 {
		return nil, nil
	}

	text, err := c.generate(ctx, BuildBoundaryPrompt(headers), 2000)
	if err != nil {
		return nil, err
	}

	raw := stripCodeBlock(text)
	if err := validateBoundaryJSON([]byte(raw)); err != nil {
		return nil, fmt.Errorf("boundary response: %w", err)
	}

	var boundaries []Boundary
	if err := json.Unmarshal([]byte(raw), &boundaries); err != nil {
		return nil, fmt.Errorf("parse boundary json: %w", err)
	}

	valid := boundaries[:0]
	for _, b := range boundaries {
		if nb, ok := normalizeBoundary(b); ok {
			valid = append(valid, nb)
		}
	}
	return valid, nil
}

// ExtractSection runs a single downstream extraction prompt and returns the
// raw JSON the model produced.
func (c *GeminiClient) ExtractSection(ctx context.Context, prompt string) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no oracle credentials configured")
	}
	text, err := c.generate(ctx, prompt, 8000)
	if err != nil {
		return nil, err
	}
	raw := stripCodeBlock(text)
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("extraction response is not valid json: %s", truncate(raw, 200))
	}
	return json.RawMessage(raw), nil
}

// generate performs one generateContent call with bounded retries on
// transient failures.
func (c *GeminiClient) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:      0,
			MaxOutputTokens:  maxTokens,
			ResponseMimeType: "application/json",
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var text string
	err = retry.Do(
		func() error {
			start := time.Now()
			result, callErr := c.doCall(ctx, url, body)
			if c.Stats != nil {
				c.Stats.Record(time.Since(start).Milliseconds(), callErr != nil)
			}
			if callErr != nil {
				return callErr
			}
			text = result
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(time.Second),
		retry.RetryIf(func(err error) bool {
			_, ok := err.(*RetryableError)
			return ok
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *GeminiClient) doCall(ctx context.Context, url string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("oracle call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oracle status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("oracle error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty oracle response")
	}
	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

var boundarySectionRe = regexp.MustCompile(`(\d{2})\s*(\d{2})\s*(\d{2})`)

// normalizeBoundary canonicalizes a returned section string and drops
// entries the oracle got wrong: unknown divisions, unusable pages. A bare
// division code is widened to its generic "XX 00 00" section.
func normalizeBoundary(b Boundary) (Boundary, bool) {
	if b.Page <= 0 {
		return Boundary{}, false
	}
	s := strings.TrimSpace(b.Section)
	if m := boundarySectionRe.FindStringSubmatch(s); m != nil {
		if !csi.ValidDivision(m[1]) {
			return Boundary{}, false
		}
		return Boundary{Page: b.Page, Section: csi.FormatSection(m[1], m[2], m[3], "")}, true
	}
	if div := csi.ParseDivision(s); div != "" {
		return Boundary{Page: b.Page, Section: div + " 00 00"}, true
	}
	return Boundary{}, false
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
