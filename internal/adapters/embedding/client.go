// Package embedding wraps the external text-embedding provider behind
// a small gateway: text in, fixed-length vector out. The gateway does
// not retry and does not persist; both belong to callers.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/voluntree/voluntree/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = "text-embedding-3-small"
	defaultDimensions = 1536
	defaultTimeout    = 30 * time.Second

	maxResponseBytes = 10 * 1024 * 1024
)

// Client calls an OpenAI-compatible /embeddings endpoint. The model
// and dimensionality are deployment-time constants: every vector this
// service stores must come from the same model version.
type Client struct {
	apiKey  string
	model   string
	dims    int
	baseURL string
	httpc   *http.Client
}

// NewClient creates an embedding client with configuration options.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		dims:    defaultDimensions,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Dimensions returns the configured vector dimensionality.
func (c *Client) Dimensions() int { return c.dims }

// embedRequest mirrors the provider's /embeddings request schema.
type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []embedData `json:"data"`
}

type embedData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// Embed converts text into one fixed-length vector. Fails with
// ErrInvalidInput for empty text and ErrProviderUnavailable when the
// provider is unreachable or answers with a non-success status.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty embedding text: %w", ErrInvalidInput)
	}

	start := time.Now()
	defer func() {
		metrics.RecordEmbeddingLatency(float64(time.Since(start).Milliseconds()))
	}()

	body, err := json.Marshal(embedRequest{Input: []string{text}, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.RecordProviderError()
		return nil, fmt.Errorf("embedding request failed: %v: %w", err, ErrProviderUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.RecordProviderError()
		return nil, fmt.Errorf("read embedding response: %v: %w", err, ErrProviderUnavailable)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordProviderError()
		return nil, fmt.Errorf("embedding provider status %d: %s: %w", resp.StatusCode, truncate(respBody), ErrProviderUnavailable)
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		metrics.RecordProviderError()
		return nil, fmt.Errorf("decode embedding response: %v: %w", err, ErrProviderUnavailable)
	}
	if len(parsed.Data) == 0 {
		metrics.RecordProviderError()
		return nil, fmt.Errorf("embedding response carried no vectors: %w", ErrProviderUnavailable)
	}

	// Providers may reorder batch results; keep index order.
	sort.Slice(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })

	vec := parsed.Data[0].Embedding
	if c.dims > 0 && len(vec) != c.dims {
		metrics.RecordDimensionMismatch()
		return nil, fmt.Errorf("provider returned %d dimensions, expected %d: %w", len(vec), c.dims, ErrDimensionMismatch)
	}

	return vec, nil
}

// truncate keeps error payloads log-sized.
func truncate(b []byte) string {
	const max = 256
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "..."
}
