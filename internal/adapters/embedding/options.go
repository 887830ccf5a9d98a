package embedding

import (
	"net/http"
	"time"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithModel sets the embedding model identifier.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithDimensions sets the expected vector dimensionality. Responses
// with a different length fail with ErrDimensionMismatch.
func WithDimensions(dims int) Option {
	return func(c *Client) {
		if dims > 0 {
			c.dims = dims
		}
	}
}

// WithBaseURL points the client at a different provider endpoint,
// e.g. a local OpenAI-compatible server or a test stub.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpc.Timeout = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}
