package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"llm-chat-proxy/internal/integrations/paramstore"
)

// DefaultURL is a placeholder and must be overridden with LLM_API_URL.
const DefaultURL = "https://example-generation-host.invalid/generate"

const (
	maxErrorBody    = 4096
	maxResponseBody = 1 << 20
)

// Request is the payload accepted by the generation endpoint.
type Request struct {
	Prompt       string  `json:"prompt"`
	MaxNewTokens int     `json:"max_new_tokens"`
	DoSample     bool    `json:"do_sample"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
}

// Response holds the only field read from the endpoint's reply.
type Response struct {
	GeneratedText string `json:"generated_text"`
}

// HTTPStatusError is returned when the endpoint answers with anything but 200.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("LLM API returned status code %d", e.StatusCode)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client posts prompts to a single generation endpoint. It is safe for
// concurrent use and meant to be built once per process.
type Client struct {
	rawURL     string
	httpClient *http.Client
	params     paramstore.Getter
	logger     *slog.Logger

	mu  sync.RWMutex
	url string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithParamStore enables resolving "ssm:" endpoint references.
func WithParamStore(g paramstore.Getter) Option {
	return func(c *Client) {
		c.params = g
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient builds a Client for rawURL, which is either the endpoint itself or
// an "ssm:<name>" reference resolved on first use. An empty rawURL falls back
// to DefaultURL.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		rawURL = DefaultURL
	}
	// No Timeout: the invocation deadline on ctx is the only bound.
	c := &Client{
		rawURL:     rawURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.httpClient == nil {
		return nil, errors.New("generation: http client must not be nil")
	}
	if _, isRef := paramstore.ParseRef(rawURL); isRef {
		if c.params == nil {
			return nil, errors.New("generation: endpoint is a parameter reference but no parameter store was configured")
		}
	} else {
		c.url = rawURL
	}
	return c, nil
}

// endpoint returns the target URL, resolving a parameter reference once per
// process. A failed lookup is not cached, so the next invocation retries it.
func (c *Client) endpoint(ctx context.Context) (string, error) {
	c.mu.RLock()
	url := c.url
	c.mu.RUnlock()
	if url != "" {
		return url, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.url != "" {
		return c.url, nil
	}
	name, _ := paramstore.ParseRef(c.rawURL)
	resolved, err := c.params.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("generation: resolve endpoint: %w", err)
	}
	c.url = resolved
	c.logger.Info("resolved generation endpoint", "parameter", name)
	return c.url, nil
}

// Generate sends exactly one request and returns the decoded reply. It does
// not check that GeneratedText is non-empty.
func (c *Client) Generate(ctx context.Context, in Request) (Response, error) {
	url, err := c.endpoint(ctx)
	if err != nil {
		return Response{}, err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return Response{}, fmt.Errorf("generation: marshal request: %w", err)
	}
	c.logger.Info("calling LLM API", "url", url, "payload", json.RawMessage(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("generation: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req, url)
	if err != nil {
		return Response{}, err
	}
	c.logger.Info("LLM API response", "body", string(raw))

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, fmt.Errorf("generation: decode response: %w", err)
	}
	return out, nil
}

func (c *Client) do(req *http.Request, url string) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("generation: read response body: %w", err)
	}
	return buf, nil
}
