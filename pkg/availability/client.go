// Package availability is the caller side of the onboarding API: username
// checks, publishing, and a debounced watcher for live input.
package availability

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

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/username"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

const (
	DefaultTimeout  = 5 * time.Second
	DefaultMaxTries = 3
)

// ErrUnavailable is returned by Generate when the username was taken between
// the check and the publish.
var ErrUnavailable = errors.New("username is no longer available")

// APIError is a non-retryable response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("availability api: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL         string
	httpClient      *http.Client
	timeout         time.Duration
	maxTries        uint
	initialInterval time.Duration
	logger          logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithTimeout bounds each attempt, not the whole retry sequence.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithMaxTries(n uint) Option { return func(c *Client) { c.maxTries = n } }

func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) { c.initialInterval = d }
}

func WithLogger(l logger.Logger) Option { return func(c *Client) { c.logger = l } }

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      http.DefaultClient,
		timeout:         DefaultTimeout,
		maxTries:        DefaultMaxTries,
		initialInterval: 200 * time.Millisecond,
		logger:          logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type checkResponse struct {
	Available   bool     `json:"available"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Check asks the server whether raw can be claimed. A 400 means the name is
// malformed and comes back as an invalid candidate, not as an error.
func (c *Client) Check(ctx context.Context, raw string) (*username.Candidate, error) {
	name := username.Sanitize(raw)
	body, err := json.Marshal(map[string]string{"username": name})
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, "/api/check-username", body, nil, func(status int) bool {
		return status == http.StatusOK || status == http.StatusBadRequest
	})
	if err != nil {
		return nil, err
	}

	var out checkResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("decode check response: %w", err)
	}

	cand := &username.Candidate{Name: name, Message: out.Message, Suggestions: out.Suggestions}
	switch {
	case resp.status == http.StatusBadRequest:
		cand.Verdict = username.VerdictInvalid
	case out.Available:
		cand.Verdict = username.VerdictAvailable
	default:
		cand.Verdict = username.VerdictTaken
	}
	return cand, nil
}

type GenerateRequest struct {
	Username      string               `json:"username"`
	PortfolioData onboarding.Portfolio `json:"portfolioData"`
	// IdempotencyKey is generated when empty and reused on every retry.
	IdempotencyKey string `json:"-"`
}

type GenerateResult struct {
	Username             string    `json:"username"`
	URL                  string    `json:"url"`
	CreatedAt            time.Time `json:"createdAt"`
	CompletionPercentage int       `json:"completionPercentage"`
	IdempotencyKey       string    `json:"-"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, "/api/generate-portfolio", body, map[string]string{"Idempotency-Key": key}, func(status int) bool {
		return status == http.StatusOK
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, apiErr.Message)
		}
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}
	var out GenerateResult
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, fmt.Errorf("decode generate data: %w", err)
	}
	out.IdempotencyKey = key
	return &out, nil
}

type response struct {
	status int
	body   []byte
}

// send POSTs body, retrying transport failures and 5xx responses with
// exponential backoff. Statuses accepted by ok are returned; any other 4xx
// becomes a permanent *APIError.
func (c *Client) send(ctx context.Context, path string, body []byte, headers map[string]string, ok func(int) bool) (*response, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	attempt := 0
	op := func() (*response, error) {
		attempt++
		resp, err := c.do(ctx, path, body, headers)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		switch {
		case ok(resp.status):
			return resp, nil
		case resp.status >= http.StatusInternalServerError:
			return nil, &APIError{StatusCode: resp.status, Message: messageOf(resp.body)}
		default:
			return nil, backoff.Permanent(&APIError{StatusCode: resp.status, Message: messageOf(resp.body)})
		}
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug("Retrying availability request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", next),
				zap.Error(err),
			)
		}),
	)
}

func (c *Client) do(ctx context.Context, path string, body []byte, headers map[string]string) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return &response{status: res.StatusCode, body: data}, nil
}

func messageOf(body []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &m) == nil && m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(string(body))
}
