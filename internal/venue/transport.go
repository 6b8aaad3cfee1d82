package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default transport configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
)

// Transport performs JSON request/response exchanges against a venue with a
// small fixed retry budget for transport-level failures. Business failures
// (4xx) are classified and never retried here; the fee-rate bump in the
// orchestrator is the only business-level retry in the system.
type Transport struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// TransportOption configures Transport.
type TransportOption func(*Transport)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *Transport) {
		t.client = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		t.client.Timeout = d
	}
}

// WithMaxRetries sets the transport retry budget.
func WithMaxRetries(n int) TransportOption {
	return func(t *Transport) {
		t.maxRetries = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) TransportOption {
	return func(t *Transport) {
		t.retryDelay = d
	}
}

// WithAPIKey sets the venue API key sent on every request.
func WithAPIKey(key string) TransportOption {
	return func(t *Transport) {
		t.apiKey = key
	}
}

// NewTransport creates a venue transport rooted at baseURL.
func NewTransport(baseURL string, opts ...TransportOption) *Transport {
	t := &Transport{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// errorEnvelope covers the error response shapes both venues use.
type errorEnvelope struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
	ErrorString string `json:"errorMessage"`
}

func (e *errorEnvelope) message(fallback string) string {
	switch {
	case e.Error.Message != "":
		return e.Error.Message
	case e.Message != "":
		return e.Message
	case e.ErrorString != "":
		return e.ErrorString
	default:
		return fallback
	}
}

// Do performs one JSON exchange. body may be nil for GET requests; result may
// be nil when the response body is irrelevant. Transport-level failures
// (network errors, 5xx) are retried with exponential backoff up to the retry
// budget; anything else returns a classified *Error.
func (t *Transport) Do(ctx context.Context, method, path string, body, result any, headers map[string]string) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	delay := t.retryDelay
	var lastErr error

	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * t.backoffMult)
			if delay > t.maxDelay {
				delay = t.maxDelay
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if t.apiKey != "" {
			req.Header.Set("x-api-key", t.apiKey)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := t.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = &Error{Kind: KindUnavailable, Message: upstreamMessage(respBody, resp.Status)}
			continue
		}

		if resp.StatusCode >= 400 {
			// Business failures are classified, never retried at this layer.
			return Classify(resp.StatusCode, upstreamMessage(respBody, resp.Status))
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return &Error{Kind: KindUnavailable, Message: fmt.Sprintf("malformed venue response: %v", err)}
			}
		}
		return nil
	}

	var ve *Error
	if errors.As(lastErr, &ve) {
		return ve
	}
	return &Error{Kind: KindUnavailable, Message: fmt.Sprintf("max retries exceeded: %v", lastErr)}
}

// upstreamMessage extracts the venue's error message from a response body.
func upstreamMessage(body []byte, fallback string) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		if len(body) > 0 && len(body) < 512 {
			return string(body)
		}
		return fallback
	}
	return env.message(fallback)
}
