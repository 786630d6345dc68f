// Package notify posts run manifests to an HTTP endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crimson-sun/pathobridge/internal/model"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultBaseDelay = time.Second
	maxRetries       = 3
)

// Option configures a Webhook.
type Option func(*Webhook)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(w *Webhook) { w.headers = h }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(w *Webhook) { w.client.Timeout = d }
}

// WithBaseDelay sets the first retry delay; later retries double it. Default: 1s.
func WithBaseDelay(d time.Duration) Option {
	return func(w *Webhook) { w.baseDelay = d }
}

// Webhook POSTs a manifest as JSON. Retries on 5xx with exponential backoff.
type Webhook struct {
	client    *http.Client
	url       string
	headers   map[string]string
	baseDelay time.Duration
}

// New creates a webhook notifier targeting the given URL.
func New(url string, opts ...Option) *Webhook {
	w := &Webhook{
		client:    &http.Client{Timeout: defaultTimeout},
		url:       url,
		baseDelay: defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Notify sends the manifest.
func (w *Webhook) Notify(ctx context.Context, m model.Manifest) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}
	return w.postWithRetry(ctx, body)
}

// postWithRetry sends the body via HTTP POST with retry on 5xx.
func (w *Webhook) postWithRetry(ctx context.Context, body []byte) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(w.baseDelay << (attempt - 1))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range w.headers {
			req.Header.Set(k, v)
		}

		resp, err := w.client.Do(req)
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("webhook: HTTP %d", resp.StatusCode)

		// Only retry on 5xx server errors.
		if resp.StatusCode < 500 {
			return lastErr
		}
	}
	return lastErr
}
