// Package push delivers best-effort mobile push notifications. Delivery is a
// side-effect of appointment mutations: callers await the send for
// deterministic ordering but always swallow the error.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Dispatcher sends one notification to one device token.
type Dispatcher interface {
	Send(ctx context.Context, token, title, body string) error
}

// message is the FCM-style payload posted to the push endpoint.
type message struct {
	Token        string `json:"token"`
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
}

// HTTPDispatcher posts notifications to an FCM-compatible HTTP endpoint.
type HTTPDispatcher struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPDispatcher(endpoint, apiKey string) *HTTPDispatcher {
	return &HTTPDispatcher{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *HTTPDispatcher) Send(ctx context.Context, token, title, body string) error {
	var m message
	m.Token = token
	m.Notification.Title = title
	m.Notification.Body = body

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", d.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Call records a single dispatched notification.
type Call struct {
	Token string
	Title string
	Body  string
}

// Mock is a test double for Dispatcher.
type Mock struct {
	mu         sync.Mutex
	calls      []Call
	ShouldFail bool
}

// Send records the call and optionally returns an error.
func (m *Mock) Send(_ context.Context, token, title, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Token: token, Title: title, Body: body})
	if m.ShouldFail {
		return fmt.Errorf("push failed")
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}
