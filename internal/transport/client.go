// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jeranaias/lowchat/internal/model"
)

// Configuration defaults for the backend.
const (
	// DefaultBaseURL is where the backend listens out of the box.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultChatPath is the chat endpoint path.
	DefaultChatPath = "/chat"

	// DefaultHealthPath is the health endpoint path.
	DefaultHealthPath = "/health"

	// DefaultMaxAttempts is the total number of attempts per message.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is multiplied by the attempt number between retries.
	DefaultBaseDelay = 2 * time.Second

	// MaxResponseSize is the maximum accepted response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	userAgent = "lowchat/1.0"
)

// Settings configures a Client. The zero value of each optional field keeps
// the corresponding feature off.
type Settings struct {
	BaseURL    string
	ChatPath   string
	HealthPath string

	// Temperature is sent only when set.
	Temperature *float64

	// Timeout bounds each attempt. Zero means no explicit timeout.
	Timeout time.Duration

	Retry RetryPolicy

	// RequestsPerMinute paces attempts client-side. Zero means unlimited.
	RequestsPerMinute int
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:    DefaultBaseURL,
		ChatPath:   DefaultChatPath,
		HealthPath: DefaultHealthPath,
		Retry: RetryPolicy{
			MaxAttempts: DefaultMaxAttempts,
			BaseDelay:   DefaultBaseDelay,
		},
	}
}

// ChatURL returns the full chat endpoint URL.
func (s Settings) ChatURL() string {
	return joinURL(s.BaseURL, s.ChatPath, DefaultChatPath)
}

// HealthURL returns the full health endpoint URL.
func (s Settings) HealthURL() string {
	return joinURL(s.BaseURL, s.HealthPath, DefaultHealthPath)
}

func joinURL(base, path, fallback string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	if path == "" {
		path = fallback
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Client sends chat requests to the backend. It is safe for concurrent use;
// Apply swaps settings without affecting requests already in flight.
type Client struct {
	httpClient *http.Client
	sleep      SleepFunc

	mu       sync.RWMutex
	settings Settings
	limiter  *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSleep replaces the function used to wait between attempts.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient creates a client with the given settings.
func NewClient(settings Settings, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		sleep: contextSleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Apply(settings)
	return c
}

// Apply replaces the client settings. Requests already running keep the
// settings they started with.
func (c *Client) Apply(settings Settings) {
	var limiter *rate.Limiter
	if settings.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(settings.RequestsPerMinute)), 1)
	}

	c.mu.Lock()
	c.settings = settings
	c.limiter = limiter
	c.mu.Unlock()

	log.Debug().
		Str("url", settings.ChatURL()).
		Int("max_attempts", settings.Retry.attempts()).
		Dur("base_delay", settings.Retry.BaseDelay).
		Int("requests_per_minute", settings.RequestsPerMinute).
		Msg("transport settings applied")
}

// Settings returns the current settings.
func (c *Client) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

func (c *Client) snapshot() (Settings, *rate.Limiter) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings, c.limiter
}

// SendChat posts one message and returns the decoded reply. It retries
// according to the configured policy.
func (c *Client) SendChat(ctx context.Context, message string, provider model.Provider, sessionID string) (model.Reply, error) {
	settings, _ := c.snapshot()
	resp, err := c.Do(ctx, ChatRequest{
		Message:     message,
		Provider:    provider.String(),
		SessionID:   sessionID,
		Temperature: settings.Temperature,
	})
	if err != nil {
		return model.Reply{}, err
	}
	return resp.Reply(), nil
}

// Do performs the chat exchange for req with retries and returns the raw
// response.
func (c *Client) Do(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	settings, limiter := c.snapshot()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result *ChatResponse
	err = settings.Retry.run(ctx, c.sleep, func(attempt int) error {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return &TransportError{Op: "rate limit wait", Err: err}
			}
		}
		resp, err := c.doOnce(ctx, settings, body, attempt)
		if err != nil {
			return err
		}
		result = resp
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("provider", req.Provider).Msg("chat request failed")
		return nil, err
	}

	log.Info().
		Str("provider", req.Provider).
		Str("provider_used", result.ProviderUsed).
		Str("session_id", result.SessionID).
		Int("logs", len(result.Logs)).
		Msg("chat reply received")
	return result, nil
}

// doOnce performs a single attempt.
func (c *Client) doOnce(ctx context.Context, settings Settings, body []byte, attempt int) (*ChatResponse, error) {
	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.ChatURL(), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Int("attempt", attempt).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("chat response")

	data, err := readResponse(resp)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: errorDetail(data)}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return nil, &TransportError{Op: "decode response", Err: err}
	}
	return &chatResp, nil
}

// Health queries the backend health endpoint once, without retries.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	settings, _ := c.snapshot()

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, settings.HealthURL(), nil)
	if err != nil {
		return nil, &TransportError{Op: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "health check", Err: err}
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{StatusCode: resp.StatusCode, Body: errorDetail(data)}
	}

	var health HealthResponse
	if err := json.Unmarshal(data, &health); err != nil {
		return nil, &TransportError{Op: "decode health", Err: err}
	}
	return &health, nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorDetail extracts the "detail" field of a JSON error body, falling back
// to the raw body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(payload.Detail); err == nil {
			return string(b)
		}
	}
	return string(body)
}
