package wanikani

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the WaniKani API root.
	DefaultBaseURL = "https://api.wanikani.com/v2"
	// DefaultRequestsPerMinute is WaniKani's documented request budget.
	DefaultRequestsPerMinute = 60
	// Revision is the API revision the models follow.
	Revision = "20170710"

	requestTimeout = 30 * time.Second
	maxRetries     = 3
	retryDelay     = time.Second
)

// ClientConfig configures a Client.
// Zero values produce sensible defaults; see field comments.
type ClientConfig struct {
	BaseURL           string       // "" → DefaultBaseURL
	RequestsPerMinute int          // zero → DefaultRequestsPerMinute
	HTTPClient        *http.Client // nil → client with a 30s timeout
}

// Client submits reviews and lesson starts to WaniKani. Requests from all
// accounts share one rate limiter. A Client is safe for concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	retryDelay  time.Duration
}

// NewClient returns a Client configured by cfg.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		retryDelay: retryDelay,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: requestTimeout}
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	c.rateLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	return c
}

// CreateReview records a finished review of an assignment and returns the
// assignment as updated by WaniKani.
func (c *Client) CreateReview(ctx context.Context, apiKey string, assignmentID int64, meaningIncorrect, readingIncorrect int, createdAt time.Time) (Object[Assignment], error) {
	body := map[string]any{
		"review": map[string]any{
			"assignment_id":             assignmentID,
			"incorrect_meaning_answers": meaningIncorrect,
			"incorrect_reading_answers": readingIncorrect,
			"created_at":                createdAt.UTC().Format(time.RFC3339Nano),
		},
	}
	var resp ReviewResponse
	if err := c.do(ctx, apiKey, http.MethodPost, "/reviews", body, &resp); err != nil {
		return Object[Assignment]{}, fmt.Errorf("create review for assignment %d: %w", assignmentID, err)
	}
	if resp.ResourcesUpdated.Assignment == nil {
		return Object[Assignment]{}, fmt.Errorf("create review for assignment %d: response has no updated assignment", assignmentID)
	}
	return *resp.ResourcesUpdated.Assignment, nil
}

// StartAssignment moves an assignment out of lessons.
func (c *Client) StartAssignment(ctx context.Context, apiKey string, assignmentID int64, startedAt time.Time) (Object[Assignment], error) {
	body := map[string]any{"started_at": startedAt.UTC().Format(time.RFC3339Nano)}
	var resp Object[Assignment]
	path := "/assignments/" + strconv.FormatInt(assignmentID, 10) + "/start"
	if err := c.do(ctx, apiKey, http.MethodPut, path, body, &resp); err != nil {
		return Object[Assignment]{}, fmt.Errorf("start assignment %d: %w", assignmentID, err)
	}
	return resp, nil
}

// do sends one JSON request, waiting on the rate limiter before every
// attempt and retrying after a pause when WaniKani answers 429.
func (c *Client) do(ctx context.Context, apiKey, method, path string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)
		req.Header.Set("Wanikani-Revision", Revision)
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		data, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt >= maxRetries {
				return ErrRateLimited
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
			continue
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
		}

		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}
