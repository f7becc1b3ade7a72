// Package upstream talks to the survey platform API: timeout-bounded JSON
// fetches with rate-limit retries, and order-preserving batched fetches for
// pages, components, and respondents.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultBaseDelay  = 500 * time.Millisecond
	defaultMaxRetries = 2
	defaultBatchSize  = 5
	defaultBatchDelay = 250 * time.Millisecond
)

// APIError is a non-2xx upstream response after retries are exhausted.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("survey api error (%d): %s", e.Status, e.Body)
}

// Client is the upstream API client. Fields may be overridden before first
// use; tests shrink the delays.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	BaseDelay  time.Duration
	MaxRetries int
	BatchSize  int
	BatchDelay time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{},
		Timeout:    defaultTimeout,
		BaseDelay:  defaultBaseDelay,
		MaxRetries: defaultMaxRetries,
		BatchSize:  defaultBatchSize,
		BatchDelay: defaultBatchDelay,
	}
}

// FetchJSON issues a GET with bearer auth and a per-call timeout, decoding
// the JSON body into out. HTTP 429 is retried with linearly increasing
// backoff up to the retry budget; any other non-2xx becomes an *APIError.
func (c *Client) FetchJSON(ctx context.Context, endpoint string, out any) error {
	return c.fetchJSON(ctx, endpoint, out, c.MaxRetries)
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, out any, retries int) error {
	url := strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")

	reqCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", endpoint, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests && retries > 0 {
		wait := c.BaseDelay * time.Duration(c.MaxRetries-retries+2)
		log.Printf("upstream: rate limited on %s, waiting %s (%d retries left)", endpoint, wait, retries)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		return c.fetchJSON(ctx, endpoint, out, retries-1)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// Collector fetches one collector record.
func (c *Client) Collector(ctx context.Context, id string) (Collector, error) {
	var out Collector
	err := c.FetchJSON(ctx, "/collectors/"+id, &out)
	return out, err
}

// Surveys fetches the survey list.
func (c *Client) Surveys(ctx context.Context) ([]Survey, error) {
	var out surveyList
	if err := c.FetchJSON(ctx, "/surveys", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Page fetches one survey page.
func (c *Client) Page(ctx context.Context, id string) (Page, error) {
	var out Page
	err := c.FetchJSON(ctx, "/pages/"+id, &out)
	return out, err
}

// Component fetches one page component.
func (c *Client) Component(ctx context.Context, id string) (Component, error) {
	var out Component
	err := c.FetchJSON(ctx, "/components/"+id, &out)
	return out, err
}

// Respondent fetches one respondent record.
func (c *Client) Respondent(ctx context.Context, id string) (Respondent, error) {
	var out Respondent
	err := c.FetchJSON(ctx, "/respondents/"+id, &out)
	return out, err
}

// Batch fetches one resource per id in fixed-size concurrent batches with a
// fixed inter-batch delay, preserving input order in the result. Per-item
// failures are logged and the item is dropped, not retried.
func Batch[T any](ctx context.Context, c *Client, ids []string, label string, fetch func(ctx context.Context, id string) (T, error)) []T {
	size := c.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}

	results := make([]T, 0, len(ids))
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batch := ids[start:end]

		type slot struct {
			value T
			ok    bool
		}
		slots := make([]slot, len(batch))

		var wg sync.WaitGroup
		for i, id := range batch {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				value, err := fetch(ctx, id)
				if err != nil {
					log.Printf("upstream: fetch %s %s: %v", label, id, err)
					return
				}
				slots[i] = slot{value: value, ok: true}
			}(i, id)
		}
		wg.Wait()

		for _, s := range slots {
			if s.ok {
				results = append(results, s.value)
			}
		}

		if end < len(ids) && c.BatchDelay > 0 {
			select {
			case <-time.After(c.BatchDelay):
			case <-ctx.Done():
				return results
			}
		}
	}
	return results
}
