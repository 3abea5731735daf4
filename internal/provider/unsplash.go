// Package provider talks to the Unsplash photo API.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"imagemarket/internal/models"
)

const (
	DefaultAPIURL  = "https://api.unsplash.com"
	DefaultPerPage = 24
	MaxPerPage     = 30
)

// Client issues search and random-photo requests. Failures degrade to empty
// results; the error is still returned so callers can tell the two apart.
type Client struct {
	baseURL   string
	accessKey string
	http      *http.Client
	group     singleflight.Group
}

func NewClient(baseURL, accessKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// Search returns one page of photos matching query.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) (models.SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(max(page, 1)))
	params.Set("per_page", strconv.Itoa(clampCount(perPage)))

	var result models.SearchResult
	if err := c.get(ctx, "/search/photos?"+params.Encode(), &result); err != nil {
		log.Printf("provider: search %q failed: %v", query, err)
		return models.EmptySearchResult(), err
	}
	if result.Results == nil {
		result.Results = []models.ProviderImage{}
	}
	return result, nil
}

// Random returns count random photos.
func (c *Client) Random(ctx context.Context, count int) ([]models.ProviderImage, error) {
	params := url.Values{}
	params.Set("count", strconv.Itoa(clampCount(count)))

	var images []models.ProviderImage
	if err := c.getFresh(ctx, "/photos/random?"+params.Encode(), &images); err != nil {
		log.Printf("provider: random photos failed: %v", err)
		return []models.ProviderImage{}, err
	}
	if images == nil {
		images = []models.ProviderImage{}
	}
	return images, nil
}

func clampCount(n int) int {
	if n < 1 {
		return DefaultPerPage
	}
	return min(n, MaxPerPage)
}

// get fetches path and decodes the JSON body into out. Identical in-flight
// requests share one upstream call; each caller still stops waiting when its
// own context ends.
func (c *Client) get(ctx context.Context, path string, out any) error {
	ch := c.group.DoChan(path, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), path)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return decode(path, res.Val.([]byte), out)
	}
}

// getFresh is get without sharing: every caller makes its own upstream call.
func (c *Client) getFresh(ctx context.Context, path string, out any) error {
	body, err := c.fetch(ctx, path)
	if err != nil {
		return err
	}
	return decode(path, body, out)
}

func decode(path string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("request %s: unexpected status %s", path, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}
