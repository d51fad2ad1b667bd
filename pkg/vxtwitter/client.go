// Package vxtwitter consumes the vxtwitter lookup API and normalizes
// its responses into media descriptors.
package vxtwitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/iconidentify/xrelay/internal/config"
	"github.com/iconidentify/xrelay/internal/domain"
)

// Client fetches post media information from the lookup service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a new lookup client.
func NewClient(cfg config.LookupConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
	}
}

// Resolve fetches the media list for one post id. An absent or empty
// media list is "no media", not an error. All failures come back as
// *domain.LookupError.
func (c *Client) Resolve(ctx context.Context, postID string) ([]domain.Media, error) {
	url := fmt.Sprintf("%s/Twitter/status/%s", c.baseURL, postID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, domain.NewLookupError("unexpected error", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewLookupError("unexpected error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewLookupError("tweet not found or is private", nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Error pages are HTML; the service puts a human-readable
		// reason in the og:description meta tag.
		if reason := metaDescription(resp); reason != "" {
			return nil, domain.NewLookupError(reason, nil)
		}
		return nil, domain.NewLookupError(fmt.Sprintf("HTTP error %d", resp.StatusCode), nil)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, domain.NewLookupError("unexpected error", err)
	}

	media := make([]domain.Media, 0, len(status.MediaExtended))
	for _, item := range status.MediaExtended {
		m, ok := item.normalize()
		if !ok {
			continue
		}
		media = append(media, m)
	}

	return media, nil
}

// metaDescription extracts the og:description content from an HTML
// error body. Returns "" when the body has none.
func metaDescription(resp *http.Response) string {
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	content, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	return strings.TrimSpace(content)
}

// statusResponse is the JSON body of a successful status lookup.
type statusResponse struct {
	MediaExtended []mediaItem `json:"media_extended"`
}
