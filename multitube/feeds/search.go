// Package feeds looks up video ids outside the page: live search results
// scraped from the video site and playlist contents. Results are cached in
// a pebble store and concurrent identical lookups are collapsed.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultSearchURL = "https://www.youtube.com/results"

	// liveFilter restricts results to live streams. It is sent pre-encoded.
	liveFilter = "EgJAAQ%253D%253D"

	WatchURLPrefix = "https://www.youtube.com/watch?v="

	maxPageBytes = 8 << 20
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var (
	ErrEmptyQuery      = errors.New("feeds: empty query")
	ErrInvalidPlaylist = errors.New("feeds: invalid playlist id")
)

var videoIDPattern = regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`)

// Scraper fetches the search results page and pulls video ids out of the
// embedded page data.
type Scraper struct {
	client  *http.Client
	baseURL string
}

// NewScraper returns a scraper using client, or a client with a 10 second
// timeout when client is nil.
func NewScraper(client *http.Client) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Scraper{client: client, baseURL: DefaultSearchURL}
}

// WithBaseURL points the scraper at another results endpoint.
func (s *Scraper) WithBaseURL(u string) *Scraper {
	s.baseURL = u
	return s
}

// Search returns the distinct video ids found on the live results page for
// query, in page order.
func (s *Scraper) Search(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	target := s.baseURL + "?search_query=" + url.QueryEscape(query) + "&sp=" + liveFilter

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch search page: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read search page: %w", err)
	}
	return ScanVideoIDs(body), nil
}

// ScanVideoIDs returns the distinct ids in page in order of appearance.
func ScanVideoIDs(page []byte) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range videoIDPattern.FindAllSubmatch(page, -1) {
		id := string(m[1])
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// WatchURLs turns ids into watch page urls.
func WatchURLs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = WatchURLPrefix + id
	}
	return out
}
