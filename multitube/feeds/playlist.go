package feeds

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"
)

// Entry is one video of a playlist.
type Entry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

var playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10,64}$`)

// ParsePlaylistID accepts a bare playlist id or any url carrying a list
// parameter.
func ParsePlaylistID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "list=") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", ErrInvalidPlaylist
		}
		raw = u.Query().Get("list")
	}
	if !playlistIDPattern.MatchString(raw) {
		return "", ErrInvalidPlaylist
	}
	return raw, nil
}

// YTDLPLister lists playlist entries through the ytdlp library.
type YTDLPLister struct {
	timeout time.Duration
}

// NewYTDLPLister returns a lister bounding every lookup by timeout.
func NewYTDLPLister(timeout time.Duration) *YTDLPLister {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &YTDLPLister{timeout: timeout}
}

// List returns every entry of playlist id.
func (l *YTDLPLister) List(ctx context.Context, id string) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, id, 0)
	if err != nil {
		return nil, fmt.Errorf("get playlist items: %w", err)
	}
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		out = append(out, Entry{
			ID:    it.VideoID,
			Title: CleanText(it.Title),
			URL:   WatchURLPrefix + it.VideoID,
		})
	}
	return out, nil
}
