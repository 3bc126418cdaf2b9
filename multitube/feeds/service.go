package feeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50

	// sharedLookupTimeout bounds one upstream lookup shared by every caller
	// waiting on the same key.
	sharedLookupTimeout = 2 * time.Minute
)

// Searcher finds video ids for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Lister lists the entries of a playlist.
type Lister interface {
	List(ctx context.Context, id string) ([]Entry, error)
}

// Service answers search and playlist lookups through the cache.
type Service struct {
	searcher Searcher
	lister   Lister
	cache    *Cache
	group    singleflight.Group
}

// NewService wires a service. cache may be nil.
func NewService(searcher Searcher, lister Lister, cache *Cache) *Service {
	return &Service{searcher: searcher, lister: lister, cache: cache}
}

// ClampLimit maps a requested result count into [1, MaxSearchLimit],
// treating zero and negatives as DefaultSearchLimit.
func ClampLimit(n int) int {
	if n <= 0 {
		return DefaultSearchLimit
	}
	return min(n, MaxSearchLimit)
}

// shared runs fn once per key for all concurrent callers. The lookup is
// detached from the caller that started it, so one caller giving up does
// not fail the others; each caller still stops waiting on its own ctx.
func (s *Service) shared(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		return fn(lctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Search returns up to limit watch urls of live results for query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	limit = ClampLimit(limit)
	key := "search:" + strings.ToLower(query)

	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		var ids []string
		if ok, err := s.cache.Get(key, &ids); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[feeds] cache read failed")
		} else if ok {
			return ids, nil
		}
		ids, err := s.searcher.Search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		if err := s.cache.Put(key, ids); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[feeds] cache write failed")
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	ids := v.([]string)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return WatchURLs(ids), nil
}

// Playlist returns the entries of the playlist named by raw, a playlist id
// or a url with a list parameter.
func (s *Service) Playlist(ctx context.Context, raw string) ([]Entry, error) {
	id, err := ParsePlaylistID(raw)
	if err != nil {
		return nil, err
	}
	key := "playlist:" + id

	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		var entries []Entry
		if ok, err := s.cache.Get(key, &entries); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[feeds] cache read failed")
		} else if ok {
			return entries, nil
		}
		entries, err := s.lister.List(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("playlist %s: %w", id, err)
		}
		if err := s.cache.Put(key, entries); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[feeds] cache write failed")
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}
