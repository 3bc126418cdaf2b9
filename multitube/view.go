package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/portal-multitube/multitube/board"
	"github.com/gosuda/portal-multitube/multitube/feeds"
)

//go:embed static
var embeddedStatic embed.FS

var indexPage = template.Must(template.ParseFS(embeddedStatic, "static/index.html"))

// lookups is what the api handlers need from the feeds service.
type lookups interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Playlist(ctx context.Context, raw string) ([]feeds.Entry, error)
}

type app struct {
	name          string
	feeds         lookups
	hub           *hub
	origins       map[string]bool
	searchTimeout time.Duration
}

func newApp(cfg *Config, lookups lookups) *app {
	a := &app{
		name:          cfg.Name,
		feeds:         lookups,
		origins:       make(map[string]bool, len(cfg.AllowedOrigins)),
		searchTimeout: cfg.SearchTimeout,
	}
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			a.origins[o] = true
		}
	}
	a.hub = newHub(a.checkWSOrigin)
	return a
}

// NewHandler sets up the page, the static assets, the websocket endpoint
// and the lookup api.
func (a *app) NewHandler() http.Handler {
	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		panic(err)
	}
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		data := struct {
			Name string
		}{Name: a.name}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexPage.Execute(w, data); err != nil {
			log.Warn().Err(err).Msg("[multitube] render index")
		}
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Get("/ws", a.hub.serveWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(a.cors)
		r.Get("/search", a.handleSearch)
		r.Get("/playlist", a.handlePlaylist)
		r.Get("/extract", a.handleExtract)
	})
	return r
}

// cors answers allowed origins and short-circuits preflight requests.
func (a *app) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && a.origins[origin] {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "*")
				if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
					h.Set("Access-Control-Allow-Headers", req)
				} else {
					h.Set("Access-Control-Allow-Headers", "*")
				}
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkWSOrigin accepts same-host pages and any origin on the allow-list.
func (a *app) checkWSOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || a.origins[origin] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (a *app) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := feeds.DefaultSearchLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, errors.New("limit must be a number"))
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.searchTimeout)
	defer cancel()
	urls, err := a.feeds.Search(ctx, q.Get("query"), limit)
	if err != nil {
		if errors.Is(err, feeds.ErrEmptyQuery) {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		log.Warn().Err(err).Str("query", q.Get("query")).Msg("[multitube] search failed")
		respondError(w, http.StatusBadGateway, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"urls": urls})
}

func (a *app) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	entries, err := a.feeds.Playlist(r.Context(), r.URL.Query().Get("list"))
	if err != nil {
		if errors.Is(err, feeds.ErrInvalidPlaylist) {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		log.Warn().Err(err).Msg("[multitube] playlist lookup failed")
		respondError(w, http.StatusBadGateway, err)
		return
	}
	urls := make([]string, len(entries))
	for i, e := range entries {
		urls[i] = e.URL
	}
	respondJSON(w, http.StatusOK, map[string]any{"urls": urls, "items": entries})
}

func (a *app) handleExtract(w http.ResponseWriter, r *http.Request) {
	id, ok := board.ExtractID(r.URL.Query().Get("url"))
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "ok": ok})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode json response")
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
