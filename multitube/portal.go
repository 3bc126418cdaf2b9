package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"gosuda.org/portal/portal/core/cryptoops"
	"gosuda.org/portal/sdk"

	"github.com/gosuda/portal-multitube/multitube/feeds"
)

// startPortalBridge exposes handler through the relay servers in cfg. It
// returns a nil closer when no relay is configured.
func startPortalBridge(cfg *Config, handler http.Handler, errCh chan<- error) (func(), error) {
	if len(cfg.ServerURLs) == 0 {
		return nil, nil
	}
	cred := sdk.NewCredential()
	if cfg.CredKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.CredKey)
		if err != nil {
			return nil, fmt.Errorf("decode cred key: %w", err)
		}
		cred2, err := cryptoops.NewCredentialFromPrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("credential from key: %w", err)
		}
		cred = cred2
	}
	client, err := sdk.NewClient(func(c *sdk.RDClientConfig) {
		c.BootstrapServers = cfg.ServerURLs
	})
	if err != nil {
		return nil, fmt.Errorf("portal client: %w", err)
	}
	ln, err := client.Listen(cred, cfg.Name, []string{"http/1.1"},
		sdk.WithDescription(feeds.CleanText(cfg.Description)),
		sdk.WithHide(cfg.Hide),
		sdk.WithOwner(cfg.Owner),
		sdk.WithTags(splitTags(cfg.Tags)),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("portal listen: %w", err)
	}
	log.Info().
		Str("name", cfg.Name).
		Strs("servers", cfg.ServerURLs).
		Msg("[multitube] serving Portal relay")
	go func() {
		if err := http.Serve(ln, stripPeer(handler)); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("portal http serve: %w", err)
		}
	}()
	return func() {
		_ = ln.Close()
		_ = client.Close()
	}, nil
}

// stripPeer removes the relay's /peer/{id} prefix so routes match.
func stripPeer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "/peer/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			next.ServeHTTP(w, r)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, prefix)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			r2 := r.Clone(r.Context())
			r2.URL.Path = rest[i:]
			next.ServeHTTP(w, r2)
			return
		}
		// no suffix after the token: redirect so relative urls resolve
		http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
	})
}
