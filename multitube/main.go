package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/portal-multitube/multitube/feeds"
)

var flags flagValues

var rootCmd = &cobra.Command{
	Use:   "multitube",
	Short: "Portal demo: tile many video players on one resizable board",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, &flags)
		if err != nil {
			return err
		}
		if err := setupLogger(cfg, nil); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runMultitube(ctx, cfg)
	},
}

func init() {
	flags.register(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute multitube command")
	}
}

func runMultitube(ctx context.Context, cfg *Config) error {
	cache, err := feeds.OpenCache(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			log.Warn().Err(err).Msg("[multitube] close cache")
		}
	}()
	if n, err := cache.Prune(); err != nil {
		log.Warn().Err(err).Msg("[multitube] prune cache")
	} else if n > 0 {
		log.Debug().Int("removed", n).Msg("[multitube] pruned cache")
	}

	svc := feeds.NewService(
		feeds.NewScraper(&http.Client{Timeout: cfg.SearchTimeout}),
		feeds.NewYTDLPLister(cfg.SearchTimeout*6),
		cache,
	)
	app := newApp(cfg, svc)
	handler := app.NewHandler()

	errCh := make(chan error, 2)
	portalClose, err := startPortalBridge(cfg, handler, errCh)
	if err != nil {
		return err
	}

	var httpSrv *http.Server
	if cfg.Port > 0 {
		httpSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		log.Info().Msgf("[multitube] serving locally at http://127.0.0.1:%d", cfg.Port)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("local http: %w", err)
			}
		}()
	}
	if httpSrv == nil && portalClose == nil {
		return fmt.Errorf("nothing to serve: set --port or a relay server url")
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	if portalClose != nil {
		portalClose()
	}
	if httpSrv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("[multitube] http server shutdown error")
		}
	}
	app.hub.closeAll()
	if !app.hub.wait(5 * time.Second) {
		log.Warn().Msg("[multitube] sessions still open after shutdown timeout")
	}
	log.Info().Msg("[multitube] shutdown complete")
	return runErr
}
