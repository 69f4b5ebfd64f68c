package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/finikeen/recipes-app/internal/api"
	"github.com/finikeen/recipes-app/internal/cache"
	"github.com/finikeen/recipes-app/internal/fetch"
	"github.com/finikeen/recipes-app/internal/render"
	"github.com/finikeen/recipes-app/internal/robots"
	"github.com/finikeen/recipes-app/internal/scrape"
)

// ErrNoRecipe is returned by Run when a one-shot scrape finds no recipe. The
// CLI maps it to a distinct exit code.
var ErrNoRecipe = errors.New("no recipe found")

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg     Config
	pages   *cache.Pages
	fetcher *fetch.Client
	scraper *scrape.Service
	// stdout receives one-shot output when no output path is configured.
	stdout io.Writer
}

// New wires the cache, fetch client and scrape service from cfg.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, stdout: os.Stdout}

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			// Purge failures should not block startup
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Msg("purged stale cached pages")
			}
		}
		a.pages = &cache.Pages{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	a.fetcher = &fetch.Client{
		HTTPClient:        newFetchHTTPClient(),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		Cache:             a.pages,
		RedirectMaxHops:   5,
		MaxConcurrent:     8,
	}
	if cfg.RespectRobots {
		a.fetcher.Robots = &robots.Checker{HTTPClient: a.fetcher.HTTPClient, UserAgent: cfg.UserAgent}
	}
	a.scraper = scrape.New(a.fetcher)
	return a, nil
}

func (a *App) Close() {
	// nothing yet
}

// Handler returns the HTTP API backed by this app's scrape service.
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.NewHandler(a.scraper), a.cfg.AllowOrigins)
}

// Run serves the API or performs a single scrape, depending on cfg.Serve.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.Serve {
		return a.Serve(ctx)
	}
	res, err := a.scrapeOnce(ctx)
	if err != nil {
		return err
	}
	if err := a.writeResult(res); err != nil {
		return err
	}
	if !res.Success {
		log.Warn().Str("reason", res.FailureReason).Msg("no recipe extracted")
		return ErrNoRecipe
	}
	return nil
}

// Serve listens on cfg.ListenAddr until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) scrapeOnce(ctx context.Context) (scrape.Result, error) {
	if a.cfg.InputPath != "" {
		b, err := os.ReadFile(a.cfg.InputPath)
		if err != nil {
			return scrape.Result{}, fmt.Errorf("read input: %w", err)
		}
		return a.scraper.FromHTML(string(b)), nil
	}
	return a.scraper.Scrape(ctx, a.cfg.URL)
}

func (a *App) writeResult(res scrape.Result) error {
	var content []byte
	switch a.cfg.Format {
	case FormatMarkdown:
		if res.Recipe == nil {
			content = []byte(res.FailureReason + "\n")
		} else {
			content = []byte(render.Markdown(*res.Recipe, a.cfg.URL))
		}
	default:
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		content = append(b, '\n')
	}

	if strings.TrimSpace(a.cfg.OutputPath) == "" {
		if _, err := a.stdout.Write(content); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	} else {
		if err := os.WriteFile(a.cfg.OutputPath, content, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Info().Str("out", a.cfg.OutputPath).Msg("wrote recipe")
	}

	if a.cfg.PDFPath != "" && res.Recipe != nil {
		if err := render.WritePDF(*res.Recipe, a.cfg.URL, a.cfg.PDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("pdf", a.cfg.PDFPath).Msg("wrote recipe pdf")
	}
	return nil
}
