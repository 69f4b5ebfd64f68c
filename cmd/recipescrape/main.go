package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/finikeen/recipes-app/internal/app"
	"github.com/finikeen/recipes-app/internal/ingredient"
)

// options are the parsed command line settings that are not part of app.Config.
type options struct {
	configPath  string
	ingredients []string
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := app.LoadEnvFiles(".env", ".env.local"); err != nil {
		log.Warn().Err(err).Msg("dotenv load failed")
	}

	cfg, opts, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	if len(opts.ingredients) > 0 {
		if err := writeIngredients(os.Stdout, opts.ingredients); err != nil {
			log.Error().Err(err).Msg("parse ingredients failed")
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// A page without a recipe is an expected outcome with its own exit code.
		if errors.Is(err, app.ErrNoRecipe) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// parseConfig builds the effective Config. Precedence from lowest to highest:
// defaults, config file, environment, explicitly set flags.
func parseConfig(args []string) (app.Config, options, error) {
	var opts options
	fs := flag.NewFlagSet("recipescrape", flag.ContinueOnError)

	var (
		flagCfg      app.Config
		allowOrigins string
		ingredients  multiFlag
	)
	def := app.DefaultConfig()
	fs.StringVar(&opts.configPath, "config", os.Getenv("RECIPES_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&flagCfg.URL, "url", "", "Recipe page URL to scrape")
	fs.StringVar(&flagCfg.InputPath, "file", "", "Local HTML file to extract from instead of fetching")
	fs.StringVar(&flagCfg.OutputPath, "output", "", "Write the result to this path instead of stdout")
	fs.StringVar(&flagCfg.Format, "format", def.Format, "Output format: json or md")
	fs.StringVar(&flagCfg.PDFPath, "pdf", "", "Also write a PDF recipe card to this path")
	fs.BoolVar(&flagCfg.Serve, "serve", false, "Run the HTTP API instead of a one-shot scrape")
	fs.StringVar(&flagCfg.ListenAddr, "listen", def.ListenAddr, "HTTP listen address")
	fs.StringVar(&allowOrigins, "cors.origins", "", "Comma-separated CORS allowed origins")
	fs.StringVar(&flagCfg.UserAgent, "fetch.ua", def.UserAgent, "User-Agent for page requests")
	fs.DurationVar(&flagCfg.FetchTimeout, "fetch.timeout", def.FetchTimeout, "Per-request fetch timeout")
	fs.IntVar(&flagCfg.MaxAttempts, "fetch.attempts", def.MaxAttempts, "Fetch attempts including the first")
	fs.BoolVar(&flagCfg.RespectRobots, "fetch.robots", false, "Refuse pages excluded by robots.txt")
	fs.StringVar(&flagCfg.CacheDir, "cache.dir", "", "Page cache directory; empty disables caching")
	fs.DurationVar(&flagCfg.CacheMaxAge, "cache.maxAge", 0, "Purge cached pages older than this at startup; 0 disables")
	fs.BoolVar(&flagCfg.CacheClear, "cache.clear", false, "Clear the cache directory before running")
	fs.BoolVar(&flagCfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&flagCfg.Verbose, "v", false, "Verbose logging")
	fs.Var(&ingredients, "ingredient", "Parse an ingredient line and print it as JSON (repeatable)")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, opts, err
	}
	opts.ingredients = ingredients
	flagCfg.AllowOrigins = app.SplitList(allowOrigins)

	cfg := def
	if strings.TrimSpace(opts.configPath) != "" {
		fc, err := app.LoadConfigFile(opts.configPath)
		if err != nil {
			return app.Config{}, opts, fmt.Errorf("load config: %w", err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return app.Config{}, opts, err
		}
	}
	app.ApplyEnvOverrides(&cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.URL = flagCfg.URL
		case "file":
			cfg.InputPath = flagCfg.InputPath
		case "output":
			cfg.OutputPath = flagCfg.OutputPath
		case "format":
			cfg.Format = flagCfg.Format
		case "pdf":
			cfg.PDFPath = flagCfg.PDFPath
		case "serve":
			cfg.Serve = flagCfg.Serve
		case "listen":
			cfg.ListenAddr = flagCfg.ListenAddr
		case "cors.origins":
			cfg.AllowOrigins = flagCfg.AllowOrigins
		case "fetch.ua":
			cfg.UserAgent = flagCfg.UserAgent
		case "fetch.timeout":
			cfg.FetchTimeout = flagCfg.FetchTimeout
		case "fetch.attempts":
			cfg.MaxAttempts = flagCfg.MaxAttempts
		case "fetch.robots":
			cfg.RespectRobots = flagCfg.RespectRobots
		case "cache.dir":
			cfg.CacheDir = flagCfg.CacheDir
		case "cache.maxAge":
			cfg.CacheMaxAge = flagCfg.CacheMaxAge
		case "cache.clear":
			cfg.CacheClear = flagCfg.CacheClear
		case "cache.strictPerms":
			cfg.CacheStrictPerms = flagCfg.CacheStrictPerms
		case "v":
			cfg.Verbose = flagCfg.Verbose
		}
	})

	// A bare positional argument is taken as the URL.
	if cfg.URL == "" && cfg.InputPath == "" && fs.NArg() > 0 {
		cfg.URL = fs.Arg(0)
	}
	return cfg, opts, nil
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}

func writeIngredients(w io.Writer, lines []string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ingredient.ParseAll(lines))
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ", ") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
