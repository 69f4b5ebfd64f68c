// Package scrape is the boundary between a recipe URL and the extraction
// pipeline. Every outcome, including network failures, is reported in the same
// Result shape.
package scrape

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/finikeen/recipes-app/internal/extract"
	"github.com/finikeen/recipes-app/internal/fetch"
	"github.com/finikeen/recipes-app/internal/robots"
)

// Failure reasons shown to users.
const (
	ReasonTimeout  = "Timeout"
	ReasonNoRecipe = "No recipe data found"
	ReasonRobots   = "Disallowed by robots.txt"
)

// ErrURLRequired is returned when Scrape is called without a URL.
var ErrURLRequired = errors.New("url is required")

// Fetcher downloads a page body.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Extractor turns an HTML document into a recipe.
type Extractor interface {
	ExtractRecipe(source string) (extract.Recipe, bool)
}

// Result is the uniform response for one scrape.
type Result struct {
	Success       bool            `json:"success"`
	FailureReason string          `json:"failureReason,omitempty"`
	Recipe        *extract.Recipe `json:"recipe,omitempty"`
}

// Service fetches a page and runs the extraction pipeline over it.
type Service struct {
	Fetcher   Fetcher
	Extractor Extractor
}

// New returns a Service using the default extraction pipeline.
func New(f Fetcher) *Service {
	return &Service{Fetcher: f, Extractor: extract.NewPipeline()}
}

// Scrape fetches url and extracts a recipe from it. The only error returned is
// ErrURLRequired; fetch and extraction failures become unsuccessful Results.
func (s *Service) Scrape(ctx context.Context, url string) (Result, error) {
	if strings.TrimSpace(url) == "" {
		return Result{}, ErrURLRequired
	}
	url = CanonicalURL(url)
	body, _, err := s.Fetcher.Get(ctx, url)
	if err != nil {
		reason := FailureReason(err)
		log.Warn().Err(err).Str("url", url).Str("reason", reason).Msg("fetch failed")
		return Result{FailureReason: reason}, nil
	}
	return s.FromHTML(string(body)), nil
}

// FromHTML runs the pipeline over an already retrieved document.
func (s *Service) FromHTML(source string) Result {
	r, ok := s.Extractor.ExtractRecipe(source)
	if !ok {
		return Result{FailureReason: ReasonNoRecipe}
	}
	return Result{Success: true, Recipe: &r}
}

// FailureReason maps a fetch error to the reason reported to users: the HTTP
// status for non-success responses, "Timeout" for deadlines, a robots.txt
// refusal, or the generic no-recipe reason for anything else.
func FailureReason(err error) string {
	var se *fetch.StatusError
	switch {
	case errors.As(err, &se):
		return se.Reason()
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, robots.ErrDisallowed):
		return ReasonRobots
	default:
		return ReasonNoRecipe
	}
}
