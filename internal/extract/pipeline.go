package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// Strategy is one way of finding a recipe in a parsed document. Implementations
// must be deterministic and free of side effects.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document) (Recipe, bool)
}

// Pipeline runs strategies in order and returns the first result. Results are
// never merged across strategies.
type Pipeline struct {
	Strategies []Strategy
}

// NewPipeline returns the default chain: structured data, then heuristics.
func NewPipeline() *Pipeline {
	return &Pipeline{Strategies: []Strategy{StructuredData{}, Heuristic{}}}
}

var defaultPipeline = NewPipeline()

// ExtractRecipe runs the default pipeline over an HTML document.
func ExtractRecipe(source string) (Recipe, bool) {
	return defaultPipeline.ExtractRecipe(source)
}

// ExtractRecipe parses source once and hands it to each strategy in turn.
func (p *Pipeline) ExtractRecipe(source string) (Recipe, bool) {
	r, _, ok := p.Extract(source)
	return r, ok
}

// Extract is ExtractRecipe that also reports which strategy produced the result.
func (p *Pipeline) Extract(source string) (Recipe, string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		log.Debug().Err(err).Msg("document parse failed")
		return Recipe{}, "", false
	}
	for _, s := range p.Strategies {
		if r, ok := s.Extract(doc); ok {
			log.Debug().Str("strategy", s.Name()).Int("ingredients", len(r.Ingredients)).Int("directions", len(r.Directions)).Msg("recipe extracted")
			return r, s.Name(), true
		}
	}
	return Recipe{}, "", false
}
