package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/rs/zerolog/log"
)

var (
	defaultTitleSelectors = []string{
		".recipe-title",
		".recipe-name",
		"h1.entry-title",
		"h1.post-title",
		"h1",
	}
	defaultDescriptionSelectors = []string{
		".recipe-description",
		".recipe-summary",
		".wprm-recipe-summary",
	}
	defaultIngredientSelectors = []string{
		".ingredients li",
		".recipe-ingredients li",
		".wprm-recipe-ingredient",
	}
	defaultDirectionSelectors = []string{
		".instructions p",
		".directions p",
		".recipe-instructions p",
		".wprm-recipe-instruction-text",
		".step",
	}
)

// Heuristic recovers a recipe from common recipe-blog class names and tags.
// Nil selector lists fall back to the built-in defaults.
//
// Title and Description are tried in order and the first matching element is
// used. Ingredient and direction selectors are combined, and every match is
// kept in document order. A result needs a name and at least one ingredient
// or direction; anything less is rejected.
type Heuristic struct {
	Title       []string
	Description []string
	Ingredients []string
	Directions  []string
}

func (Heuristic) Name() string { return "heuristic" }

// Extract implements Strategy.
func (h Heuristic) Extract(doc *goquery.Document) (Recipe, bool) {
	name := firstText(doc, orDefault(h.Title, defaultTitleSelectors))
	description := firstText(doc, orDefault(h.Description, defaultDescriptionSelectors))
	ingredients := allTexts(doc, orDefault(h.Ingredients, defaultIngredientSelectors))
	directions := allTexts(doc, orDefault(h.Directions, defaultDirectionSelectors))

	if name == "" || (len(ingredients) == 0 && len(directions) == 0) {
		return Recipe{}, false
	}
	return newRecipe(name, description, ingredients, directions), true
}

func orDefault(selectors, fallback []string) []string {
	if selectors == nil {
		return fallback
	}
	return selectors
}

// firstText returns the cleaned text of the first element matched by the
// earliest selector that matches anything.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		m, ok := compile(sel)
		if !ok {
			continue
		}
		if first := doc.FindMatcher(m).First(); first.Length() > 0 {
			return cleanText(first.Text())
		}
	}
	return ""
}

// allTexts returns the non-empty cleaned texts of every element matched by any
// selector. Each element appears once, in document order.
func allTexts(doc *goquery.Document, selectors []string) []string {
	valid := make([]string, 0, len(selectors))
	for _, sel := range selectors {
		if _, ok := compile(sel); ok {
			valid = append(valid, sel)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	m, ok := compile(strings.Join(valid, ", "))
	if !ok {
		return nil
	}
	var out []string
	doc.FindMatcher(m).Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// compile parses a selector group; goquery's Find panics on invalid input.
func compile(sel string) (cascadia.Selector, bool) {
	m, err := cascadia.Compile(sel)
	if err != nil {
		log.Debug().Err(err).Str("selector", sel).Msg("ignoring invalid selector")
		return nil, false
	}
	return m, true
}
