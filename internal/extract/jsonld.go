package extract

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// StructuredData extracts a recipe from JSON-LD blocks. Blocks are scanned in
// document order and the first object typed "Recipe" wins; a block that is not
// valid JSON is skipped without ending the scan.
type StructuredData struct{}

func (StructuredData) Name() string { return "structured-data" }

// Extract implements Strategy.
func (StructuredData) Extract(doc *goquery.Document) (Recipe, bool) {
	var found map[string]any
	doc.Find(jsonLDSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		block := parseBlock(s.Text())
		if block.skip != nil {
			log.Debug().Err(block.skip).Int("block", i).Msg("skipping malformed structured data")
			return true
		}
		for _, obj := range block.objects {
			if isRecipe(obj) {
				found = obj
				return false
			}
		}
		return true
	})
	if found == nil {
		return Recipe{}, false
	}
	return newRecipe(
		cleanEncodedText(stringOf(found["name"])),
		cleanEncodedText(stringOf(found["description"])),
		normalizeIngredients(found["recipeIngredient"]),
		normalizeInstructions(found["recipeInstructions"]),
	), true
}

// ldBlock is the outcome of decoding one script block: either its candidate
// objects or the reason it was skipped.
type ldBlock struct {
	objects []map[string]any
	skip    error
}

func parseBlock(text string) ldBlock {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return ldBlock{skip: err}
	}
	// Trailing content after the first value means the block is not one JSON document.
	if _, err := dec.Token(); err != io.EOF {
		return ldBlock{skip: errTrailingData}
	}
	var objects []map[string]any
	switch v := data.(type) {
	case map[string]any:
		objects = appendCandidates(objects, v)
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				objects = appendCandidates(objects, obj)
			}
		}
	}
	return ldBlock{objects: objects}
}

// appendCandidates adds obj followed by the members of its @graph, if any.
func appendCandidates(dst []map[string]any, obj map[string]any) []map[string]any {
	dst = append(dst, obj)
	if graph, ok := obj["@graph"].([]any); ok {
		for _, item := range graph {
			if member, ok := item.(map[string]any); ok {
				dst = append(dst, member)
			}
		}
	}
	return dst
}

func isRecipe(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// normalizeIngredients accepts a list or a single value. Lines are kept even
// when empty so the list mirrors the source one to one.
func normalizeIngredients(raw any) []string {
	if isAbsent(raw) {
		return []string{}
	}
	list, ok := raw.([]any)
	if !ok {
		return []string{cleanEncodedText(stringOf(raw))}
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, cleanEncodedText(stringOf(v)))
	}
	return out
}

// normalizeInstructions accepts a string, a list of strings and HowToStep
// objects, or HowToSection objects wrapping further steps. Empty steps are
// dropped.
func normalizeInstructions(raw any) []string {
	out := []string{}
	if isAbsent(raw) {
		return out
	}
	var walk func(v any)
	walk = func(v any) {
		switch step := v.(type) {
		case string:
			out = appendNonEmpty(out, cleanEncodedText(step))
		case map[string]any:
			if items, ok := step["itemListElement"].([]any); ok && isSection(step) {
				for _, item := range items {
					walk(item)
				}
				return
			}
			text, _ := step["text"].(string)
			out = appendNonEmpty(out, cleanEncodedText(text))
		}
	}
	switch v := raw.(type) {
	case []any:
		for _, step := range v {
			walk(step)
		}
	default:
		walk(v)
	}
	return out
}

func isSection(obj map[string]any) bool {
	t, _ := obj["@type"].(string)
	return t == "HowToSection"
}

func appendNonEmpty(dst []string, s string) []string {
	if s == "" {
		return dst
	}
	return append(dst, s)
}

// isAbsent treats nil, false, zero and the empty string as no value.
func isAbsent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	}
	return false
}

// stringOf coerces a decoded JSON value to text. Objects contribute their
// text or name field when present.
func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		for _, key := range []string{"text", "name"} {
			if s, ok := t[key].(string); ok {
				return s
			}
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(b))
}
