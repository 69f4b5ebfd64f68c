// Package ingredient splits a free-text ingredient line into quantity, unit and
// item. Everything here is a pure function of its input and the read-only unit
// vocabulary, so it is safe for concurrent use.
package ingredient

import (
	"regexp"
	"strings"
	"unicode"
)

// quantityPattern lists the accepted quantity forms in priority order: a mixed
// fraction must be tried before a simple fraction or integer, otherwise
// "1 1/2" splits into "1" and an item starting with "1/2".
const quantityPattern = `\d+` + spaceClass + `+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?`

// spaceClass matches the runes unicode.IsSpace accepts, including U+00A0.
const spaceClass = `[\s\v\x{85}\p{Zs}]`

var quantityRe = regexp.MustCompile(`^(?:` + quantityPattern + `)`)

// Tokenized is the result of splitting one ingredient line. Absent fields are
// empty strings.
type Tokenized struct {
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Item     string `json:"item"`
}

// String joins the fields back into a single line.
func (t Tokenized) String() string {
	return strings.Join(strings.Fields(t.Quantity+" "+t.Unit+" "+t.Item), " ")
}

// Tokenizer splits ingredient lines against a unit vocabulary.
type Tokenizer struct {
	Vocabulary *Vocabulary
}

// Tokenize splits text using the default vocabulary. It reports false when the
// input is blank or nothing is left for the item once quantity and unit are
// removed.
func Tokenize(text string) (Tokenized, bool) {
	t, _, ok := Tokenizer{}.tokenize(text)
	return t, ok
}

// Tokenize splits text; see the package-level Tokenize.
func (tk Tokenizer) Tokenize(text string) (Tokenized, bool) {
	t, _, ok := tk.tokenize(text)
	return t, ok
}

// tokenize also returns the canonical id of the matched unit, if any. It never
// backtracks: a consumed quantity or unit stays consumed.
func (tk Tokenizer) tokenize(text string) (Tokenized, string, bool) {
	vocab := tk.Vocabulary
	if vocab == nil {
		vocab = DefaultVocabulary
	}
	remaining := strings.TrimSpace(text)
	if remaining == "" {
		return Tokenized{}, "", false
	}

	var out Tokenized
	if loc := quantityRe.FindStringIndex(remaining); loc != nil {
		out.Quantity = strings.TrimSpace(remaining[:loc[1]])
		remaining = strings.TrimLeftFunc(remaining[loc[1]:], unicode.IsSpace)
	}

	var unitID string
	if matched, unit, ok := vocab.MatchPrefix(remaining); ok {
		out.Unit = matched
		unitID = unit.ID
		remaining = strings.TrimLeftFunc(remaining[len(matched):], unicode.IsSpace)
	}

	remaining = dropConnector(remaining)

	out.Item = strings.TrimSpace(remaining)
	if out.Item == "" {
		return Tokenized{}, "", false
	}
	return out, unitID, true
}

// dropConnector removes a leading "of", as in "pinch of salt".
func dropConnector(s string) string {
	if len(s) < 2 || !strings.EqualFold(s[:2], "of") {
		return s
	}
	if len(s) == 2 {
		return ""
	}
	if startsWithSpace(s[2:]) {
		return strings.TrimLeftFunc(s[2:], unicode.IsSpace)
	}
	return s
}
