package ingredient

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// unitAliases maps a canonical unit identifier to every spelling that names it.
var unitAliases = map[string][]string{
	// Volume
	"tablespoon": {"tablespoons", "tablespoon", "tbsps", "tbsp"},
	"teaspoon":   {"teaspoons", "teaspoon", "tsps", "tsp"},
	"cup":        {"cups", "cup"},
	"fluidOunce": {"fl oz"},
	"milliliter": {"milliliters", "milliliter", "ml"},
	"liter":      {"liters", "liter", "l"},
	// Weight
	"ounce":    {"ounces", "ounce", "oz"},
	"pound":    {"pounds", "pound", "lbs", "lb"},
	"kilogram": {"kilograms", "kilogram", "kg"},
	"gram":     {"grams", "gram", "g"},
	// Descriptive
	"pinch":   {"pinches", "pinch"},
	"dash":    {"dashes", "dash"},
	"handful": {"handfuls", "handful"},
	"can":     {"cans", "can"},
	"bunch":   {"bunches", "bunch"},
	"clove":   {"cloves", "clove"},
	"sprig":   {"sprigs", "sprig"},
	"slice":   {"slices", "slice"},
	"piece":   {"pieces", "piece"},
	"stalk":   {"stalks", "stalk"},
	"head":    {"heads", "head"},
	"package": {"packages", "package", "pkg"},
}

// Unit is one spelling of a recognized unit of measure.
type Unit struct {
	Alias string // lower-case spelling, e.g. "tbsp"
	ID    string // canonical identifier, e.g. "tablespoon"
}

// Vocabulary is an immutable set of unit aliases ordered longest first, so that
// multi-word units such as "fl oz" are tried before "oz".
type Vocabulary struct {
	units []Unit
}

// NewVocabulary builds a vocabulary from a map of canonical id to aliases.
func NewVocabulary(aliases map[string][]string) *Vocabulary {
	units := make([]Unit, 0, len(aliases)*3)
	for id, spellings := range aliases {
		for _, s := range spellings {
			units = append(units, Unit{Alias: strings.ToLower(s), ID: id})
		}
	}
	// Length descending, then alphabetical so the order does not depend on map iteration.
	sort.Slice(units, func(i, j int) bool {
		if len(units[i].Alias) != len(units[j].Alias) {
			return len(units[i].Alias) > len(units[j].Alias)
		}
		return units[i].Alias < units[j].Alias
	})
	return &Vocabulary{units: units}
}

// DefaultVocabulary holds the compiled-in volume, weight and count units.
var DefaultVocabulary = NewVocabulary(unitAliases)

// MatchPrefix reports the longest unit alias that s starts with, compared
// case-insensitively, when the alias is followed by whitespace or the end of s.
// A space inside an alias such as "fl oz" matches any Unicode space. The
// returned text is the matched slice of s with its original casing.
func (v *Vocabulary) MatchPrefix(s string) (text string, unit Unit, ok bool) {
	for _, u := range v.units {
		n, ok := aliasPrefixLen(s, u.Alias)
		if !ok {
			continue
		}
		if len(s) > n && !startsWithSpace(s[n:]) {
			continue
		}
		return s[:n], u, true
	}
	return "", Unit{}, false
}

// aliasPrefixLen returns the byte length of the prefix of s that spells alias.
func aliasPrefixLen(s, alias string) (int, bool) {
	i := 0
	for _, want := range alias {
		if i >= len(s) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case want == ' ':
			if !unicode.IsSpace(r) {
				return 0, false
			}
		case r != want && unicode.ToLower(r) != want:
			return 0, false
		}
		i += size
	}
	return i, true
}

// Units returns a copy of the vocabulary in match order.
func (v *Vocabulary) Units() []Unit {
	out := make([]Unit, len(v.units))
	copy(out, v.units)
	return out
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
