package ingredient

import (
	"regexp"
	"strings"
)

// rangeRe matches a leading ranged quantity such as "2-3", "2 – 3" or "1 to 1 1/2".
var rangeRe = regexp.MustCompile(`^(` + quantityPattern + `)(?:` + spaceClass + `*[-–—]` + spaceClass + `*|` + spaceClass + `+to` + spaceClass + `+)(` + quantityPattern + `)(?:` + spaceClass + `|$)`)

// Parsed is one ingredient line decomposed for storage and display. Nil fields
// were not present in the source line. Order is the zero-based position of the
// line in its source list.
type Parsed struct {
	Quantity  *string `json:"quantity"`
	Quantity2 *string `json:"quantity2"`
	Unit      *string `json:"unit"`
	UnitID    *string `json:"unitId"`
	Item      string  `json:"item"`
	Original  string  `json:"original"`
	Order     int     `json:"order"`
}

// Parse decomposes a single line. A line the tokenizer cannot split keeps the
// whole original text as its item, so every line yields exactly one result.
func Parse(original string, order int) Parsed {
	return Tokenizer{}.Parse(original, order)
}

// ParseAll parses lines in order, tagging each with its index.
func ParseAll(lines []string) []Parsed {
	return Tokenizer{}.ParseAll(lines)
}

// ParseAll parses lines in order, tagging each with its index.
func (tk Tokenizer) ParseAll(lines []string) []Parsed {
	out := make([]Parsed, len(lines))
	for i, line := range lines {
		out[i] = tk.Parse(line, i)
	}
	return out
}

// Parse decomposes a single line; see the package-level Parse.
func (tk Tokenizer) Parse(original string, order int) Parsed {
	p := Parsed{Item: original, Original: original, Order: order}

	text := strings.TrimSpace(original)
	var low, high string
	if m := rangeRe.FindStringSubmatchIndex(text); m != nil {
		low = text[m[2]:m[3]]
		high = text[m[4]:m[5]]
		text = text[m[1]:]
	}

	tok, unitID, ok := tk.tokenize(text)
	if !ok {
		return p
	}
	// A range consumed the quantity already; anything the tokenizer reads as a
	// quantity now belongs to the item.
	if low != "" && tok.Quantity != "" {
		tok.Item = strings.TrimSpace(tok.Quantity + " " + tok.Unit + " " + tok.Item)
		tok.Quantity, tok.Unit, unitID = "", "", ""
	}

	p.Item = tok.Item
	switch {
	case low != "":
		p.Quantity = strPtr(low)
		p.Quantity2 = strPtr(high)
	case tok.Quantity != "":
		p.Quantity = strPtr(tok.Quantity)
	}
	if tok.Unit != "" {
		p.Unit = strPtr(tok.Unit)
		p.UnitID = strPtr(unitID)
	}
	return p
}

func strPtr(s string) *string { return &s }
