// Package render formats an extracted recipe for people: Markdown for the
// terminal and a one-page PDF recipe card.
package render

import (
	"fmt"
	"strings"

	"github.com/finikeen/recipes-app/internal/extract"
)

// Markdown renders the recipe with a title, optional description, a bulleted
// ingredient list and numbered directions. sourceURL is optional.
func Markdown(r extract.Recipe, sourceURL string) string {
	var b strings.Builder
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "Untitled recipe"
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	if d := strings.TrimSpace(r.Description); d != "" {
		b.WriteString(d)
		b.WriteString("\n\n")
	}
	if len(r.Ingredients) > 0 {
		b.WriteString("## Ingredients\n\n")
		for _, line := range r.Ingredients {
			if strings.TrimSpace(line) == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}
	if len(r.Directions) > 0 {
		b.WriteString("## Directions\n\n")
		for i, step := range r.Directions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteString("\n")
	}
	if u := strings.TrimSpace(sourceURL); u != "" {
		fmt.Fprintf(&b, "Source: [%s](%s)\n", u, u)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
