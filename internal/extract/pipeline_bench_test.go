package extract

import (
	"strings"
	"testing"
)

func BenchmarkExtractRecipe(b *testing.B) {
	jsonLD := page(ld(`{"@type":"Recipe","name":"Bench","recipeIngredient":["2 cups flour","1 tsp salt"],"recipeInstructions":["Mix."]}`), "<p>body</p>")
	small := blogPage
	large := makeRecipeHTML(200, 200)

	b.Run("jsonld", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = ExtractRecipe(jsonLD)
		}
	})
	b.Run("heuristic_small", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = ExtractRecipe(small)
		}
	})
	b.Run("heuristic_large", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = ExtractRecipe(large)
		}
	})
}

func makeRecipeHTML(ingredients int, steps int) string {
	builder := new(strings.Builder)
	builder.WriteString("<html><head><title>demo</title></head><body><h1 class=\"recipe-title\">Demo</h1><ul class=\"ingredients\">")
	for i := 0; i < ingredients; i++ {
		builder.WriteString("<li>1 1/2 cups ")
		builder.WriteString(sampleItem)
		builder.WriteString("</li>")
	}
	builder.WriteString("</ul><div class=\"instructions\">")
	for i := 0; i < steps; i++ {
		builder.WriteString("<p>")
		builder.WriteString(sampleStep)
		builder.WriteString("</p>")
	}
	builder.WriteString("</div></body></html>")
	return builder.String()
}

const (
	sampleItem = "all-purpose flour, sifted"
	sampleStep = "Stir the batter gently until just combined, then rest it for ten minutes."
)
