package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t testing.TB, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func page(head, body string) string {
	return "<!doctype html><html><head>" + head + "</head><body>" + body + "</body></html>"
}

func ld(json string) string {
	return `<script type="application/ld+json">` + json + `</script>`
}

func TestStructuredData_SkipsMalformedBlock(t *testing.T) {
	src := page(ld(`{"@type": "Recipe", "name": broken`)+ld(`{"@type":"Recipe","name":"Pancakes","recipeIngredient":["2 cups flour"]}`), "")
	r, ok := StructuredData{}.Extract(mustDoc(t, src))
	if !ok {
		t.Fatalf("expected recipe from second block")
	}
	if r.Name != "Pancakes" {
		t.Fatalf("expected name Pancakes, got %q", r.Name)
	}
}

func TestStructuredData_ArrayWithNonRecipeFirst(t *testing.T) {
	src := page(ld(`[{"@type":"WebSite","name":"Blog"},{"@type":"Recipe","name":"Soup","recipeInstructions":"Boil."}]`), "")
	r, ok := StructuredData{}.Extract(mustDoc(t, src))
	if !ok || r.Name != "Soup" {
		t.Fatalf("expected Soup, got %+v ok=%v", r, ok)
	}
	if len(r.Directions) != 1 || r.Directions[0] != "Boil." {
		t.Fatalf("expected single direction, got %v", r.Directions)
	}
}

func TestStructuredData_FirstRecipeWins(t *testing.T) {
	src := page(ld(`{"@type":"Recipe","name":"First"}`)+ld(`{"@type":"Recipe","name":"Second"}`), "")
	r, ok := StructuredData{}.Extract(mustDoc(t, src))
	if !ok || r.Name != "First" {
		t.Fatalf("expected First, got %q", r.Name)
	}
}

func TestStructuredData_NoRecipe(t *testing.T) {
	cases := []string{
		page("", "<h1>No data</h1>"),
		page(ld(`{"@type":"Article","name":"News"}`), ""),
		page(ld(`not json`), ""),
		page(ld(``), ""),
		page(ld(`{"@type":"Recipe"} trailing`), ""),
		page(ld(`"just a string"`), ""),
		page(`<script type="application/json">{"@type":"Recipe","name":"x"}</script>`, ""),
	}
	for i, src := range cases {
		if r, ok := (StructuredData{}).Extract(mustDoc(t, src)); ok {
			t.Fatalf("case %d: expected no recipe, got %+v", i, r)
		}
	}
}

func TestStructuredData_Defaults(t *testing.T) {
	r, ok := StructuredData{}.Extract(mustDoc(t, page(ld(`{"@type":"Recipe"}`), "")))
	if !ok {
		t.Fatalf("expected recipe")
	}
	if r.Name != "" || r.Description != "" {
		t.Fatalf("expected empty name/description, got %+v", r)
	}
	if r.Ingredients == nil || len(r.Ingredients) != 0 || r.Directions == nil || len(r.Directions) != 0 {
		t.Fatalf("expected empty non-nil lists, got %+v", r)
	}
	if len(r.ParsedIngredients) != 0 {
		t.Fatalf("expected no parsed ingredients")
	}
}

func TestStructuredData_IngredientShapes(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{`"1 cup rice"`, []string{"1 cup rice"}},
		{`["1 cup rice", 2, "salt"]`, []string{"1 cup rice", "2", "salt"}},
		{`["", "salt"]`, []string{"", "salt"}},
		{`null`, []string{}},
		{`"2 cups flour &amp; bran"`, []string{"2 cups flour & bran"}},
	}
	for _, tc := range cases {
		src := page(ld(`{"@type":"Recipe","name":"x","recipeIngredient":`+tc.raw+`}`), "")
		r, ok := StructuredData{}.Extract(mustDoc(t, src))
		if !ok {
			t.Fatalf("%s: expected recipe", tc.raw)
		}
		if strings.Join(r.Ingredients, "|") != strings.Join(tc.want, "|") || len(r.Ingredients) != len(tc.want) {
			t.Fatalf("%s: got %q want %q", tc.raw, r.Ingredients, tc.want)
		}
		if len(r.ParsedIngredients) != len(r.Ingredients) {
			t.Fatalf("%s: parsed length %d != %d", tc.raw, len(r.ParsedIngredients), len(r.Ingredients))
		}
	}
}

func TestStructuredData_InstructionShapes(t *testing.T) {
	raw := `[
		"Preheat oven.",
		{"@type":"HowToStep","text":"Mix  the\n dry ingredients."},
		{"@type":"HowToStep","name":"no text"},
		"",
		{"@type":"HowToSection","name":"Bake","itemListElement":[
			{"@type":"HowToStep","text":"Pour into pan."},
			{"@type":"HowToStep","text":"Bake 20 minutes."}
		]},
		42
	]`
	src := page(ld(`{"@type":"Recipe","name":"Cake","recipeInstructions":`+raw+`}`), "")
	r, ok := StructuredData{}.Extract(mustDoc(t, src))
	if !ok {
		t.Fatalf("expected recipe")
	}
	want := []string{"Preheat oven.", "Mix the dry ingredients.", "Pour into pan.", "Bake 20 minutes."}
	if strings.Join(r.Directions, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q want %q", r.Directions, want)
	}
}

func TestStructuredData_GraphAndTypeList(t *testing.T) {
	src := page(ld(`{"@context":"https://schema.org","@graph":[
		{"@type":"WebPage","name":"Page"},
		{"@type":["Recipe","NewsArticle"],"name":"Chili","recipeIngredient":["1 lb beef","2 cans beans"]}
	]}`), "")
	r, ok := StructuredData{}.Extract(mustDoc(t, src))
	if !ok || r.Name != "Chili" {
		t.Fatalf("expected Chili from @graph, got %+v ok=%v", r, ok)
	}
	if got := r.ParsedIngredients[1]; got.Unit == nil || *got.Unit != "cans" || got.Item != "beans" || got.Order != 1 {
		t.Fatalf("unexpected parsed ingredient: %+v", got)
	}
}

func TestStructuredData_ParsedIngredientFallback(t *testing.T) {
	src := page(ld(`{"@type":"Recipe","name":"x","recipeIngredient":["3 cups","salt"]}`), "")
	r, _ := StructuredData{}.Extract(mustDoc(t, src))
	first := r.ParsedIngredients[0]
	if first.Quantity != nil || first.Unit != nil || first.Item != "3 cups" || first.Original != "3 cups" || first.Order != 0 {
		t.Fatalf("expected degraded parse, got %+v", first)
	}
}
