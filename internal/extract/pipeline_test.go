package extract

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestPipeline_StructuredDataShortCircuits(t *testing.T) {
	src := page(
		ld(`{"@type":"Recipe","name":"From JSON-LD","recipeIngredient":["1 egg"]}`),
		`<h1 class="recipe-title">From Markup</h1><ul class="ingredients"><li>2 eggs</li><li>milk</li></ul>`,
	)
	r, strategy, ok := NewPipeline().Extract(src)
	if !ok {
		t.Fatalf("expected recipe")
	}
	if strategy != "structured-data" || r.Name != "From JSON-LD" || len(r.Ingredients) != 1 {
		t.Fatalf("expected structured data result, got %s %+v", strategy, r)
	}
	// Sanity check that the heuristic alone would have succeeded.
	if h, ok := (Heuristic{}).Extract(mustDoc(t, src)); !ok || h.Name != "From Markup" {
		t.Fatalf("heuristic should succeed on this page, got %+v", h)
	}
}

func TestPipeline_FallsBackToHeuristic(t *testing.T) {
	src := page(ld(`{"@type":"Recipe", oops}`), `<h1>Stew</h1><ul class="recipe-ingredients"><li>1 lb beef</li></ul>`)
	r, strategy, ok := NewPipeline().Extract(src)
	if !ok || strategy != "heuristic" || r.Name != "Stew" {
		t.Fatalf("expected heuristic Stew, got %s %+v ok=%v", strategy, r, ok)
	}
}

func TestPipeline_NothingFound(t *testing.T) {
	for _, src := range []string{"", "   ", "not html at all", page("", "<p>About us</p>"), "<html><body><h1>Title only"} {
		if r, ok := ExtractRecipe(src); ok {
			t.Fatalf("expected no recipe for %q, got %+v", src, r)
		}
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	a, _ := ExtractRecipe(blogPage)
	b, _ := ExtractRecipe(blogPage)
	if a.Name != b.Name || len(a.Ingredients) != len(b.Ingredients) {
		t.Fatalf("results differ: %+v vs %+v", a, b)
	}
	for i := range a.ParsedIngredients {
		if a.ParsedIngredients[i].Item != b.ParsedIngredients[i].Item {
			t.Fatalf("parsed ingredient %d differs", i)
		}
	}
}

func TestPipeline_IngredientLengthInvariant(t *testing.T) {
	pages := []string{
		blogPage,
		page(ld(`{"@type":"Recipe","recipeIngredient":["", "  ", "2", "1 cup", "of", "salt"]}`), ""),
		page(ld(`{"@type":"Recipe","recipeIngredient":"single"}`), ""),
		page("", `<h1>x</h1><ul class="ingredients"><li>1</li><li>cups</li><li>3 fl oz</li></ul>`),
	}
	for i, src := range pages {
		r, ok := ExtractRecipe(src)
		if !ok {
			t.Fatalf("page %d: expected recipe", i)
		}
		if len(r.Ingredients) != len(r.ParsedIngredients) {
			t.Fatalf("page %d: %d ingredients but %d parsed", i, len(r.Ingredients), len(r.ParsedIngredients))
		}
		for j, p := range r.ParsedIngredients {
			if p.Order != j || p.Original != r.Ingredients[j] {
				t.Fatalf("page %d: parsed ingredient %d out of place: %+v", i, j, p)
			}
		}
	}
}

type stubStrategy struct {
	name  string
	found bool
	calls *int
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Extract(*goquery.Document) (Recipe, bool) {
	*s.calls++
	if !s.found {
		return Recipe{}, false
	}
	return newRecipe(s.name, "", nil, nil), true
}

func TestPipeline_FirstSuccessfulStrategyWins(t *testing.T) {
	var a, b, c int
	p := &Pipeline{Strategies: []Strategy{
		stubStrategy{name: "a", calls: &a},
		stubStrategy{name: "b", found: true, calls: &b},
		stubStrategy{name: "c", found: true, calls: &c},
	}}
	r, ok := p.ExtractRecipe("<p>x</p>")
	if !ok || r.Name != "b" {
		t.Fatalf("expected b, got %+v", r)
	}
	if a != 1 || b != 1 || c != 0 {
		t.Fatalf("unexpected call counts a=%d b=%d c=%d", a, b, c)
	}
}
