// Package extract turns an HTML page into structured recipe data. Embedded
// JSON-LD is trusted first; conventional recipe-blog markup is the fallback.
// All functions are deterministic and hold no mutable state.
package extract

import "github.com/finikeen/recipes-app/internal/ingredient"

// Recipe is the common shape produced by every extraction strategy.
// ParsedIngredients always has one entry per Ingredients line, in order.
type Recipe struct {
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	Ingredients       []string            `json:"ingredients"`
	Directions        []string            `json:"directions"`
	ParsedIngredients []ingredient.Parsed `json:"parsedIngredients"`
}

func newRecipe(name, description string, ingredients, directions []string) Recipe {
	if ingredients == nil {
		ingredients = []string{}
	}
	if directions == nil {
		directions = []string{}
	}
	return Recipe{
		Name:              name,
		Description:       description,
		Ingredients:       ingredients,
		Directions:        directions,
		ParsedIngredients: ingredient.ParseAll(ingredients),
	}
}
