// Package recipe defines the recipe catalog entities: recipes, the food menu
// view of a recipe used by the recommendation service, and ingredients.
package recipe

import (
	"strings"

	"github.com/kidneyplan/mealplanner/internal/domain/nutrition"
)

// Recipe is a row of the recipes table
type Recipe struct {
	ID           int
	Name         string
	Method       []string
	Calories     float64
	CaloriesUnit string
	ImageLinks   []string
	FoodCategory []string
	DishType     []string
}

// FoodMenu is a recipe reshaped with its nutrient totals. It is never stored.
type FoodMenu struct {
	RecipeID   int
	Name       string
	Nutrition  nutrition.Profile
	ImageLinks []string
}

// NewFoodMenu pairs a recipe with its totals
func NewFoodMenu(r Recipe, totals nutrition.Profile) FoodMenu {
	links := r.ImageLinks
	if links == nil {
		links = []string{}
	}
	return FoodMenu{
		RecipeID:   r.ID,
		Name:       r.Name,
		Nutrition:  totals,
		ImageLinks: links,
	}
}

// Patch holds the optional columns of a recipe update. Nil fields are left
// untouched.
type Patch struct {
	Name         *string
	Method       *[]string
	Calories     *float64
	CaloriesUnit *string
	ImageLinks   *[]string
	FoodCategory *[]string
	DishType     *[]string
}

// Empty reports whether the patch would change nothing
func (p Patch) Empty() bool {
	return p.Name == nil && p.Method == nil && p.Calories == nil && p.CaloriesUnit == nil &&
		p.ImageLinks == nil && p.FoodCategory == nil && p.DishType == nil
}

// Validate checks the fields that are present
func (p Patch) Validate() error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrNameRequired
	}
	if p.Calories != nil && *p.Calories < 0 {
		return ErrNegativeCalories
	}
	return nil
}
