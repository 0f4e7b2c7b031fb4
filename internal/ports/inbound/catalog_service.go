package inbound

import (
	"context"

	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
)

// CatalogService maintains the recipe and ingredient catalog
type CatalogService interface {
	ListIngredients(ctx context.Context) ([]IngredientDTO, error)
	CreateIngredient(ctx context.Context, cmd CreateIngredientCommand) (*IngredientDTO, error)
	UpdateRecipe(ctx context.Context, recipeID int, patch recipe.Patch) error
	DeleteRecipe(ctx context.Context, recipeID int) error
}

// CreateIngredientCommand contains data for a new ingredient
type CreateIngredientCommand struct {
	Name    string
	NameEng *string
}

// IngredientDTO is the wire shape of an ingredient
type IngredientDTO struct {
	IngredientID      int     `json:"ingredient_id"`
	IngredientName    string  `json:"ingredient_name"`
	IngredientNameEng *string `json:"ingredient_name_eng"`
}
