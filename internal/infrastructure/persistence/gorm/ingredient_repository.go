package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
)

// IngredientRepository implements the ingredient repository using GORM
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) outbound.IngredientRepository {
	return &IngredientRepository{db: db}
}

// List returns every ingredient ordered by id
func (r *IngredientRepository) List(ctx context.Context) ([]recipe.Ingredient, error) {
	var models []IngredientModel
	if err := conn(ctx, r.db).Order("ingredient_id").Find(&models).Error; err != nil {
		return nil, translateError(err)
	}

	ingredients := make([]recipe.Ingredient, 0, len(models))
	for i := range models {
		ingredients = append(ingredients, ModelToIngredient(&models[i]))
	}
	return ingredients, nil
}

// Create inserts an ingredient and fills in its id
func (r *IngredientRepository) Create(ctx context.Context, ingredient *recipe.Ingredient) error {
	model := IngredientModel{
		IngredientName:    ingredient.Name,
		IngredientNameEng: ingredient.NameEng,
	}
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		return translateError(err)
	}
	ingredient.ID = model.IngredientID
	return nil
}
