// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/kidneyplan/mealplanner/internal/domain/nutrition"
	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Eligible returns every recipe that shares no allergy with the user
func (r *RecipeRepository) Eligible(ctx context.Context, userID int) ([]recipe.Recipe, error) {
	allergic := conn(ctx, r.db).
		Table("recipes_ingredient_allergies AS ria").
		Select("1").
		Joins("JOIN users_ingredient_allergies AS uia ON uia.ingredient_allergy_id = ria.ingredient_allergy_id").
		Where("uia.user_id = ? AND ria.recipe_id = recipes.recipe_id", userID)

	var models []RecipeModel
	err := conn(ctx, r.db).
		Where("NOT EXISTS (?)", allergic).
		Order("recipe_id").
		Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}

	recipes := make([]recipe.Recipe, 0, len(models))
	for i := range models {
		recipes = append(recipes, ModelToRecipe(&models[i]))
	}
	return recipes, nil
}

// NutrientAmounts sums quantities per recipe and nutrient
func (r *RecipeRepository) NutrientAmounts(ctx context.Context, recipeIDs []int) ([]nutrition.Amount, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}

	var rows []struct {
		RecipeID   int
		NutrientID int
		Quantity   float64
	}
	err := conn(ctx, r.db).
		Model(&RecipeNutrientModel{}).
		Select("recipe_id, nutrient_id, SUM(quantity) AS quantity").
		Where("recipe_id IN ?", recipeIDs).
		Group("recipe_id, nutrient_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	amounts := make([]nutrition.Amount, 0, len(rows))
	for _, row := range rows {
		amounts = append(amounts, nutrition.Amount{
			RecipeID:   row.RecipeID,
			NutrientID: row.NutrientID,
			Quantity:   row.Quantity,
		})
	}
	return amounts, nil
}

// Update applies a patch and reports how many rows matched
func (r *RecipeRepository) Update(ctx context.Context, id int, patch recipe.Patch) (int64, error) {
	columns := PatchToColumns(patch)
	if len(columns) == 0 {
		return 0, recipe.ErrEmptyPatch
	}

	result := conn(ctx, r.db).
		Model(&RecipeModel{}).
		Where("recipe_id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes a recipe and its nutrient and allergy links
func (r *RecipeRepository) Delete(ctx context.Context, id int) (int64, error) {
	var affected int64

	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&RecipeNutrientModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&RecipeAllergyModel{}).Error; err != nil {
			return err
		}

		result := tx.Where("recipe_id = ?", id).Delete(&RecipeModel{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, translateError(err)
	}
	return affected, nil
}
