// Package catalog provides the application layer for the recipe and
// ingredient catalog
package catalog

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/kidneyplan/mealplanner/internal/application/nutrition"
	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/kidneyplan/mealplanner/pkg/errors"
	"go.uber.org/zap"
)

const ingredientsCacheKey = "ingredients:all"

// CatalogService implements the catalog use cases
type CatalogService struct {
	ingredients    outbound.IngredientRepository
	recipes        outbound.RecipeRepository
	cache          outbound.CacheRepository
	aggregator     *nutrition.Aggregator
	ingredientsTTL time.Duration
	logger         *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	ingredients outbound.IngredientRepository,
	recipes outbound.RecipeRepository,
	cache outbound.CacheRepository,
	aggregator *nutrition.Aggregator,
	ingredientsTTL time.Duration,
	logger *zap.Logger,
) inbound.CatalogService {
	return &CatalogService{
		ingredients:    ingredients,
		recipes:        recipes,
		cache:          cache,
		aggregator:     aggregator,
		ingredientsTTL: ingredientsTTL,
		logger:         logger.Named("catalog-service"),
	}
}

// ListIngredients returns every ingredient, served from cache when possible
func (s *CatalogService) ListIngredients(ctx context.Context) ([]inbound.IngredientDTO, error) {
	if cached, ok := s.cachedIngredients(ctx); ok {
		return cached, nil
	}

	ingredients, err := s.ingredients.List(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("Failed to fetch ingredients", "list ingredients", err)
	}

	dtos := make([]inbound.IngredientDTO, 0, len(ingredients))
	for _, i := range ingredients {
		dtos = append(dtos, toIngredientDTO(i))
	}

	if s.cache != nil && s.ingredientsTTL > 0 {
		if data, err := json.Marshal(dtos); err == nil {
			if err := s.cache.Set(ctx, ingredientsCacheKey, data, s.ingredientsTTL); err != nil {
				s.logger.Warn("Failed to cache ingredients", zap.Error(err))
			}
		}
	}

	return dtos, nil
}

// CreateIngredient adds an ingredient to the catalog
func (s *CatalogService) CreateIngredient(ctx context.Context, cmd inbound.CreateIngredientCommand) (*inbound.IngredientDTO, error) {
	ingredient, err := recipe.NewIngredient(cmd.Name, cmd.NameEng)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.ingredients.Create(ctx, ingredient); err != nil {
		s.logger.Error("Failed to insert ingredient", zap.String("name", ingredient.Name), zap.Error(err))
		return nil, errors.NewDatabaseError("Failed to create ingredient", "insert ingredient", err)
	}

	s.forget(ctx, ingredientsCacheKey)

	s.logger.Info("Ingredient created", zap.Int("ingredient_id", ingredient.ID))

	dto := toIngredientDTO(*ingredient)
	return &dto, nil
}

// UpdateRecipe applies the non-nil fields of patch to a recipe
func (s *CatalogService) UpdateRecipe(ctx context.Context, recipeID int, patch recipe.Patch) error {
	if err := patch.Validate(); err != nil {
		return errors.NewBadRequestError(err.Error())
	}

	affected, err := s.recipes.Update(ctx, recipeID, patch)
	if err != nil {
		return errors.NewDatabaseError("Failed to execute the update query", "update recipe", err)
	}
	if affected == 0 {
		return errors.NewRecipeNotFoundError(recipeID)
	}

	s.aggregator.Invalidate(ctx)
	s.logger.Info("Recipe updated", zap.Int("recipe_id", recipeID))
	return nil
}

// DeleteRecipe removes a recipe
func (s *CatalogService) DeleteRecipe(ctx context.Context, recipeID int) error {
	affected, err := s.recipes.Delete(ctx, recipeID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrForeignKeyViolation) {
			return errors.NewAppError(errors.CodeConflict, "Recipe is still used by a meal plan", "")
		}
		return errors.NewDatabaseError("Failed to execute the delete query", "delete recipe", err)
	}
	if affected == 0 {
		return errors.NewRecipeNotFoundError(recipeID)
	}

	s.aggregator.Invalidate(ctx)
	s.logger.Info("Recipe deleted", zap.Int("recipe_id", recipeID))
	return nil
}

func (s *CatalogService) cachedIngredients(ctx context.Context) ([]inbound.IngredientDTO, bool) {
	if s.cache == nil || s.ingredientsTTL <= 0 {
		return nil, false
	}

	data, err := s.cache.Get(ctx, ingredientsCacheKey)
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Failed to read ingredients from cache", zap.Error(err))
		}
		return nil, false
	}

	var dtos []inbound.IngredientDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, false
	}
	return dtos, true
}

func (s *CatalogService) forget(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to invalidate cache key", zap.String("key", key), zap.Error(err))
	}
}

func toIngredientDTO(i recipe.Ingredient) inbound.IngredientDTO {
	return inbound.IngredientDTO{
		IngredientID:      i.ID,
		IngredientName:    i.Name,
		IngredientNameEng: i.NameEng,
	}
}
