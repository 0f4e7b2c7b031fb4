package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
	"github.com/kidneyplan/mealplanner/pkg/errors"
)

// CatalogHandlers serves the recipe and ingredient maintenance endpoints
type CatalogHandlers struct {
	service inbound.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandlers creates catalog handlers
func NewCatalogHandlers(service inbound.CatalogService, logger *zap.Logger) *CatalogHandlers {
	return &CatalogHandlers{
		service: service,
		logger:  logger.Named("catalog-handlers"),
	}
}

// CreateIngredientRequest is the body of POST /create_ingredient
type CreateIngredientRequest struct {
	IngredientName    string  `json:"ingredient_name" binding:"required"`
	IngredientNameEng *string `json:"ingredient_name_eng"`
}

// UpdateRecipeRequest is the body of PATCH /update_recipe/:r_id. Absent
// fields are left untouched; null array elements are dropped.
type UpdateRecipeRequest struct {
	RecipeName    *string    `json:"recipe_name"`
	RecipeMethod  *[]*string `json:"recipe_method"`
	Calories      *float64   `json:"calories"`
	CaloriesUnit  *string    `json:"calories_unit"`
	RecipeImgLink *[]*string `json:"recipe_img_link"`
	FoodCategory  *[]*string `json:"food_category"`
	DishType      *[]*string `json:"dish_type"`
}

// Patch converts the request into a recipe patch
func (r UpdateRecipeRequest) Patch() recipe.Patch {
	return recipe.Patch{
		Name:         r.RecipeName,
		Method:       compact(r.RecipeMethod),
		Calories:     r.Calories,
		CaloriesUnit: r.CaloriesUnit,
		ImageLinks:   compact(r.RecipeImgLink),
		FoodCategory: compact(r.FoodCategory),
		DishType:     compact(r.DishType),
	}
}

func compact(in *[]*string) *[]string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(*in))
	for _, s := range *in {
		if s != nil {
			out = append(out, *s)
		}
	}
	return &out
}

// ListIngredients handles GET /ingredients
func (h *CatalogHandlers) ListIngredients(c *gin.Context) {
	ingredients, err := h.service.ListIngredients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// CreateIngredient handles POST /create_ingredient
func (h *CatalogHandlers) CreateIngredient(c *gin.Context) {
	var req CreateIngredientRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	_, err := h.service.CreateIngredient(c.Request.Context(), inbound.CreateIngredientCommand{
		Name:    req.IngredientName,
		NameEng: req.IngredientNameEng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, "Ingredient created successfully")
}

// UpdateRecipe handles PATCH /update_recipe/:r_id
func (h *CatalogHandlers) UpdateRecipe(c *gin.Context) {
	id, ok := recipeIDParam(c)
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.UpdateRecipe(c.Request.Context(), id, req.Patch()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, "Recipe updated successfully")
}

// DeleteRecipe handles DELETE /delete_recipe/:r_id
func (h *CatalogHandlers) DeleteRecipe(c *gin.Context) {
	id, ok := recipeIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRecipe(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, "Recipe deleted successfully")
}

func recipeIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("r_id"))
	if err != nil {
		respondError(c, errors.NewBadRequestError("Invalid recipe id"))
		return 0, false
	}
	return id, true
}
