// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"time"

	"gorm.io/datatypes"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/domain/user"
)

// ModelToUser converts a GORM model to a domain user
func ModelToUser(m *UserModel) *user.User {
	return &user.User{
		ID:     m.UserID,
		Name:   m.Name,
		LineID: m.LineID,
	}
}

// MealPlanToModel converts a domain plan and its entries to GORM models
func MealPlanToModel(p *mealplan.MealPlan) *MealPlanModel {
	model := &MealPlanModel{
		MealPlanID: p.ID,
		UserID:     p.UserID,
		Name:       p.Name,
		Date:       datatypes.Date(mealplan.DateOf(p.Date)),
		Recipes:    make([]MealPlanRecipeModel, 0, len(p.Recipes)),
	}
	for _, e := range p.Recipes {
		model.Recipes = append(model.Recipes, EntryToModel(e))
	}
	return model
}

// EntryToModel converts a plan entry to a GORM model
func EntryToModel(e mealplan.Entry) MealPlanRecipeModel {
	return MealPlanRecipeModel{
		MealPlanRecipeID: e.ID,
		MealPlanID:       e.MealPlanID,
		RecipeID:         e.RecipeID,
		IsChecked:        e.IsChecked,
		MealTime:         e.MealTime,
	}
}

// ModelToMealPlan converts a GORM model to a domain plan
func ModelToMealPlan(m *MealPlanModel) *mealplan.MealPlan {
	plan := &mealplan.MealPlan{
		ID:     m.MealPlanID,
		UserID: m.UserID,
		Name:   m.Name,
		Date:   mealplan.DateOf(time.Time(m.Date)),
	}
	for _, r := range m.Recipes {
		plan.Recipes = append(plan.Recipes, mealplan.Entry{
			ID:         r.MealPlanRecipeID,
			MealPlanID: r.MealPlanID,
			RecipeID:   r.RecipeID,
			IsChecked:  r.IsChecked,
			MealTime:   r.MealTime,
		})
	}
	return plan
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(m *RecipeModel) recipe.Recipe {
	return recipe.Recipe{
		ID:           m.RecipeID,
		Name:         m.RecipeName,
		Method:       m.RecipeMethod.Strings(),
		Calories:     m.Calories,
		CaloriesUnit: m.CaloriesUnit,
		ImageLinks:   m.RecipeImgLink.Strings(),
		FoodCategory: m.FoodCategory.Strings(),
		DishType:     m.DishType.Strings(),
	}
}

// PatchToColumns converts the set fields of a recipe patch to an update map
func PatchToColumns(p recipe.Patch) map[string]interface{} {
	columns := make(map[string]interface{})
	if p.Name != nil {
		columns["recipe_name"] = *p.Name
	}
	if p.Method != nil {
		columns["recipe_method"] = TextArray(*p.Method)
	}
	if p.Calories != nil {
		columns["calories"] = *p.Calories
	}
	if p.CaloriesUnit != nil {
		columns["calories_unit"] = *p.CaloriesUnit
	}
	if p.ImageLinks != nil {
		columns["recipe_img_link"] = TextArray(*p.ImageLinks)
	}
	if p.FoodCategory != nil {
		columns["food_category"] = TextArray(*p.FoodCategory)
	}
	if p.DishType != nil {
		columns["dish_type"] = TextArray(*p.DishType)
	}
	return columns
}

// ModelToIngredient converts a GORM model to a domain ingredient
func ModelToIngredient(m *IngredientModel) recipe.Ingredient {
	return recipe.Ingredient{
		ID:      m.IngredientID,
		Name:    m.IngredientName,
		NameEng: m.IngredientNameEng,
	}
}
