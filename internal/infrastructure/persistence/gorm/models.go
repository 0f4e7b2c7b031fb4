// Package gorm provides GORM model definitions for the application
package gorm

import (
	"gorm.io/datatypes"
)

// UserModel represents the GORM model for users. Only the columns meal
// planning reads are mapped.
type UserModel struct {
	UserID int     `gorm:"column:user_id;primaryKey;autoIncrement"`
	Name   string  `gorm:"column:name;type:varchar(100);not null"`
	LineID *string `gorm:"column:user_line_id;index"`
}

func (UserModel) TableName() string { return "users" }

// MealPlanModel represents the GORM model for meal_plans
type MealPlanModel struct {
	MealPlanID int            `gorm:"column:meal_plan_id;primaryKey;autoIncrement"`
	UserID     int            `gorm:"column:user_id;not null;index:idx_meal_plans_user_date,priority:1"`
	Name       string         `gorm:"column:name;type:varchar(100);not null"`
	Date       datatypes.Date `gorm:"column:date;not null;index:idx_meal_plans_user_date,priority:2"`

	Recipes []MealPlanRecipeModel `gorm:"foreignKey:MealPlanID;references:MealPlanID"`
}

func (MealPlanModel) TableName() string { return "meal_plans" }

// MealPlanRecipeModel represents the GORM model for meal_plan_recipes
type MealPlanRecipeModel struct {
	MealPlanRecipeID int   `gorm:"column:meal_plan_recipe_id;primaryKey;autoIncrement"`
	MealPlanID       int   `gorm:"column:meal_plan_id;not null;index"`
	RecipeID         int   `gorm:"column:recipe_id;not null;index"`
	IsChecked        *bool `gorm:"column:ischecked"`
	MealTime         *int  `gorm:"column:meal_time"`
}

func (MealPlanRecipeModel) TableName() string { return "meal_plan_recipes" }

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	RecipeID      int       `gorm:"column:recipe_id;primaryKey;autoIncrement"`
	RecipeName    string    `gorm:"column:recipe_name;type:varchar(150);not null"`
	RecipeMethod  TextArray `gorm:"column:recipe_method"`
	Calories      float64   `gorm:"column:calories;not null;default:0"`
	CaloriesUnit  string    `gorm:"column:calories_unit;type:varchar(50);not null;default:kcal"`
	RecipeImgLink TextArray `gorm:"column:recipe_img_link"`
	FoodCategory  TextArray `gorm:"column:food_category"`
	DishType      TextArray `gorm:"column:dish_type"`

	// Declared here so the foreign key lands on meal_plan_recipes.recipe_id
	MealPlanEntries []MealPlanRecipeModel `gorm:"foreignKey:RecipeID;references:RecipeID;constraint:OnDelete:RESTRICT"`
}

func (RecipeModel) TableName() string { return "recipes" }

// NutrientModel represents the GORM model for nutrients
type NutrientModel struct {
	NutrientID int    `gorm:"column:nutrient_id;primaryKey"`
	Name       string `gorm:"column:name;type:varchar(100);not null"`
	Unit       string `gorm:"column:unit;type:varchar(50);not null"`
}

func (NutrientModel) TableName() string { return "nutrients" }

// RecipeNutrientModel represents the GORM model for recipes_nutrients
type RecipeNutrientModel struct {
	RecipeNutrientID int     `gorm:"column:recipe_nutrient_id;primaryKey;autoIncrement"`
	RecipeID         int     `gorm:"column:recipe_id;not null;index"`
	NutrientID       int     `gorm:"column:nutrient_id;not null"`
	Quantity         float64 `gorm:"column:quantity;not null"`
}

func (RecipeNutrientModel) TableName() string { return "recipes_nutrients" }

// NutrientLimitModel represents the GORM model for users_nutrients_limit_per_day
type NutrientLimitModel struct {
	ID            int      `gorm:"column:users_nutrients_limit_per_day_id;primaryKey;autoIncrement"`
	UserID        *int     `gorm:"column:user_id;index"`
	NutrientID    *int     `gorm:"column:nutrient_id"`
	NutrientLimit *float64 `gorm:"column:nutrient_limit"`
}

func (NutrientLimitModel) TableName() string { return "users_nutrients_limit_per_day" }

// IngredientAllergyModel represents the GORM model for ingredient_allergies
type IngredientAllergyModel struct {
	IngredientAllergyID   int    `gorm:"column:ingredient_allergy_id;primaryKey;autoIncrement"`
	IngredientAllergyName string `gorm:"column:ingredient_allergy_name;not null"`
}

func (IngredientAllergyModel) TableName() string { return "ingredient_allergies" }

// RecipeAllergyModel links a recipe to an allergy it contains
type RecipeAllergyModel struct {
	RecipeID            int `gorm:"column:recipe_id;primaryKey"`
	IngredientAllergyID int `gorm:"column:ingredient_allergy_id;primaryKey"`
}

func (RecipeAllergyModel) TableName() string { return "recipes_ingredient_allergies" }

// UserAllergyModel links a user to an allergy they declared
type UserAllergyModel struct {
	ID                  int `gorm:"column:users_ingredient_allergies_id;primaryKey;autoIncrement"`
	UserID              int `gorm:"column:user_id;not null;index"`
	IngredientAllergyID int `gorm:"column:ingredient_allergy_id;not null"`
}

func (UserAllergyModel) TableName() string { return "users_ingredient_allergies" }

// IngredientModel represents the GORM model for ingredients
type IngredientModel struct {
	IngredientID      int     `gorm:"column:ingredient_id;primaryKey;autoIncrement"`
	IngredientName    string  `gorm:"column:ingredient_name;type:varchar(150);not null"`
	IngredientNameEng *string `gorm:"column:ingredient_name_eng"`
}

func (IngredientModel) TableName() string { return "ingredients" }

// AllModels lists every model in dependency order, for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&NutrientModel{},
		&RecipeModel{},
		&IngredientModel{},
		&IngredientAllergyModel{},
		&MealPlanModel{},
		&MealPlanRecipeModel{},
		&RecipeNutrientModel{},
		&NutrientLimitModel{},
		&RecipeAllergyModel{},
		&UserAllergyModel{},
	}
}
