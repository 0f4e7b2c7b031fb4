package outbound

import (
	"context"
	"encoding/json"
)

// Nutrition is the wire shape of a nutrient profile
type Nutrition struct {
	Calories   float64 `json:"calories"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	Phosphorus float64 `json:"phosphorus"`
	Potassium  float64 `json:"potassium"`
	Protein    float64 `json:"protein"`
	Sodium     float64 `json:"sodium"`
}

// FoodMenu is the wire shape of a recipe with its nutrient totals
type FoodMenu struct {
	Name          string    `json:"name"`
	Nutrition     Nutrition `json:"nutrition"`
	RecipeID      int       `json:"recipe_id"`
	RecipeImgLink []string  `json:"recipe_img_link"`
}

// PlanRequest is posted to the /ai endpoint. UserLineID carries the internal
// user id rendered as a string; the recommender treats it as opaque.
type PlanRequest struct {
	UserLineID           string     `json:"user_line_id"`
	Days                 int        `json:"days"`
	FoodMenus            []FoodMenu `json:"food_menus"`
	NutritionLimitPerDay Nutrition  `json:"nutrition_limit_per_day"`
}

// SubmittedPlan is the client's grid resolved into full food menus
type SubmittedPlan struct {
	UserID    string       `json:"user_id"`
	MealPlans [][]FoodMenu `json:"mealplans"`
}

// UpdatePlanRequest is posted to the /ai_update endpoint
type UpdatePlanRequest struct {
	UserLineID           string        `json:"user_line_id"`
	Days                 int           `json:"days"`
	NutritionLimitPerDay Nutrition     `json:"nutrition_limit_per_day"`
	FoodMenus            []FoodMenu    `json:"food_menus"`
	MealPlan             SubmittedPlan `json:"mealplan"`
}

// RecommendationClient talks to the external meal-plan recommender. Replies
// are returned untouched as raw JSON.
type RecommendationClient interface {
	RecommendPlan(ctx context.Context, req PlanRequest) (json.RawMessage, error)
	UpdatePlan(ctx context.Context, req UpdatePlanRequest) (json.RawMessage, error)
}
