// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
)

// MealPlanService defines the use cases for building and tracking meal plans
// This is the primary port that HTTP handlers and other driving adapters will use
type MealPlanService interface {
	// Commands - operations that modify state
	CreatePlan(ctx context.Context, cmd CreatePlanCommand) (*CreatePlanResult, error)
	EditPlan(ctx context.Context, cmd EditPlanCommand) error
	ToggleEaten(ctx context.Context, cmd ToggleEatenCommand) error

	// Queries - operations that read state
	GetPlans(ctx context.Context, query GetPlansQuery) (*MealPlanList, error)
}

// CreatePlanCommand lays a day-grid out on consecutive dates. Each inner
// slice is one day; nil recipe ids are empty slots.
type CreatePlanCommand struct {
	UserLineID string
	Days       [][]mealplan.Selection
}

// CreatePlanResult reports what was stored
type CreatePlanResult struct {
	PlanIDs   []int
	StartDate string
}

// EditPlanCommand replaces every entry of the plan on Date
type EditPlanCommand struct {
	UserLineID string
	Date       string
	Recipes    []mealplan.Selection
}

// ToggleEatenCommand sets the eaten flag of one plan entry
type ToggleEatenCommand struct {
	MealPlanRecipeID int
	IsChecked        bool
}

// GetPlansQuery selects a user's plans, optionally for one date only.
// A nil or empty Date returns every plan.
type GetPlansQuery struct {
	UserLineID string
	Date       *string
}

// DTOs for responses

// MealPlanList is the get_meal_plan response body
type MealPlanList struct {
	MealPlans []MealPlanDTO `json:"meal_plans"`
}

// MealPlanDTO is one plan with its entries
type MealPlanDTO struct {
	MealPlanID int             `json:"meal_plan_id"`
	UserID     int             `json:"user_id"`
	Name       string          `json:"name"`
	Date       string          `json:"date"`
	Recipes    []PlanRecipeDTO `json:"recipes"`
}

// PlanRecipeDTO is a plan entry joined with its recipe
type PlanRecipeDTO struct {
	RecipeID         int      `json:"recipe_id"`
	RecipeName       string   `json:"recipe_name"`
	RecipeImgLink    []string `json:"recipe_img_link"`
	IsChecked        *bool    `json:"ischecked"`
	MealPlanRecipeID int      `json:"meal_plan_recipe_id"`
	MealTime         *int     `json:"meal_time"`
	Calories         float64  `json:"calories"`
}
