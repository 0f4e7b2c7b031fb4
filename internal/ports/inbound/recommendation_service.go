package inbound

import (
	"context"
	"encoding/json"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
)

// RecommendationService bridges the external planner. Both operations return
// the planner's JSON reply, reshaped only where documented.
type RecommendationService interface {
	GenerateInitialPlan(ctx context.Context, cmd GeneratePlanCommand) (json.RawMessage, error)
	ReconcilePlan(ctx context.Context, cmd ReconcilePlanCommand) (json.RawMessage, error)
}

// GeneratePlanCommand asks the planner for a fresh plan of Days days
type GeneratePlanCommand struct {
	UserLineID string
	Days       int
}

// ReconcilePlanCommand submits a client-edited day-grid back to the planner
type ReconcilePlanCommand struct {
	UserLineID string
	Days       int
	MealPlans  [][]mealplan.Selection
}
