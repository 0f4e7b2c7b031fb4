package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
)

// RecommendationHandlers serves the endpoints backed by the external planner
type RecommendationHandlers struct {
	service inbound.RecommendationService
	logger  *zap.Logger
}

// NewRecommendationHandlers creates recommendation handlers
func NewRecommendationHandlers(service inbound.RecommendationService, logger *zap.Logger) *RecommendationHandlers {
	return &RecommendationHandlers{
		service: service,
		logger:  logger.Named("recommendation-handlers"),
	}
}

// AIMealPlanRequest is the body of POST /ai_meal_plan
type AIMealPlanRequest struct {
	Data AIMealPlanData `json:"data"`
}

// AIMealPlanData identifies the user and the plan length
type AIMealPlanData struct {
	UserLineID string `json:"u_id" binding:"required"`
	Days       *int   `json:"days" binding:"required"`
}

// UpdateMealPlanRequest is the body of POST /update_meal_plan. UserID carries
// the LINE id.
type UpdateMealPlanRequest struct {
	UserID    string          `json:"user_id" binding:"required"`
	Days      *int            `json:"days" binding:"required"`
	MealPlans [][]SlotRequest `json:"mealplans"`
}

// AIMealPlan handles POST /ai_meal_plan
func (h *RecommendationHandlers) AIMealPlan(c *gin.Context) {
	var req AIMealPlanRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	reply, err := h.service.GenerateInitialPlan(c.Request.Context(), inbound.GeneratePlanCommand{
		UserLineID: req.Data.UserLineID,
		Days:       *req.Data.Days,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", reply)
}

// UpdateMealPlan handles POST /update_meal_plan
func (h *RecommendationHandlers) UpdateMealPlan(c *gin.Context) {
	var req UpdateMealPlanRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	reply, err := h.service.ReconcilePlan(c.Request.Context(), inbound.ReconcilePlanCommand{
		UserLineID: req.UserID,
		Days:       *req.Days,
		MealPlans:  toGrid(req.MealPlans),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", reply)
}
