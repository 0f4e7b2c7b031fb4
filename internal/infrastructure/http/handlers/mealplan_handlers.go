package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
)

// MealPlanHandlers serves the meal plan endpoints
type MealPlanHandlers struct {
	service inbound.MealPlanService
	logger  *zap.Logger
}

// NewMealPlanHandlers creates meal plan handlers
func NewMealPlanHandlers(service inbound.MealPlanService, logger *zap.Logger) *MealPlanHandlers {
	return &MealPlanHandlers{
		service: service,
		logger:  logger.Named("mealplan-handlers"),
	}
}

// SlotRequest is one meal slot as sent by the client
type SlotRequest struct {
	RecipeID *int `json:"recipe_id"`
}

// CreateMealPlanRequest is the body of POST /create_meal_plan
type CreateMealPlanRequest struct {
	UserLineID string          `json:"user_line_id" binding:"required"`
	MealPlans  [][]SlotRequest `json:"mealplans"`
}

// GetMealPlanRequest is the body of POST /get_meal_plan
type GetMealPlanRequest struct {
	UserLineID string  `json:"user_line_id" binding:"required"`
	Date       *string `json:"date"`
}

// UserAlreadyEatRequest is the body of PATCH /user_already_eat
type UserAlreadyEatRequest struct {
	MealPlanRecipeID *int  `json:"meal_plan_recipe_id" binding:"required"`
	IsChecked        *bool `json:"ischecked" binding:"required"`
}

// EditMealPlanRequest is the body of PATCH /edit_meal_plan
type EditMealPlanRequest struct {
	UserLineID string        `json:"user_line_id" binding:"required"`
	Date       string        `json:"date" binding:"required"`
	Recipes    []SlotRequest `json:"recipes"`
}

// CreateMealPlan handles POST /create_meal_plan. Every failure after the
// body is decoded answers 500 with the status envelope.
func (h *MealPlanHandlers) CreateMealPlan(c *gin.Context) {
	var req CreateMealPlanRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.CreatePlan(c.Request.Context(), inbound.CreatePlanCommand{
		UserLineID: req.UserLineID,
		Days:       toGrid(req.MealPlans),
	})
	if err != nil {
		respondStatusError(c, err)
		return
	}

	h.logger.Debug("Meal plans created",
		zap.Ints("plan_ids", result.PlanIDs),
		zap.String("start_date", result.StartDate),
	)
	respondSuccess(c, "Meal plan created successfully")
}

// GetMealPlan handles POST /get_meal_plan
func (h *MealPlanHandlers) GetMealPlan(c *gin.Context) {
	var req GetMealPlanRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	plans, err := h.service.GetPlans(c.Request.Context(), inbound.GetPlansQuery{
		UserLineID: req.UserLineID,
		Date:       req.Date,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// UserAlreadyEat handles PATCH /user_already_eat
func (h *MealPlanHandlers) UserAlreadyEat(c *gin.Context) {
	var req UserAlreadyEatRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	err := h.service.ToggleEaten(c.Request.Context(), inbound.ToggleEatenCommand{
		MealPlanRecipeID: *req.MealPlanRecipeID,
		IsChecked:        *req.IsChecked,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, "Meal plan recipe updated successfully")
}

// EditMealPlan handles PATCH /edit_meal_plan
func (h *MealPlanHandlers) EditMealPlan(c *gin.Context) {
	var req EditMealPlanRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	err := h.service.EditPlan(c.Request.Context(), inbound.EditPlanCommand{
		UserLineID: req.UserLineID,
		Date:       req.Date,
		Recipes:    toSelections(req.Recipes),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, "Meal plan updated successfully")
}

func toSelections(slots []SlotRequest) []mealplan.Selection {
	out := make([]mealplan.Selection, len(slots))
	for i, s := range slots {
		out[i] = mealplan.Selection{RecipeID: s.RecipeID}
	}
	return out
}

func toGrid(days [][]SlotRequest) [][]mealplan.Selection {
	out := make([][]mealplan.Selection, len(days))
	for i, day := range days {
		out[i] = toSelections(day)
	}
	return out
}
