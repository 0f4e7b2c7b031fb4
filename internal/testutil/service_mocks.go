package testutil

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
)

var (
	_ inbound.MealPlanService       = (*MockMealPlanService)(nil)
	_ inbound.RecommendationService = (*MockRecommendationService)(nil)
	_ inbound.CatalogService        = (*MockCatalogService)(nil)
)

// MockMealPlanService provides a mock implementation of MealPlanService
type MockMealPlanService struct {
	mock.Mock
}

func (m *MockMealPlanService) CreatePlan(ctx context.Context, cmd inbound.CreatePlanCommand) (*inbound.CreatePlanResult, error) {
	args := m.Called(ctx, cmd)
	if r, ok := args.Get(0).(*inbound.CreatePlanResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMealPlanService) EditPlan(ctx context.Context, cmd inbound.EditPlanCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

func (m *MockMealPlanService) ToggleEaten(ctx context.Context, cmd inbound.ToggleEatenCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

func (m *MockMealPlanService) GetPlans(ctx context.Context, query inbound.GetPlansQuery) (*inbound.MealPlanList, error) {
	args := m.Called(ctx, query)
	if l, ok := args.Get(0).(*inbound.MealPlanList); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRecommendationService provides a mock implementation of RecommendationService
type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) GenerateInitialPlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (json.RawMessage, error) {
	args := m.Called(ctx, cmd)
	if raw, ok := args.Get(0).(json.RawMessage); ok {
		return raw, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecommendationService) ReconcilePlan(ctx context.Context, cmd inbound.ReconcilePlanCommand) (json.RawMessage, error) {
	args := m.Called(ctx, cmd)
	if raw, ok := args.Get(0).(json.RawMessage); ok {
		return raw, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCatalogService provides a mock implementation of CatalogService
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListIngredients(ctx context.Context) ([]inbound.IngredientDTO, error) {
	args := m.Called(ctx)
	if l, ok := args.Get(0).([]inbound.IngredientDTO); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) CreateIngredient(ctx context.Context, cmd inbound.CreateIngredientCommand) (*inbound.IngredientDTO, error) {
	args := m.Called(ctx, cmd)
	if dto, ok := args.Get(0).(*inbound.IngredientDTO); ok {
		return dto, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCatalogService) UpdateRecipe(ctx context.Context, recipeID int, patch recipe.Patch) error {
	return m.Called(ctx, recipeID, patch).Error(0)
}

func (m *MockCatalogService) DeleteRecipe(ctx context.Context, recipeID int) error {
	return m.Called(ctx, recipeID).Error(0)
}
