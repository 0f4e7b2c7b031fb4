// Package testutil provides mock implementations and fixtures for testing
package testutil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
	"github.com/kidneyplan/mealplanner/internal/domain/nutrition"
	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/domain/user"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

var (
	_ outbound.UserRepository       = (*MockUserRepository)(nil)
	_ outbound.MealPlanRepository   = (*MockMealPlanRepository)(nil)
	_ outbound.RecipeRepository     = (*MockRecipeRepository)(nil)
	_ outbound.NutritionRepository  = (*MockNutritionRepository)(nil)
	_ outbound.IngredientRepository = (*MockIngredientRepository)(nil)
	_ outbound.CacheRepository      = (*MockCacheRepository)(nil)
	_ outbound.RecommendationClient = (*MockRecommendationClient)(nil)
	_ outbound.Transactor           = PassThroughTransactor{}
)

// MockUserRepository provides a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

// FindByLineID finds a user by LINE id
func (m *MockUserRepository) FindByLineID(ctx context.Context, lineID string) (*user.User, error) {
	args := m.Called(ctx, lineID)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMealPlanRepository provides a mock implementation of MealPlanRepository
type MockMealPlanRepository struct {
	mock.Mock
}

func (m *MockMealPlanRepository) LatestDate(ctx context.Context, userID int) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if t, ok := args.Get(0).(*time.Time); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMealPlanRepository) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockMealPlanRepository) FindByUserAndDate(ctx context.Context, userID int, date time.Time) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, userID, date)
	if p, ok := args.Get(0).(*mealplan.MealPlan); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMealPlanRepository) DeleteEntries(ctx context.Context, planID int) (int64, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMealPlanRepository) InsertEntries(ctx context.Context, entries []mealplan.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockMealPlanRepository) SetChecked(ctx context.Context, entryID int, checked bool) (int64, error) {
	args := m.Called(ctx, entryID, checked)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMealPlanRepository) ListWithRecipes(ctx context.Context, userID int, date *time.Time) ([]mealplan.MealPlan, error) {
	args := m.Called(ctx, userID, date)
	plans, _ := args.Get(0).([]mealplan.MealPlan)
	return plans, args.Error(1)
}

// MockRecipeRepository provides a mock implementation of RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Eligible(ctx context.Context, userID int) ([]recipe.Recipe, error) {
	args := m.Called(ctx, userID)
	recipes, _ := args.Get(0).([]recipe.Recipe)
	return recipes, args.Error(1)
}

func (m *MockRecipeRepository) NutrientAmounts(ctx context.Context, recipeIDs []int) ([]nutrition.Amount, error) {
	args := m.Called(ctx, recipeIDs)
	amounts, _ := args.Get(0).([]nutrition.Amount)
	return amounts, args.Error(1)
}

func (m *MockRecipeRepository) Update(ctx context.Context, id int, patch recipe.Patch) (int64, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id int) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockNutritionRepository provides a mock implementation of NutritionRepository
type MockNutritionRepository struct {
	mock.Mock
}

func (m *MockNutritionRepository) LimitsForUser(ctx context.Context, userID int) ([]nutrition.Limit, error) {
	args := m.Called(ctx, userID)
	limits, _ := args.Get(0).([]nutrition.Limit)
	return limits, args.Error(1)
}

// MockIngredientRepository provides a mock implementation of IngredientRepository
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) List(ctx context.Context) ([]recipe.Ingredient, error) {
	args := m.Called(ctx)
	ingredients, _ := args.Get(0).([]recipe.Ingredient)
	return ingredients, args.Error(1)
}

func (m *MockIngredientRepository) Create(ctx context.Context, ingredient *recipe.Ingredient) error {
	args := m.Called(ctx, ingredient)
	return args.Error(0)
}

// MockCacheRepository is a mock implementation of the cache repository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) DeletePrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockRecommendationClient is a mock implementation of the planner client
type MockRecommendationClient struct {
	mock.Mock
}

func (m *MockRecommendationClient) RecommendPlan(ctx context.Context, req outbound.PlanRequest) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *MockRecommendationClient) UpdatePlan(ctx context.Context, req outbound.UpdatePlanRequest) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

// PassThroughTransactor runs fn directly with the caller's context
type PassThroughTransactor struct{}

func (PassThroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
