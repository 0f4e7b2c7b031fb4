package nutrition

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/kidneyplan/mealplanner/internal/domain/nutrition"
	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/kidneyplan/mealplanner/internal/testutil"
	"github.com/kidneyplan/mealplanner/pkg/errors"
)

type AggregatorTestSuite struct {
	suite.Suite
	recipes *testutil.MockRecipeRepository
	limits  *testutil.MockNutritionRepository
	cache   *testutil.MockCacheRepository
	ctx     context.Context
}

func (s *AggregatorTestSuite) SetupTest() {
	s.recipes = new(testutil.MockRecipeRepository)
	s.limits = new(testutil.MockNutritionRepository)
	s.cache = new(testutil.MockCacheRepository)
	s.ctx = context.Background()
}

func (s *AggregatorTestSuite) newAggregator(ttl time.Duration) *Aggregator {
	return NewAggregator(s.recipes, s.limits, s.cache, nil, ttl, zaptest.NewLogger(s.T()))
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func (s *AggregatorTestSuite) TestLimits() {
	s.Run("Rows_ShouldMapOntoProfile", func() {
		s.SetupTest()
		s.limits.On("LimitsForUser", s.ctx, 7).Return([]nutrition.Limit{
			{NutrientID: intPtr(1), Amount: floatPtr(1800)},
			{NutrientID: intPtr(4), Amount: floatPtr(800)},
			{NutrientID: intPtr(7), Amount: nil},
			{NutrientID: intPtr(42), Amount: floatPtr(5)},
			{NutrientID: nil, Amount: floatPtr(9)},
		}, nil)

		profile, err := s.newAggregator(0).Limits(s.ctx, 7)

		require.NoError(s.T(), err)
		assert.Equal(s.T(), nutrition.Profile{Calories: 1800, Phosphorus: 800}, profile)
	})

	s.Run("RepositoryFailure_ShouldReturnDatabaseError", func() {
		s.SetupTest()
		s.limits.On("LimitsForUser", s.ctx, 7).Return(nil, stderrors.New("connection refused"))

		_, err := s.newAggregator(0).Limits(s.ctx, 7)

		appErr, ok := errors.As(err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), errors.CodeDatabaseError, appErr.Code)
		assert.Equal(s.T(), "Error fetching nutrition limits", appErr.Message)
	})
}

func (s *AggregatorTestSuite) TestRecipeNutrition() {
	s.Run("EachFieldComesFromItsOwnNutrient", func() {
		s.SetupTest()
		recipes := []recipe.Recipe{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
		s.recipes.On("NutrientAmounts", s.ctx, []int{1, 2}).Return([]nutrition.Amount{
			{RecipeID: 1, NutrientID: 1, Quantity: 100},
			{RecipeID: 1, NutrientID: 7, Quantity: 30},
			{RecipeID: 2, NutrientID: 1, Quantity: 200},
		}, nil)

		totals, err := s.newAggregator(0).RecipeNutrition(s.ctx, recipes)

		require.NoError(s.T(), err)
		assert.Equal(s.T(), 100.0, totals[1].Calories)
		assert.Equal(s.T(), 30.0, totals[1].Sodium)
		assert.Equal(s.T(), 0.0, totals[1].Protein)
		assert.Equal(s.T(), 200.0, totals[2].Calories)
		assert.Equal(s.T(), 0.0, totals[2].Sodium)
	})

	s.Run("NoRecipes_ShouldNotQuery", func() {
		s.SetupTest()

		totals, err := s.newAggregator(0).RecipeNutrition(s.ctx, nil)

		require.NoError(s.T(), err)
		assert.Empty(s.T(), totals)
		s.recipes.AssertNotCalled(s.T(), "NutrientAmounts", mock.Anything, mock.Anything)
	})
}

func (s *AggregatorTestSuite) TestFoodMenus() {
	s.Run("RecipeWithoutNutrients_ShouldGetZeroProfile", func() {
		s.SetupTest()
		s.recipes.On("Eligible", s.ctx, 3).Return([]recipe.Recipe{
			{ID: 1, Name: "Rice soup", ImageLinks: []string{"a.jpg"}},
			{ID: 2, Name: "Steamed fish"},
		}, nil)
		s.recipes.On("NutrientAmounts", s.ctx, []int{1, 2}).Return([]nutrition.Amount{
			{RecipeID: 1, NutrientID: 2, Quantity: 40},
		}, nil)

		menus, err := s.newAggregator(0).FoodMenus(s.ctx, 3)

		require.NoError(s.T(), err)
		require.Len(s.T(), menus, 2)
		assert.Equal(s.T(), 40.0, menus[0].Nutrition.Carbs)
		assert.Equal(s.T(), nutrition.Profile{}, menus[1].Nutrition)
		assert.Equal(s.T(), []string{}, menus[1].ImageLinks)
	})

	s.Run("FilterFailure_ShouldKeepMessage", func() {
		s.SetupTest()
		s.recipes.On("Eligible", s.ctx, 3).Return(nil, stderrors.New("timeout"))

		_, err := s.newAggregator(0).FoodMenus(s.ctx, 3)

		appErr, ok := errors.As(err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), "Error fetching filtered recipes", appErr.Message)
	})
}

func (s *AggregatorTestSuite) TestBuildContext() {
	s.Run("CachingDisabled_ShouldNotTouchCache", func() {
		s.SetupTest()
		s.recipes.On("Eligible", s.ctx, 5).Return([]recipe.Recipe{}, nil)
		s.limits.On("LimitsForUser", s.ctx, 5).Return([]nutrition.Limit{}, nil)

		result, err := s.newAggregator(0).BuildContext(s.ctx, 5)

		require.NoError(s.T(), err)
		assert.Empty(s.T(), result.FoodMenus)
		s.cache.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
	})

	s.Run("CacheMiss_ShouldLoadAndStore", func() {
		s.SetupTest()
		s.cache.On("Get", s.ctx, "context:user:5").Return(nil, outbound.ErrCacheMiss)
		s.cache.On("Set", s.ctx, "context:user:5", mock.AnythingOfType("[]uint8"), time.Minute).Return(nil)
		s.recipes.On("Eligible", s.ctx, 5).Return([]recipe.Recipe{{ID: 9, Name: "Tofu"}}, nil)
		s.recipes.On("NutrientAmounts", s.ctx, []int{9}).Return([]nutrition.Amount{}, nil)
		s.limits.On("LimitsForUser", s.ctx, 5).Return([]nutrition.Limit{{NutrientID: intPtr(6), Amount: floatPtr(50)}}, nil)

		result, err := s.newAggregator(time.Minute).BuildContext(s.ctx, 5)

		require.NoError(s.T(), err)
		assert.Len(s.T(), result.FoodMenus, 1)
		assert.Equal(s.T(), 50.0, result.Limits.Protein)
		s.cache.AssertExpectations(s.T())
	})

	s.Run("CacheHit_ShouldSkipRepositories", func() {
		s.SetupTest()
		cached, err := json.Marshal(Context{
			FoodMenus: []recipe.FoodMenu{{RecipeID: 9, Name: "Tofu", ImageLinks: []string{}}},
			Limits:    nutrition.Profile{Sodium: 2000},
		})
		require.NoError(s.T(), err)
		s.cache.On("Get", s.ctx, "context:user:5").Return(cached, nil)

		result, err := s.newAggregator(time.Minute).BuildContext(s.ctx, 5)

		require.NoError(s.T(), err)
		assert.Equal(s.T(), 2000.0, result.Limits.Sodium)
		assert.Equal(s.T(), "Tofu", result.FoodMenus[0].Name)
		s.recipes.AssertNotCalled(s.T(), "Eligible", mock.Anything, mock.Anything)
	})
}

func (s *AggregatorTestSuite) TestInvalidate() {
	s.Run("Enabled_ShouldDropPrefix", func() {
		s.SetupTest()
		s.cache.On("DeletePrefix", s.ctx, "context:user:").Return(nil)

		s.newAggregator(time.Minute).Invalidate(s.ctx)

		s.cache.AssertExpectations(s.T())
	})

	s.Run("Disabled_ShouldDoNothing", func() {
		s.SetupTest()

		s.newAggregator(0).Invalidate(s.ctx)

		s.cache.AssertNotCalled(s.T(), "DeletePrefix", mock.Anything, mock.Anything)
	})
}

func TestAggregatorTestSuite(t *testing.T) {
	suite.Run(t, new(AggregatorTestSuite))
}
