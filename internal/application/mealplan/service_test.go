package mealplan

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
	"github.com/kidneyplan/mealplanner/internal/domain/user"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/kidneyplan/mealplanner/internal/testutil"
	"github.com/kidneyplan/mealplanner/pkg/errors"
)

type MealPlanServiceTestSuite struct {
	suite.Suite
	users   *testutil.MockUserRepository
	plans   *testutil.MockMealPlanRepository
	service *MealPlanService
	ctx     context.Context
	today   time.Time
}

func (s *MealPlanServiceTestSuite) SetupTest() {
	s.users = new(testutil.MockUserRepository)
	s.plans = new(testutil.MockMealPlanRepository)
	s.ctx = context.Background()

	bangkok, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(s.T(), err)

	s.service = NewMealPlanService(s.users, s.plans, testutil.PassThroughTransactor{}, nil, bangkok,
		zaptest.NewLogger(s.T())).(*MealPlanService)
	// 2024-03-09 20:00 UTC is already 2024-03-10 in Bangkok
	s.service.now = func() time.Time { return time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC) }
	s.today = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
}

func lineID(v string) *string { return &v }
func recipeID(v int) *int     { return &v }

func (s *MealPlanServiceTestSuite) knownUser() *user.User {
	u := &user.User{ID: 11, Name: "Somchai", LineID: lineID("U-line")}
	s.users.On("FindByLineID", s.ctx, "U-line").Return(u, nil)
	return u
}

func (s *MealPlanServiceTestSuite) TestCreatePlan() {
	s.Run("NoExistingPlans_ShouldStartToday", func() {
		s.SetupTest()
		s.knownUser()
		s.plans.On("LatestDate", s.ctx, 11).Return(nil, nil)

		var created []mealplan.MealPlan
		s.plans.On("Create", s.ctx, mock.AnythingOfType("*mealplan.MealPlan")).
			Run(func(args mock.Arguments) {
				p := args.Get(1).(*mealplan.MealPlan)
				p.ID = 100 + len(created)
				created = append(created, *p)
			}).Return(nil)

		result, err := s.service.CreatePlan(s.ctx, inbound.CreatePlanCommand{
			UserLineID: "U-line",
			Days:       [][]mealplan.Selection{{{RecipeID: recipeID(5)}, {RecipeID: nil}}},
		})

		require.NoError(s.T(), err)
		require.Len(s.T(), created, 1)
		assert.Equal(s.T(), s.today, created[0].Date)
		assert.Equal(s.T(), "Meal Plan 10/03/2024", created[0].Name)
		require.Len(s.T(), created[0].Recipes, 1)
		assert.Equal(s.T(), 5, created[0].Recipes[0].RecipeID)
		assert.Equal(s.T(), 1, *created[0].Recipes[0].MealTime)
		assert.False(s.T(), *created[0].Recipes[0].IsChecked)
		assert.Equal(s.T(), []int{100}, result.PlanIDs)
		assert.Equal(s.T(), "2024-03-10", result.StartDate)
	})

	s.Run("FuturePlanExists_ShouldContinueAfterIt", func() {
		s.SetupTest()
		s.knownUser()
		latest := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
		s.plans.On("LatestDate", s.ctx, 11).Return(&latest, nil)

		var dates []time.Time
		s.plans.On("Create", s.ctx, mock.AnythingOfType("*mealplan.MealPlan")).
			Run(func(args mock.Arguments) {
				dates = append(dates, args.Get(1).(*mealplan.MealPlan).Date)
			}).Return(nil)

		_, err := s.service.CreatePlan(s.ctx, inbound.CreatePlanCommand{
			UserLineID: "U-line",
			Days:       [][]mealplan.Selection{{}, {}, {}},
		})

		require.NoError(s.T(), err)
		assert.Equal(s.T(), []time.Time{
			time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		}, dates)
	})

	s.Run("UnknownUser_ShouldReturnUserNotFound", func() {
		s.SetupTest()
		s.users.On("FindByLineID", s.ctx, "ghost").Return(nil, outbound.ErrRecordNotFound)

		_, err := s.service.CreatePlan(s.ctx, inbound.CreatePlanCommand{UserLineID: "ghost"})

		assert.True(s.T(), errors.Is(err, errors.CodeUserNotFound))
		s.plans.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	})

	s.Run("InsertFailure_ShouldReturnDatabaseError", func() {
		s.SetupTest()
		s.knownUser()
		s.plans.On("LatestDate", s.ctx, 11).Return(nil, nil)
		s.plans.On("Create", s.ctx, mock.Anything).Return(stderrors.New("fk violation"))

		_, err := s.service.CreatePlan(s.ctx, inbound.CreatePlanCommand{
			UserLineID: "U-line",
			Days:       [][]mealplan.Selection{{{RecipeID: recipeID(999)}}},
		})

		appErr, ok := errors.As(err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), "Failed to create meal plan", appErr.Message)
		assert.Equal(s.T(), 500, appErr.StatusCode())
	})
}

func (s *MealPlanServiceTestSuite) TestEditPlan() {
	planDate := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	s.Run("ValidRecipes_ShouldReplaceEntries", func() {
		s.SetupTest()
		s.knownUser()
		s.plans.On("FindByUserAndDate", s.ctx, 11, planDate).Return(&mealplan.MealPlan{ID: 40, UserID: 11}, nil)
		s.plans.On("DeleteEntries", s.ctx, 40).Return(int64(3), nil)
		s.plans.On("InsertEntries", s.ctx, mock.MatchedBy(func(entries []mealplan.Entry) bool {
			if len(entries) != 5 {
				return false
			}
			return entries[0].MealPlanID == 40 && *entries[0].MealTime == 1 && *entries[4].MealTime == 4
		})).Return(nil)

		err := s.service.EditPlan(s.ctx, inbound.EditPlanCommand{
			UserLineID: "U-line",
			Date:       "2024-03-11",
			Recipes: []mealplan.Selection{
				{RecipeID: recipeID(1)}, {RecipeID: recipeID(2)}, {RecipeID: recipeID(3)},
				{RecipeID: recipeID(4)}, {RecipeID: recipeID(5)},
			},
		})

		require.NoError(s.T(), err)
		s.plans.AssertExpectations(s.T())
	})

	s.Run("BadDate_ShouldReturnBadRequest", func() {
		s.SetupTest()
		s.knownUser()

		err := s.service.EditPlan(s.ctx, inbound.EditPlanCommand{UserLineID: "U-line", Date: "11/03/2024"})

		appErr, ok := errors.As(err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), 400, appErr.StatusCode())
		assert.Equal(s.T(), "Invalid date format. Use YYYY-MM-DD", appErr.Message)
	})

	s.Run("NoPlanOnDate_ShouldReturnNotFound", func() {
		s.SetupTest()
		s.knownUser()
		s.plans.On("FindByUserAndDate", s.ctx, 11, planDate).Return(nil, outbound.ErrRecordNotFound)

		err := s.service.EditPlan(s.ctx, inbound.EditPlanCommand{UserLineID: "U-line", Date: "2024-03-11"})

		appErr, ok := errors.As(err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), errors.CodeMealPlanNotFound, appErr.Code)
		assert.Equal(s.T(), "Meal plan not found for the given date", appErr.Message)
	})

	s.Run("NullRecipe_ShouldAbortWithoutInsert", func() {
		s.SetupTest()
		s.knownUser()
		s.plans.On("FindByUserAndDate", s.ctx, 11, planDate).Return(&mealplan.MealPlan{ID: 40}, nil)
		s.plans.On("DeleteEntries", s.ctx, 40).Return(int64(2), nil)

		err := s.service.EditPlan(s.ctx, inbound.EditPlanCommand{
			UserLineID: "U-line",
			Date:       "2024-03-11",
			Recipes:    []mealplan.Selection{{RecipeID: recipeID(1)}, {RecipeID: nil}},
		})

		appErr, ok := errors.As(err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), "Failed to insert new recipes", appErr.Message)
		assert.Equal(s.T(), 500, appErr.StatusCode())
		s.plans.AssertNotCalled(s.T(), "InsertEntries", mock.Anything, mock.Anything)
	})

	s.Run("DeleteFailure_ShouldReportIt", func() {
		s.SetupTest()
		s.knownUser()
		s.plans.On("FindByUserAndDate", s.ctx, 11, planDate).Return(&mealplan.MealPlan{ID: 40}, nil)
		s.plans.On("DeleteEntries", s.ctx, 40).Return(int64(0), stderrors.New("deadlock"))

		err := s.service.EditPlan(s.ctx, inbound.EditPlanCommand{UserLineID: "U-line", Date: "2024-03-11"})

		appErr, ok := errors.As(err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), "Failed to delete old recipes", appErr.Message)
	})
}

func (s *MealPlanServiceTestSuite) TestToggleEaten() {
	s.Run("ExistingEntry_ShouldSucceed", func() {
		s.SetupTest()
		s.plans.On("SetChecked", s.ctx, 7, true).Return(int64(1), nil)

		err := s.service.ToggleEaten(s.ctx, inbound.ToggleEatenCommand{MealPlanRecipeID: 7, IsChecked: true})

		assert.NoError(s.T(), err)
	})

	s.Run("MissingEntry_ShouldReturnNotFound", func() {
		s.SetupTest()
		s.plans.On("SetChecked", s.ctx, 8, false).Return(int64(0), nil)

		err := s.service.ToggleEaten(s.ctx, inbound.ToggleEatenCommand{MealPlanRecipeID: 8})

		assert.True(s.T(), errors.Is(err, errors.CodeMealPlanRecipeNotFound))
	})

	s.Run("DatabaseFailure_ShouldReturnInternal", func() {
		s.SetupTest()
		s.plans.On("SetChecked", s.ctx, 9, true).Return(int64(0), stderrors.New("gone"))

		err := s.service.ToggleEaten(s.ctx, inbound.ToggleEatenCommand{MealPlanRecipeID: 9, IsChecked: true})

		appErr, ok := errors.As(err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), "Failed to update meal plan recipe", appErr.Message)
	})
}

func (s *MealPlanServiceTestSuite) TestGetPlans() {
	s.Run("AllDates_ShouldMapEntries", func() {
		s.SetupTest()
		s.knownUser()
		checked := true
		mealTime := 2
		s.plans.On("ListWithRecipes", s.ctx, 11, (*time.Time)(nil)).Return([]mealplan.MealPlan{{
			ID:     3,
			UserID: 11,
			Name:   "Meal Plan 10/03/2024",
			Date:   s.today,
			Recipes: []mealplan.Entry{{
				ID: 30, MealPlanID: 3, RecipeID: 5, IsChecked: &checked, MealTime: &mealTime,
				RecipeName: "Congee", Calories: 250,
			}},
		}}, nil)

		list, err := s.service.GetPlans(s.ctx, inbound.GetPlansQuery{UserLineID: "U-line"})

		require.NoError(s.T(), err)
		require.Len(s.T(), list.MealPlans, 1)
		plan := list.MealPlans[0]
		assert.Equal(s.T(), "2024-03-10", plan.Date)
		require.Len(s.T(), plan.Recipes, 1)
		assert.Equal(s.T(), 30, plan.Recipes[0].MealPlanRecipeID)
		assert.Equal(s.T(), []string{}, plan.Recipes[0].RecipeImgLink)
		assert.Equal(s.T(), 250.0, plan.Recipes[0].Calories)
	})

	s.Run("SingleDate_ShouldFilter", func() {
		s.SetupTest()
		s.knownUser()
		date := "2024-03-10"
		s.plans.On("ListWithRecipes", s.ctx, 11, mock.MatchedBy(func(d *time.Time) bool {
			return d != nil && d.Equal(s.today)
		})).Return([]mealplan.MealPlan{}, nil)

		list, err := s.service.GetPlans(s.ctx, inbound.GetPlansQuery{UserLineID: "U-line", Date: &date})

		require.NoError(s.T(), err)
		assert.NotNil(s.T(), list.MealPlans)
		assert.Empty(s.T(), list.MealPlans)
	})

	s.Run("UnknownUser_ShouldReturn404", func() {
		s.SetupTest()
		s.users.On("FindByLineID", s.ctx, "nobody").Return(nil, outbound.ErrRecordNotFound)

		_, err := s.service.GetPlans(s.ctx, inbound.GetPlansQuery{UserLineID: "nobody"})

		appErr, ok := errors.As(err)
		require.True(s.T(), ok)
		assert.Equal(s.T(), 404, appErr.StatusCode())
		assert.Equal(s.T(), "User not found", appErr.Message)
	})

	s.Run("MalformedDate_ShouldReturn400", func() {
		s.SetupTest()
		s.knownUser()
		date := "2024-13-40"

		_, err := s.service.GetPlans(s.ctx, inbound.GetPlansQuery{UserLineID: "U-line", Date: &date})

		assert.True(s.T(), errors.Is(err, errors.CodeBadRequest))
	})
}

func TestMealPlanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MealPlanServiceTestSuite))
}
