package mealplan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
	gormrepo "github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/gorm"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/kidneyplan/mealplanner/internal/testutil"
	"github.com/kidneyplan/mealplanner/pkg/errors"
)

const missingRecipeID = 9999

// MealPlanStoreTestSuite runs the service against SQLite with real
// transactions
type MealPlanStoreTestSuite struct {
	suite.Suite
	ctx      context.Context
	fixtures *testutil.Fixtures
	plans    outbound.MealPlanRepository
	service  *MealPlanService
	userID   int
	recipeA  int
	recipeB  int
}

func (s *MealPlanStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	db := testutil.NewTestDB(s.T())
	s.fixtures = testutil.NewFixtures(s.T(), db)

	s.plans = gormrepo.NewMealPlanRepository(db)
	s.service = NewMealPlanService(
		gormrepo.NewUserRepository(db),
		s.plans,
		gormrepo.NewTransactor(db),
		nil,
		time.UTC,
		zaptest.NewLogger(s.T()),
	).(*MealPlanService)
	s.service.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }

	s.userID = s.fixtures.User("U-store").UserID
	s.recipeA = s.fixtures.Recipe(nil).RecipeID
	s.recipeB = s.fixtures.Recipe(nil).RecipeID
}

func (s *MealPlanStoreTestSuite) entryRecipes(date string) []int {
	d, err := mealplan.ParseDate(date)
	s.Require().NoError(err)

	plans, err := s.plans.ListWithRecipes(s.ctx, s.userID, &d)
	s.Require().NoError(err)
	s.Require().Len(plans, 1)

	ids := make([]int, 0, len(plans[0].Recipes))
	for _, e := range plans[0].Recipes {
		ids = append(ids, e.RecipeID)
	}
	return ids
}

func (s *MealPlanStoreTestSuite) TestEditPlan_UnknownRecipeKeepsOldEntries() {
	_, err := s.service.CreatePlan(s.ctx, inbound.CreatePlanCommand{
		UserLineID: "U-store",
		Days:       [][]mealplan.Selection{{{RecipeID: &s.recipeA}, {RecipeID: &s.recipeB}}},
	})
	s.Require().NoError(err)
	s.Equal([]int{s.recipeA, s.recipeB}, s.entryRecipes("2024-03-10"))

	missing := missingRecipeID
	err = s.service.EditPlan(s.ctx, inbound.EditPlanCommand{
		UserLineID: "U-store",
		Date:       "2024-03-10",
		Recipes:    []mealplan.Selection{{RecipeID: &s.recipeB}, {RecipeID: &missing}},
	})

	s.Require().Error(err)
	appErr, ok := errors.As(err)
	s.Require().True(ok)
	s.Equal(500, appErr.StatusCode())
	s.Equal([]int{s.recipeA, s.recipeB}, s.entryRecipes("2024-03-10"))
}

func (s *MealPlanStoreTestSuite) TestEditPlan_ReplacesEntries() {
	_, err := s.service.CreatePlan(s.ctx, inbound.CreatePlanCommand{
		UserLineID: "U-store",
		Days:       [][]mealplan.Selection{{{RecipeID: &s.recipeA}}},
	})
	s.Require().NoError(err)

	err = s.service.EditPlan(s.ctx, inbound.EditPlanCommand{
		UserLineID: "U-store",
		Date:       "2024-03-10",
		Recipes:    []mealplan.Selection{{RecipeID: &s.recipeB}, {RecipeID: &s.recipeA}},
	})

	s.Require().NoError(err)
	s.Equal([]int{s.recipeB, s.recipeA}, s.entryRecipes("2024-03-10"))
}

func (s *MealPlanStoreTestSuite) TestCreatePlan_UnknownRecipeOnLaterDayStoresNothing() {
	missing := missingRecipeID

	_, err := s.service.CreatePlan(s.ctx, inbound.CreatePlanCommand{
		UserLineID: "U-store",
		Days: [][]mealplan.Selection{
			{{RecipeID: &s.recipeA}},
			{{RecipeID: &s.recipeB}, {RecipeID: &missing}},
		},
	})

	s.Require().Error(err)
	latest, err := s.plans.LatestDate(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Nil(latest)

	plans, err := s.plans.ListWithRecipes(s.ctx, s.userID, nil)
	s.Require().NoError(err)
	s.Empty(plans)
}

func TestMealPlanStoreTestSuite(t *testing.T) {
	suite.Run(t, new(MealPlanStoreTestSuite))
}
