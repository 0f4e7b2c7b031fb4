package mealplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func id(v int) *int { return &v }

type ScheduleTestSuite struct {
	suite.Suite
	today time.Time
}

func (suite *ScheduleTestSuite) SetupTest() {
	suite.today = day("2024-03-10")
}

func (suite *ScheduleTestSuite) TestMealTimeFor() {
	expected := []int{1, 2, 3, 4, 4, 4, 4}
	for i, want := range expected {
		assert.Equal(suite.T(), want, MealTimeFor(i), "slot %d", i)
	}
}

func (suite *ScheduleTestSuite) TestStartDate() {
	suite.Run("NoPlans_ShouldStartToday", func() {
		assert.Equal(suite.T(), suite.today, StartDate(suite.today, nil))
	})

	suite.Run("LatestInPast_ShouldStartToday", func() {
		latest := day("2024-03-01")
		assert.Equal(suite.T(), suite.today, StartDate(suite.today, &latest))
	})

	suite.Run("LatestToday_ShouldStartTomorrow", func() {
		latest := suite.today
		assert.Equal(suite.T(), day("2024-03-11"), StartDate(suite.today, &latest))
	})

	suite.Run("LatestInFuture_ShouldStartAfterIt", func() {
		latest := day("2024-03-20")
		assert.Equal(suite.T(), day("2024-03-21"), StartDate(suite.today, &latest))
	})
}

func (suite *ScheduleTestSuite) TestSchedule() {
	suite.Run("Dates_ShouldBeContiguous", func() {
		grid := [][]Selection{{{RecipeID: id(1)}}, {}, {{RecipeID: id(2)}}}
		latest := day("2024-03-12")

		plans := Schedule(7, suite.today, &latest, grid)

		require.Len(suite.T(), plans, 3)
		for i, p := range plans {
			assert.Equal(suite.T(), day("2024-03-13").AddDate(0, 0, i), p.Date)
			assert.Equal(suite.T(), 7, p.UserID)
		}
		assert.Equal(suite.T(), "Meal Plan 13/03/2024", plans[0].Name)
		assert.Empty(suite.T(), plans[1].Recipes)
	})

	suite.Run("NullSlot_ShouldBeSkippedButKeepPosition", func() {
		grid := [][]Selection{{{RecipeID: id(5)}, {RecipeID: nil}, {RecipeID: id(6)}}}

		plans := Schedule(1, suite.today, nil, grid)

		require.Len(suite.T(), plans, 1)
		assert.Equal(suite.T(), suite.today, plans[0].Date)
		require.Len(suite.T(), plans[0].Recipes, 2)
		assert.Equal(suite.T(), 5, plans[0].Recipes[0].RecipeID)
		assert.Equal(suite.T(), 1, *plans[0].Recipes[0].MealTime)
		assert.Equal(suite.T(), 6, plans[0].Recipes[1].RecipeID)
		assert.Equal(suite.T(), 3, *plans[0].Recipes[1].MealTime)
		assert.False(suite.T(), *plans[0].Recipes[0].IsChecked)
	})
}

func (suite *ScheduleTestSuite) TestReplacementEntries() {
	suite.Run("AllPresent_ShouldAssignFreshMealTimes", func() {
		slots := []Selection{{RecipeID: id(1)}, {RecipeID: id(2)}, {RecipeID: id(3)}, {RecipeID: id(4)}, {RecipeID: id(5)}}

		entries, err := ReplacementEntries(11, slots)

		require.NoError(suite.T(), err)
		require.Len(suite.T(), entries, 5)
		for i, e := range entries {
			assert.Equal(suite.T(), 11, e.MealPlanID)
			assert.Equal(suite.T(), MealTimeFor(i), *e.MealTime)
		}
	})

	suite.Run("NullRecipe_ShouldFail", func() {
		_, err := ReplacementEntries(11, []Selection{{RecipeID: id(1)}, {}})
		assert.ErrorIs(suite.T(), err, ErrMissingRecipe)
	})
}

func (suite *ScheduleTestSuite) TestParseDate() {
	suite.Run("Valid", func() {
		d, err := ParseDate("2024-02-29")
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)
	})

	suite.Run("WrongLayout", func() {
		_, err := ParseDate("29/02/2024")
		assert.ErrorIs(suite.T(), err, ErrInvalidDate)
	})
}

func (suite *ScheduleTestSuite) TestToday() {
	bangkok := time.FixedZone("ICT", 7*60*60)
	// 20:00 UTC on the 9th is already the 10th in Bangkok
	now := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)

	assert.Equal(suite.T(), suite.today, Today(now, bangkok))
}

func TestScheduleTestSuite(t *testing.T) {
	suite.Run(t, new(ScheduleTestSuite))
}
