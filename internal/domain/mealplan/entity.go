// Package mealplan holds the meal plan entities and the scheduling rules used
// when plans are created or replaced.
package mealplan

import "time"

// MealPlan is one user's plan for one calendar day
type MealPlan struct {
	ID      int
	UserID  int
	Name    string
	Date    time.Time
	Recipes []Entry
}

// Entry is a meal_plan_recipes row. The recipe columns are only filled when
// the entry was read together with its recipe.
type Entry struct {
	ID         int
	MealPlanID int
	RecipeID   int
	IsChecked  *bool
	MealTime   *int

	RecipeName string
	ImageLinks []string
	Calories   float64
}

// Selection is one client-submitted slot. A nil RecipeID is an empty slot.
type Selection struct {
	RecipeID *int
}

// NewDay builds an unsaved plan for date from one row of the day-grid. Empty
// slots are skipped but still occupy their position for meal_time purposes.
func NewDay(userID int, date time.Time, slots []Selection) MealPlan {
	plan := MealPlan{
		UserID: userID,
		Name:   Name(date),
		Date:   date,
	}
	for i, slot := range slots {
		if slot.RecipeID == nil {
			continue
		}
		plan.Recipes = append(plan.Recipes, newEntry(*slot.RecipeID, i))
	}
	return plan
}

// Schedule lays a whole day-grid out on consecutive dates starting from the
// first free day.
func Schedule(userID int, today time.Time, latest *time.Time, days [][]Selection) []MealPlan {
	start := StartDate(today, latest)
	plans := make([]MealPlan, 0, len(days))
	for i, slots := range days {
		plans = append(plans, NewDay(userID, start.AddDate(0, 0, i), slots))
	}
	return plans
}

// ReplacementEntries builds the new rows for an edited plan. Unlike creation,
// an empty slot is an error.
func ReplacementEntries(planID int, slots []Selection) ([]Entry, error) {
	entries := make([]Entry, 0, len(slots))
	for i, slot := range slots {
		if slot.RecipeID == nil {
			return nil, ErrMissingRecipe
		}
		e := newEntry(*slot.RecipeID, i)
		e.MealPlanID = planID
		entries = append(entries, e)
	}
	return entries, nil
}

func newEntry(recipeID, index int) Entry {
	checked := false
	mealTime := MealTimeFor(index)
	return Entry{
		RecipeID:  recipeID,
		IsChecked: &checked,
		MealTime:  &mealTime,
	}
}
