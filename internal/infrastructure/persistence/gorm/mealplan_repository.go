package gorm

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
)

// MealPlanRepository implements the meal plan repository interface using GORM
type MealPlanRepository struct {
	db *gorm.DB
}

// NewMealPlanRepository creates a new meal plan repository
func NewMealPlanRepository(db *gorm.DB) outbound.MealPlanRepository {
	return &MealPlanRepository{db: db}
}

// LatestDate returns the newest plan date of a user
func (r *MealPlanRepository) LatestDate(ctx context.Context, userID int) (*time.Time, error) {
	var model MealPlanModel

	err := conn(ctx, r.db).
		Select("date").
		Where("user_id = ?", userID).
		Order("date DESC").
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}

	latest := mealplan.DateOf(time.Time(model.Date))
	return &latest, nil
}

// Create inserts the plan together with its entries
func (r *MealPlanRepository) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	model := MealPlanToModel(plan)

	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return translateError(err)
	}

	plan.ID = model.MealPlanID
	for i := range plan.Recipes {
		plan.Recipes[i].ID = model.Recipes[i].MealPlanRecipeID
		plan.Recipes[i].MealPlanID = model.MealPlanID
	}
	return nil
}

// FindByUserAndDate finds the plan of a user on one date
func (r *MealPlanRepository) FindByUserAndDate(ctx context.Context, userID int, date time.Time) (*mealplan.MealPlan, error) {
	var model MealPlanModel

	err := conn(ctx, r.db).
		Where("user_id = ? AND date = ?", userID, datatypes.Date(mealplan.DateOf(date))).
		Order("meal_plan_id").
		Take(&model).Error
	if err != nil {
		return nil, translateError(err)
	}

	return ModelToMealPlan(&model), nil
}

// DeleteEntries removes all entries of a plan
func (r *MealPlanRepository) DeleteEntries(ctx context.Context, planID int) (int64, error) {
	result := conn(ctx, r.db).
		Where("meal_plan_id = ?", planID).
		Delete(&MealPlanRecipeModel{})
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

// InsertEntries inserts plan entries in one statement
func (r *MealPlanRepository) InsertEntries(ctx context.Context, entries []mealplan.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	models := make([]MealPlanRecipeModel, 0, len(entries))
	for _, e := range entries {
		models = append(models, EntryToModel(e))
	}

	if err := conn(ctx, r.db).Create(&models).Error; err != nil {
		return translateError(err)
	}

	for i := range entries {
		entries[i].ID = models[i].MealPlanRecipeID
	}
	return nil
}

// SetChecked updates the ischecked flag of one entry
func (r *MealPlanRepository) SetChecked(ctx context.Context, entryID int, checked bool) (int64, error) {
	result := conn(ctx, r.db).
		Model(&MealPlanRecipeModel{}).
		Where("meal_plan_recipe_id = ?", entryID).
		Update("ischecked", checked)
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

type planRecipeRow struct {
	MealPlanID       int
	UserID           int
	Name             string
	Date             datatypes.Date
	MealPlanRecipeID int
	RecipeID         int
	IsChecked        *bool `gorm:"column:ischecked"`
	MealTime         *int
	RecipeName       string
	RecipeImgLink    TextArray
	Calories         float64
}

// ListWithRecipes joins plans, entries and recipes for one user
func (r *MealPlanRepository) ListWithRecipes(ctx context.Context, userID int, date *time.Time) ([]mealplan.MealPlan, error) {
	query := conn(ctx, r.db).
		Table("meal_plans AS mp").
		Select(`mp.meal_plan_id, mp.user_id, mp.name, mp.date,
			mpr.meal_plan_recipe_id, mpr.recipe_id, mpr.ischecked, mpr.meal_time,
			r.recipe_name, r.recipe_img_link, r.calories`).
		Joins("JOIN meal_plan_recipes AS mpr ON mpr.meal_plan_id = mp.meal_plan_id").
		Joins("JOIN recipes AS r ON r.recipe_id = mpr.recipe_id").
		Where("mp.user_id = ?", userID)

	if date != nil {
		query = query.Where("mp.date = ?", datatypes.Date(mealplan.DateOf(*date)))
	}

	var rows []planRecipeRow
	err := query.
		Order("mp.date, mp.meal_plan_id, mpr.meal_time, mpr.meal_plan_recipe_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	return groupPlanRows(rows), nil
}

func groupPlanRows(rows []planRecipeRow) []mealplan.MealPlan {
	plans := make([]mealplan.MealPlan, 0)
	index := make(map[int]int)

	for _, row := range rows {
		i, ok := index[row.MealPlanID]
		if !ok {
			i = len(plans)
			index[row.MealPlanID] = i
			plans = append(plans, mealplan.MealPlan{
				ID:     row.MealPlanID,
				UserID: row.UserID,
				Name:   row.Name,
				Date:   mealplan.DateOf(time.Time(row.Date)),
			})
		}
		plans[i].Recipes = append(plans[i].Recipes, mealplan.Entry{
			ID:         row.MealPlanRecipeID,
			MealPlanID: row.MealPlanID,
			RecipeID:   row.RecipeID,
			IsChecked:  row.IsChecked,
			MealTime:   row.MealTime,
			RecipeName: row.RecipeName,
			ImageLinks: row.RecipeImgLink.Strings(),
			Calories:   row.Calories,
		})
	}
	return plans
}
