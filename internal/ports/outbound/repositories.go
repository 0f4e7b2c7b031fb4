// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
	"github.com/kidneyplan/mealplanner/internal/domain/nutrition"
	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/domain/user"
)

var (
	// ErrRecordNotFound is returned by repositories when a single-row lookup misses
	ErrRecordNotFound = errors.New("record not found")

	// ErrForeignKeyViolation is returned when a write breaks a foreign key: an
	// insert naming a missing row, or a delete of a row still referenced
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
	ErrCacheMiss = errors.New("cache miss")
)

// Transactor runs fn inside one database transaction. Repositories called
// with the ctx handed to fn take part in that transaction; returning an error
// from fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for user lookups
type UserRepository interface {
	FindByLineID(ctx context.Context, lineID string) (*user.User, error)
}

// MealPlanRepository defines the interface for meal plan persistence
type MealPlanRepository interface {
	// LatestDate returns the date of the user's newest plan, nil when there is none
	LatestDate(ctx context.Context, userID int) (*time.Time, error)

	// Create inserts the plan and its entries, filling in the generated ids
	Create(ctx context.Context, plan *mealplan.MealPlan) error

	FindByUserAndDate(ctx context.Context, userID int, date time.Time) (*mealplan.MealPlan, error)

	// DeleteEntries removes every entry of a plan and returns how many went
	DeleteEntries(ctx context.Context, planID int) (int64, error)
	InsertEntries(ctx context.Context, entries []mealplan.Entry) error

	// SetChecked updates one entry's ischecked flag and returns the affected row count
	SetChecked(ctx context.Context, entryID int, checked bool) (int64, error)

	// ListWithRecipes returns the user's plans joined with their entries and
	// recipes. Plans without entries are not returned. A nil date means all dates.
	ListWithRecipes(ctx context.Context, userID int, date *time.Time) ([]mealplan.MealPlan, error)
}

// RecipeRepository defines the interface for recipe persistence
type RecipeRepository interface {
	// Eligible returns every recipe that has no allergy link in common with
	// the user's declared allergies
	Eligible(ctx context.Context, userID int) ([]recipe.Recipe, error)

	// NutrientAmounts sums recipes_nutrients.quantity per (recipe, nutrient)
	// for the given recipes
	NutrientAmounts(ctx context.Context, recipeIDs []int) ([]nutrition.Amount, error)

	Update(ctx context.Context, id int, patch recipe.Patch) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// NutritionRepository defines the interface for per-user nutrient limits
type NutritionRepository interface {
	LimitsForUser(ctx context.Context, userID int) ([]nutrition.Limit, error)
}

// IngredientRepository defines the interface for the ingredient catalog
type IngredientRepository interface {
	List(ctx context.Context) ([]recipe.Ingredient, error)
	Create(ctx context.Context, ingredient *recipe.Ingredient) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Exists(ctx context.Context, key string) (bool, error)
}
