// Package nutrition provides the application layer that turns stored recipes
// and limits into the recommendation context: the allergy-filtered food menus
// of a user and their daily nutrient limits.
package nutrition

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kidneyplan/mealplanner/internal/domain/nutrition"
	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/kidneyplan/mealplanner/pkg/errors"
	"go.uber.org/zap"
)

const contextKeyPrefix = "context:user:"

// Context is everything the planner needs to know about one user
type Context struct {
	FoodMenus []recipe.FoodMenu `json:"food_menus"`
	Limits    nutrition.Profile `json:"limits"`
}

// Aggregator builds recommendation contexts
type Aggregator struct {
	recipes outbound.RecipeRepository
	limits  outbound.NutritionRepository
	cache   outbound.CacheRepository
	metrics outbound.MetricsRecorder
	ttl     time.Duration
	logger  *zap.Logger
}

// NewAggregator creates an aggregator. A zero ttl disables context caching.
func NewAggregator(
	recipes outbound.RecipeRepository,
	limits outbound.NutritionRepository,
	cache outbound.CacheRepository,
	metrics outbound.MetricsRecorder,
	ttl time.Duration,
	logger *zap.Logger,
) *Aggregator {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Aggregator{
		recipes: recipes,
		limits:  limits,
		cache:   cache,
		metrics: metrics,
		ttl:     ttl,
		logger:  logger.Named("nutrition-aggregator"),
	}
}

// Limits folds the user's limit rows into a profile
func (a *Aggregator) Limits(ctx context.Context, userID int) (nutrition.Profile, error) {
	rows, err := a.limits.LimitsForUser(ctx, userID)
	if err != nil {
		return nutrition.Profile{}, errors.NewDatabaseError("Error fetching nutrition limits", "load nutrient limits", err)
	}
	return nutrition.FromLimits(rows), nil
}

// EligibleRecipes returns the recipes the user is not allergic to
func (a *Aggregator) EligibleRecipes(ctx context.Context, userID int) ([]recipe.Recipe, error) {
	recipes, err := a.recipes.Eligible(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("Error fetching filtered recipes", "filter recipes by allergy", err)
	}
	return recipes, nil
}

// RecipeNutrition sums each recipe's nutrients independently per nutrient id.
// Recipes with no nutrient rows get a zero profile.
func (a *Aggregator) RecipeNutrition(ctx context.Context, recipes []recipe.Recipe) (map[int]nutrition.Profile, error) {
	if len(recipes) == 0 {
		return map[int]nutrition.Profile{}, nil
	}

	ids := make([]int, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}

	amounts, err := a.recipes.NutrientAmounts(ctx, ids)
	if err != nil {
		return nil, errors.NewDatabaseError("Error fetching recipe nutrition", "sum recipe nutrients", err)
	}
	return nutrition.TotalsByRecipe(amounts), nil
}

// FoodMenus pairs every eligible recipe with its totals
func (a *Aggregator) FoodMenus(ctx context.Context, userID int) ([]recipe.FoodMenu, error) {
	recipes, err := a.EligibleRecipes(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals, err := a.RecipeNutrition(ctx, recipes)
	if err != nil {
		return nil, err
	}

	menus := make([]recipe.FoodMenu, 0, len(recipes))
	for _, r := range recipes {
		menus = append(menus, recipe.NewFoodMenu(r, totals[r.ID]))
	}
	return menus, nil
}

// BuildContext loads the food menus and limits for a user, going through the
// cache when a ttl is configured
func (a *Aggregator) BuildContext(ctx context.Context, userID int) (*Context, error) {
	key := fmt.Sprintf("%s%d", contextKeyPrefix, userID)

	if a.cachingEnabled() {
		if cached, ok := a.cached(ctx, key); ok {
			a.metrics.ContextCache(true)
			return cached, nil
		}
		a.metrics.ContextCache(false)
	}

	menus, err := a.FoodMenus(ctx, userID)
	if err != nil {
		return nil, err
	}
	limits, err := a.Limits(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &Context{FoodMenus: menus, Limits: limits}

	if a.cachingEnabled() {
		a.store(ctx, key, result)
	}

	a.logger.Debug("Built recommendation context",
		zap.Int("user_id", userID),
		zap.Int("food_menus", len(menus)),
	)

	return result, nil
}

// Invalidate drops every cached context. Recipe edits change what any user
// may be offered, so the whole prefix goes.
func (a *Aggregator) Invalidate(ctx context.Context) {
	if !a.cachingEnabled() {
		return
	}
	if err := a.cache.DeletePrefix(ctx, contextKeyPrefix); err != nil {
		a.logger.Warn("Failed to invalidate recommendation contexts", zap.Error(err))
	}
}

func (a *Aggregator) cachingEnabled() bool {
	return a.cache != nil && a.ttl > 0
}

func (a *Aggregator) cached(ctx context.Context, key string) (*Context, bool) {
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			a.logger.Warn("Failed to read recommendation context from cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		a.logger.Warn("Discarding undecodable cached context", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &c, true
}

func (a *Aggregator) store(ctx context.Context, key string, c *Context) {
	data, err := json.Marshal(c)
	if err != nil {
		a.logger.Warn("Failed to encode recommendation context", zap.Error(err))
		return
	}
	if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
		a.logger.Warn("Failed to cache recommendation context", zap.String("key", key), zap.Error(err))
	}
}
