// Package mealplan provides the application layer for meal plan management
// This implements the use cases defined in the inbound ports
package mealplan

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/kidneyplan/mealplanner/internal/domain/mealplan"
	"github.com/kidneyplan/mealplanner/internal/domain/user"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/kidneyplan/mealplanner/pkg/errors"
	"go.uber.org/zap"
)

// MealPlanService implements the meal plan use cases
type MealPlanService struct {
	users    outbound.UserRepository
	plans    outbound.MealPlanRepository
	tx       outbound.Transactor
	metrics  outbound.MetricsRecorder
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewMealPlanService creates a new meal plan service. "Today" is evaluated
// in location.
func NewMealPlanService(
	users outbound.UserRepository,
	plans outbound.MealPlanRepository,
	tx outbound.Transactor,
	metrics outbound.MetricsRecorder,
	location *time.Location,
	logger *zap.Logger,
) inbound.MealPlanService {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	if location == nil {
		location = time.UTC
	}
	return &MealPlanService{
		users:    users,
		plans:    plans,
		tx:       tx,
		metrics:  metrics,
		location: location,
		now:      time.Now,
		logger:   logger.Named("mealplan-service"),
	}
}

// CreatePlan stores one plan per day of the grid, starting at the first day
// not yet covered by an existing plan
func (s *MealPlanService) CreatePlan(ctx context.Context, cmd inbound.CreatePlanCommand) (*inbound.CreatePlanResult, error) {
	u, err := ResolveUser(ctx, s.users, cmd.UserLineID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Creating meal plans",
		zap.Int("user_id", u.ID),
		zap.Int("days", len(cmd.Days)),
	)

	var plans []mealplan.MealPlan
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		latest, err := s.plans.LatestDate(ctx, u.ID)
		if err != nil {
			return errors.NewDatabaseError("Failed to fetch latest meal plan date", "load latest plan date", err)
		}

		today := mealplan.Today(s.now(), s.location)
		plans = mealplan.Schedule(u.ID, today, latest, cmd.Days)

		for i := range plans {
			if err := s.plans.Create(ctx, &plans[i]); err != nil {
				return errors.NewDatabaseError("Failed to create meal plan", "insert meal plan", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create meal plans", zap.Int("user_id", u.ID), zap.Error(err))
		return nil, errors.Wrap(err, "Failed to create meal plan")
	}

	s.metrics.PlansCreated(len(plans))

	result := &inbound.CreatePlanResult{PlanIDs: make([]int, 0, len(plans))}
	for _, p := range plans {
		result.PlanIDs = append(result.PlanIDs, p.ID)
	}
	if len(plans) > 0 {
		result.StartDate = plans[0].Date.Format(mealplan.DateLayout)
	}

	s.logger.Info("Meal plans created successfully",
		zap.Int("user_id", u.ID),
		zap.Ints("meal_plan_ids", result.PlanIDs),
	)

	return result, nil
}

// EditPlan replaces every entry of the plan on the given date. The delete and
// the insert share one transaction, so a failed insert keeps the old entries.
func (s *MealPlanService) EditPlan(ctx context.Context, cmd inbound.EditPlanCommand) error {
	u, err := ResolveUser(ctx, s.users, cmd.UserLineID)
	if err != nil {
		return err
	}

	date, err := mealplan.ParseDate(cmd.Date)
	if err != nil {
		return errors.NewBadRequestError("Invalid date format. Use YYYY-MM-DD")
	}

	plan, err := s.plans.FindByUserAndDate(ctx, u.ID, date)
	if err != nil {
		if stderrors.Is(err, outbound.ErrRecordNotFound) {
			return errors.NewMealPlanNotFoundError(cmd.Date)
		}
		return errors.NewDatabaseError("Failed to fetch meal plan", "find plan by date", err)
	}

	var replaced int
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.plans.DeleteEntries(ctx, plan.ID); err != nil {
			return errors.NewDatabaseError("Failed to delete old recipes", "delete plan entries", err)
		}

		entries, err := mealplan.ReplacementEntries(plan.ID, cmd.Recipes)
		if err != nil {
			return errors.NewInternalError("Failed to insert new recipes").WithCause(err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := s.plans.InsertEntries(ctx, entries); err != nil {
			return errors.NewDatabaseError("Failed to insert new recipes", "insert plan entries", err)
		}
		replaced = len(entries)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to edit meal plan",
			zap.Int("meal_plan_id", plan.ID),
			zap.Error(err),
		)
		return errors.Wrap(err, "Failed to update meal plan")
	}

	s.metrics.EntriesReplaced(replaced)

	s.logger.Info("Meal plan updated",
		zap.Int("meal_plan_id", plan.ID),
		zap.Int("entries", replaced),
	)

	return nil
}

// ToggleEaten marks one plan entry as eaten or not eaten
func (s *MealPlanService) ToggleEaten(ctx context.Context, cmd inbound.ToggleEatenCommand) error {
	affected, err := s.plans.SetChecked(ctx, cmd.MealPlanRecipeID, cmd.IsChecked)
	if err != nil {
		s.logger.Error("Failed to update ischecked",
			zap.Int("meal_plan_recipe_id", cmd.MealPlanRecipeID),
			zap.Error(err),
		)
		return errors.NewDatabaseError("Failed to update meal plan recipe", "update ischecked", err)
	}
	if affected == 0 {
		return errors.NewMealPlanRecipeNotFoundError(cmd.MealPlanRecipeID)
	}
	return nil
}

// GetPlans returns the user's plans with their recipes
func (s *MealPlanService) GetPlans(ctx context.Context, query inbound.GetPlansQuery) (*inbound.MealPlanList, error) {
	u, err := ResolveUser(ctx, s.users, query.UserLineID)
	if err != nil {
		return nil, err
	}

	var date *time.Time
	if query.Date != nil && strings.TrimSpace(*query.Date) != "" {
		d, err := mealplan.ParseDate(*query.Date)
		if err != nil {
			return nil, errors.NewBadRequestError("Invalid date format. Use YYYY-MM-DD")
		}
		date = &d
	}

	plans, err := s.plans.ListWithRecipes(ctx, u.ID, date)
	if err != nil {
		return nil, errors.NewDatabaseError("Error fetching meal plans", "list plans with recipes", err)
	}

	return toMealPlanList(plans), nil
}

// ResolveUser looks a user up by LINE id and converts a miss into the
// user-facing not found error
func ResolveUser(ctx context.Context, users outbound.UserRepository, lineID string) (*user.User, error) {
	u, err := users.FindByLineID(ctx, lineID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrRecordNotFound) {
			return nil, errors.NewUserNotFoundError(lineID)
		}
		return nil, errors.NewDatabaseError("Failed to fetch user", "find user by line id", err)
	}
	return u, nil
}

func toMealPlanList(plans []mealplan.MealPlan) *inbound.MealPlanList {
	list := &inbound.MealPlanList{MealPlans: make([]inbound.MealPlanDTO, 0, len(plans))}
	for _, p := range plans {
		dto := inbound.MealPlanDTO{
			MealPlanID: p.ID,
			UserID:     p.UserID,
			Name:       p.Name,
			Date:       p.Date.Format(mealplan.DateLayout),
			Recipes:    make([]inbound.PlanRecipeDTO, 0, len(p.Recipes)),
		}
		for _, e := range p.Recipes {
			links := e.ImageLinks
			if links == nil {
				links = []string{}
			}
			dto.Recipes = append(dto.Recipes, inbound.PlanRecipeDTO{
				RecipeID:         e.RecipeID,
				RecipeName:       e.RecipeName,
				RecipeImgLink:    links,
				IsChecked:        e.IsChecked,
				MealPlanRecipeID: e.ID,
				MealTime:         e.MealTime,
				Calories:         e.Calories,
			})
		}
		list.MealPlans = append(list.MealPlans, dto)
	}
	return list
}
