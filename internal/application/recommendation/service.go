// Package recommendation bridges the external meal-plan recommender. It
// assembles the user's recommendation context, posts it, and hands the reply
// back with minimal reshaping.
package recommendation

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/kidneyplan/mealplanner/internal/application/mealplan"
	"github.com/kidneyplan/mealplanner/internal/application/nutrition"
	domainmealplan "github.com/kidneyplan/mealplanner/internal/domain/mealplan"
	domainnutrition "github.com/kidneyplan/mealplanner/internal/domain/nutrition"
	"github.com/kidneyplan/mealplanner/internal/domain/recipe"
	"github.com/kidneyplan/mealplanner/internal/ports/inbound"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
	"github.com/kidneyplan/mealplanner/pkg/errors"
	"go.uber.org/zap"
)

// Service implements the recommendation use cases
type Service struct {
	users      outbound.UserRepository
	aggregator *nutrition.Aggregator
	client     outbound.RecommendationClient
	logger     *zap.Logger
}

// NewService creates a new recommendation service
func NewService(
	users outbound.UserRepository,
	aggregator *nutrition.Aggregator,
	client outbound.RecommendationClient,
	logger *zap.Logger,
) inbound.RecommendationService {
	return &Service{
		users:      users,
		aggregator: aggregator,
		client:     client,
		logger:     logger.Named("recommendation-service"),
	}
}

// GenerateInitialPlan asks the recommender for a new plan. The internal user
// id is sent in the user_line_id field.
func (s *Service) GenerateInitialPlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (json.RawMessage, error) {
	u, err := mealplan.ResolveUser(ctx, s.users, cmd.UserLineID)
	if err != nil {
		return nil, err
	}

	rc, err := s.aggregator.BuildContext(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	req := outbound.PlanRequest{
		UserLineID:           strconv.Itoa(u.ID),
		Days:                 cmd.Days,
		FoodMenus:            toWireMenus(rc.FoodMenus),
		NutritionLimitPerDay: toWireNutrition(rc.Limits),
	}

	s.logger.Info("Requesting initial meal plan",
		zap.Int("user_id", u.ID),
		zap.Int("days", cmd.Days),
		zap.Int("food_menus", len(req.FoodMenus)),
	)

	reply, err := s.client.RecommendPlan(ctx, req)
	if err != nil {
		s.logger.Error("Recommender request failed", zap.Int("user_id", u.ID), zap.Error(err))
		return nil, errors.Wrap(err, "Failed to send request")
	}
	return reply, nil
}

// ReconcilePlan resolves a client-edited grid into full food menus and asks
// the recommender to rebalance it. Cells that are empty or that name a recipe
// outside the user's eligible set are dropped.
func (s *Service) ReconcilePlan(ctx context.Context, cmd inbound.ReconcilePlanCommand) (json.RawMessage, error) {
	u, err := mealplan.ResolveUser(ctx, s.users, cmd.UserLineID)
	if err != nil {
		return nil, err
	}
	if !u.HasLineID() {
		return nil, errors.NewNotFoundError("User LINE ID")
	}
	lineID := *u.LineID

	rc, err := s.aggregator.BuildContext(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	menus := toWireMenus(rc.FoodMenus)
	req := outbound.UpdatePlanRequest{
		UserLineID:           lineID,
		Days:                 cmd.Days,
		NutritionLimitPerDay: toWireNutrition(rc.Limits),
		FoodMenus:            menus,
		MealPlan: outbound.SubmittedPlan{
			UserID:    lineID,
			MealPlans: resolveGrid(cmd.MealPlans, menus),
		},
	}

	s.logger.Info("Requesting meal plan update",
		zap.Int("user_id", u.ID),
		zap.Int("days", cmd.Days),
		zap.Int("submitted_days", len(cmd.MealPlans)),
	)

	reply, err := s.client.UpdatePlan(ctx, req)
	if err != nil {
		s.logger.Error("Recommender update failed", zap.Int("user_id", u.ID), zap.Error(err))
		return nil, errors.Wrap(err, "Failed to send request")
	}

	renamed, err := RenameUserID(reply)
	if err != nil {
		return nil, errors.NewExternalServiceError("recommender", "Failed to parse response", err)
	}
	return renamed, nil
}

// RenameUserID moves a top-level "user_id" member of a JSON object to
// "user_line_id". Replies that are not objects, or have no user_id, come
// back unchanged.
func RenameUserID(reply json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(reply)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return reply, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, err
	}

	userID, ok := fields["user_id"]
	if !ok {
		return reply, nil
	}
	delete(fields, "user_id")
	fields["user_line_id"] = userID

	return json.Marshal(fields)
}

func resolveGrid(grid [][]domainmealplan.Selection, menus []outbound.FoodMenu) [][]outbound.FoodMenu {
	byID := make(map[int]outbound.FoodMenu, len(menus))
	for _, m := range menus {
		byID[m.RecipeID] = m
	}

	days := make([][]outbound.FoodMenu, 0, len(grid))
	for _, slots := range grid {
		day := make([]outbound.FoodMenu, 0, len(slots))
		for _, slot := range slots {
			if slot.RecipeID == nil {
				continue
			}
			if m, ok := byID[*slot.RecipeID]; ok {
				day = append(day, m)
			}
		}
		days = append(days, day)
	}
	return days
}

func toWireMenus(menus []recipe.FoodMenu) []outbound.FoodMenu {
	out := make([]outbound.FoodMenu, 0, len(menus))
	for _, m := range menus {
		links := m.ImageLinks
		if links == nil {
			links = []string{}
		}
		out = append(out, outbound.FoodMenu{
			Name:          m.Name,
			Nutrition:     toWireNutrition(m.Nutrition),
			RecipeID:      m.RecipeID,
			RecipeImgLink: links,
		})
	}
	return out
}

func toWireNutrition(p domainnutrition.Profile) outbound.Nutrition {
	return outbound.Nutrition{
		Calories:   p.Calories,
		Carbs:      p.Carbs,
		Fat:        p.Fat,
		Phosphorus: p.Phosphorus,
		Potassium:  p.Potassium,
		Protein:    p.Protein,
		Sodium:     p.Sodium,
	}
}
