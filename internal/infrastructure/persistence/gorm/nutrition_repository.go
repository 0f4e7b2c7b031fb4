package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/kidneyplan/mealplanner/internal/domain/nutrition"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
)

// NutritionRepository implements the nutrient limit repository using GORM
type NutritionRepository struct {
	db *gorm.DB
}

// NewNutritionRepository creates a new nutrition repository
func NewNutritionRepository(db *gorm.DB) outbound.NutritionRepository {
	return &NutritionRepository{db: db}
}

// LimitsForUser returns the user's limit rows in insertion order
func (r *NutritionRepository) LimitsForUser(ctx context.Context, userID int) ([]nutrition.Limit, error) {
	var models []NutrientLimitModel

	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("users_nutrients_limit_per_day_id").
		Find(&models).Error
	if err != nil {
		return nil, translateError(err)
	}

	limits := make([]nutrition.Limit, 0, len(models))
	for _, m := range models {
		limits = append(limits, nutrition.Limit{NutrientID: m.NutrientID, Amount: m.NutrientLimit})
	}
	return limits, nil
}
