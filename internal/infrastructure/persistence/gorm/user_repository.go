package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/kidneyplan/mealplanner/internal/domain/user"
	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
)

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) outbound.UserRepository {
	return &UserRepository{db: db}
}

// FindByLineID finds a user by LINE id
func (r *UserRepository) FindByLineID(ctx context.Context, lineID string) (*user.User, error) {
	var model UserModel

	err := conn(ctx, r.db).
		Where("user_line_id = ?", lineID).
		Order("user_id").
		Take(&model).Error
	if err != nil {
		return nil, translateError(err)
	}

	return ModelToUser(&model), nil
}
