package recipe

import "errors"

// Domain errors for recipe operations
var (
	ErrEmptyPatch             = errors.New("recipe update must set at least one field")
	ErrNameRequired           = errors.New("recipe name must not be empty")
	ErrNegativeCalories       = errors.New("calories must not be negative")
	ErrIngredientNameRequired = errors.New("ingredient name is required")
)
