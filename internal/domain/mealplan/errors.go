package mealplan

import "errors"

var (
	ErrInvalidDate   = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrMissingRecipe = errors.New("meal plan entry has no recipe id")
)
