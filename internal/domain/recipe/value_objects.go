package recipe

import "strings"

// Ingredient is a row of the ingredients table
type Ingredient struct {
	ID      int
	Name    string
	NameEng *string
}

// NewIngredient validates and builds an ingredient that has not been stored yet
func NewIngredient(name string, nameEng *string) (*Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrIngredientNameRequired
	}
	if nameEng != nil {
		trimmed := strings.TrimSpace(*nameEng)
		if trimmed == "" {
			nameEng = nil
		} else {
			nameEng = &trimmed
		}
	}
	return &Ingredient{Name: name, NameEng: nameEng}, nil
}
