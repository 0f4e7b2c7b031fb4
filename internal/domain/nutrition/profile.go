// Package nutrition defines nutrient identities and the fixed-shape nutrient
// profile shared by recipe totals and user daily limits.
package nutrition

// NutrientID identifies a row in the nutrients table
type NutrientID int

// Known nutrients. Any other id is ignored when building a Profile.
const (
	Calories   NutrientID = 1
	Carbs      NutrientID = 2
	Fat        NutrientID = 3
	Phosphorus NutrientID = 4
	Potassium  NutrientID = 5
	Protein    NutrientID = 6
	Sodium     NutrientID = 7
)

// Known reports whether the id maps onto a Profile field
func (id NutrientID) Known() bool {
	return id >= Calories && id <= Sodium
}

// Profile is a set of nutrient amounts with one field per known nutrient.
// Missing nutrients are zero.
type Profile struct {
	Calories   float64
	Carbs      float64
	Fat        float64
	Phosphorus float64
	Potassium  float64
	Protein    float64
	Sodium     float64
}

// Set assigns the amount for a nutrient and reports whether the id was known
func (p *Profile) Set(id NutrientID, amount float64) bool {
	switch id {
	case Calories:
		p.Calories = amount
	case Carbs:
		p.Carbs = amount
	case Fat:
		p.Fat = amount
	case Phosphorus:
		p.Phosphorus = amount
	case Potassium:
		p.Potassium = amount
	case Protein:
		p.Protein = amount
	case Sodium:
		p.Sodium = amount
	default:
		return false
	}
	return true
}

// Add accumulates an amount onto a nutrient
func (p *Profile) Add(id NutrientID, amount float64) bool {
	return p.Set(id, p.Get(id)+amount)
}

// Get returns the amount for a nutrient, zero for unknown ids
func (p Profile) Get(id NutrientID) float64 {
	switch id {
	case Calories:
		return p.Calories
	case Carbs:
		return p.Carbs
	case Fat:
		return p.Fat
	case Phosphorus:
		return p.Phosphorus
	case Potassium:
		return p.Potassium
	case Protein:
		return p.Protein
	case Sodium:
		return p.Sodium
	default:
		return 0
	}
}

// Limit is one users_nutrients_limit_per_day row. Both columns are nullable.
type Limit struct {
	NutrientID *int
	Amount     *float64
}

// Amount is one summed (recipe, nutrient) total
type Amount struct {
	RecipeID   int
	NutrientID int
	Quantity   float64
}

// FromLimits folds limit rows into a Profile. Rows without a nutrient id or
// with an unknown id are skipped; a null amount counts as zero. When a
// nutrient appears twice the last row wins.
func FromLimits(limits []Limit) Profile {
	var p Profile
	for _, l := range limits {
		if l.NutrientID == nil {
			continue
		}
		amount := 0.0
		if l.Amount != nil {
			amount = *l.Amount
		}
		p.Set(NutrientID(*l.NutrientID), amount)
	}
	return p
}

// TotalsByRecipe groups per-nutrient sums into one Profile per recipe. Each
// field only ever receives the sum for its own nutrient id.
func TotalsByRecipe(amounts []Amount) map[int]Profile {
	totals := make(map[int]Profile)
	for _, a := range amounts {
		p := totals[a.RecipeID]
		p.Add(NutrientID(a.NutrientID), a.Quantity)
		totals[a.RecipeID] = p
	}
	return totals
}
