package testutil

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormrepo "github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/gorm"
	"github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/sqlite"
)

// NewTestDB opens a fresh in-memory SQLite database with the full schema
// and the nutrient catalog in place
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sqlite.SetupDatabase(sqlite.MemoryPath, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Fixtures inserts randomized rows for repository tests
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

// NewFixtures creates a fixture builder over db
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

// User inserts a user with the given LINE id. An empty id leaves it NULL.
func (f *Fixtures) User(lineID string) gormrepo.UserModel {
	f.t.Helper()

	m := gormrepo.UserModel{Name: gofakeit.Name()}
	if lineID != "" {
		m.LineID = &lineID
	}
	require.NoError(f.t, f.db.Create(&m).Error)
	return m
}

// Recipe inserts a recipe with one recipes_nutrients row per nutrient
// quantity, keyed by nutrient id
func (f *Fixtures) Recipe(quantities map[int]float64) gormrepo.RecipeModel {
	f.t.Helper()

	m := gormrepo.RecipeModel{
		RecipeName:    gofakeit.Dessert(),
		RecipeMethod:  gormrepo.TextArray{gofakeit.Sentence(6), gofakeit.Sentence(6)},
		Calories:      gofakeit.Float64Range(100, 600),
		CaloriesUnit:  "kcal",
		RecipeImgLink: gormrepo.TextArray{gofakeit.URL()},
		FoodCategory:  gormrepo.TextArray{gofakeit.Word()},
		DishType:      gormrepo.TextArray{gofakeit.Word()},
	}
	require.NoError(f.t, f.db.Create(&m).Error)

	for nutrientID, quantity := range quantities {
		link := gormrepo.RecipeNutrientModel{RecipeID: m.RecipeID, NutrientID: nutrientID, Quantity: quantity}
		require.NoError(f.t, f.db.Create(&link).Error)
	}
	return m
}

// Allergy inserts an ingredient allergy
func (f *Fixtures) Allergy() gormrepo.IngredientAllergyModel {
	f.t.Helper()

	m := gormrepo.IngredientAllergyModel{IngredientAllergyName: gofakeit.Noun()}
	require.NoError(f.t, f.db.Create(&m).Error)
	return m
}

// RecipeAllergy marks a recipe as containing an allergy
func (f *Fixtures) RecipeAllergy(recipeID, allergyID int) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&gormrepo.RecipeAllergyModel{RecipeID: recipeID, IngredientAllergyID: allergyID}).Error)
}

// UserAllergy declares an allergy for a user
func (f *Fixtures) UserAllergy(userID, allergyID int) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&gormrepo.UserAllergyModel{UserID: userID, IngredientAllergyID: allergyID}).Error)
}

// Limit inserts one daily nutrient limit. Nil values are stored as NULL.
func (f *Fixtures) Limit(userID int, nutrientID *int, amount *float64) {
	f.t.Helper()
	m := gormrepo.NutrientLimitModel{UserID: &userID, NutrientID: nutrientID, NutrientLimit: amount}
	require.NoError(f.t, f.db.Create(&m).Error)
}
