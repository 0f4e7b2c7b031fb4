package sqlite

import (
	"testing"

	gormModels "github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDatabase_SeedsNutrients(t *testing.T) {
	db, err := SetupDatabase("", nil)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&gormModels.NutrientModel{}).Count(&count).Error)
	assert.Equal(t, int64(7), count)

	var protein gormModels.NutrientModel
	require.NoError(t, db.First(&protein, 6).Error)
	assert.Equal(t, "protein", protein.Name)
}

func TestSeedDatabase(t *testing.T) {
	db, err := SetupDatabase(MemoryPath, nil)
	require.NoError(t, err)

	require.NoError(t, SeedDatabase(db))
	// Seeding twice is a no-op
	require.NoError(t, SeedDatabase(db))

	var users []gormModels.UserModel
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].LineID)
	assert.Equal(t, DemoLineID, *users[0].LineID)

	var recipes []gormModels.RecipeModel
	require.NoError(t, db.Order("recipe_id").Find(&recipes).Error)
	require.Len(t, recipes, 4)
	assert.Equal(t, []string{"Simmer rice in water until soft", "Stir in egg white and season lightly"}, recipes[0].RecipeMethod.Strings())

	var limits int64
	require.NoError(t, db.Model(&gormModels.NutrientLimitModel{}).Where("user_id = ?", users[0].UserID).Count(&limits).Error)
	assert.Equal(t, int64(7), limits)
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := SetupDatabase("", nil)
	require.NoError(t, err)

	err = db.Create(&gormModels.MealPlanRecipeModel{MealPlanID: 99, RecipeID: 99}).Error
	assert.Error(t, err)
}
