// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"fmt"

	gormModels "github.com/kidneyplan/mealplanner/internal/infrastructure/persistence/gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath selects a private in-memory database
const MemoryPath = ":memory:"

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, gormLogger logger.Interface) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = MemoryPath
	}

	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// Each connection to ":memory:" opens its own empty database
	if dbPath == MemoryPath {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := seedNutrients(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Nutrient ids match the ordering used in daily limits
var nutrients = []gormModels.NutrientModel{
	{NutrientID: 1, Name: "calories", Unit: "kcal"},
	{NutrientID: 2, Name: "carbs", Unit: "g"},
	{NutrientID: 3, Name: "fat", Unit: "g"},
	{NutrientID: 4, Name: "phosphorus", Unit: "mg"},
	{NutrientID: 5, Name: "potassium", Unit: "mg"},
	{NutrientID: 6, Name: "protein", Unit: "g"},
	{NutrientID: 7, Name: "sodium", Unit: "mg"},
}

func seedNutrients(db *gorm.DB) error {
	var count int64
	if err := db.Model(&gormModels.NutrientModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count nutrients: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := db.Create(&nutrients).Error; err != nil {
		return fmt.Errorf("failed to create nutrients: %w", err)
	}
	return nil
}

// DemoLineID is the LINE id of the seeded demo user
const DemoLineID = "U-demo-kidney"

// SeedDatabase populates the database with a demo user and a small
// kidney-friendly recipe catalog
func SeedDatabase(db *gorm.DB) error {
	// Check if data already exists
	var userCount int64
	db.Model(&gormModels.UserModel{}).Count(&userCount)
	if userCount > 0 {
		return nil // Already seeded
	}

	return db.Transaction(func(tx *gorm.DB) error {
		lineID := DemoLineID
		demoUser := gormModels.UserModel{Name: "Demo Patient", LineID: &lineID}
		if err := tx.Create(&demoUser).Error; err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}

		// Daily limits for a stage 3 patient
		limits := map[int]float64{1: 1800, 2: 250, 3: 60, 4: 800, 5: 2000, 6: 50, 7: 2000}
		for id := 1; id <= len(nutrients); id++ {
			nutrientID, amount := id, limits[id]
			limit := gormModels.NutrientLimitModel{UserID: &demoUser.UserID, NutrientID: &nutrientID, NutrientLimit: &amount}
			if err := tx.Create(&limit).Error; err != nil {
				return fmt.Errorf("failed to create nutrient limit: %w", err)
			}
		}

		allergies := []gormModels.IngredientAllergyModel{
			{IngredientAllergyName: "shellfish"},
			{IngredientAllergyName: "peanut"},
		}
		if err := tx.Create(&allergies).Error; err != nil {
			return fmt.Errorf("failed to create allergies: %w", err)
		}
		userAllergy := gormModels.UserAllergyModel{UserID: demoUser.UserID, IngredientAllergyID: allergies[0].IngredientAllergyID}
		if err := tx.Create(&userAllergy).Error; err != nil {
			return fmt.Errorf("failed to create user allergy: %w", err)
		}

		demoRecipes := []struct {
			model     gormModels.RecipeModel
			nutrients [7]float64
			allergy   int
		}{
			{
				model: gormModels.RecipeModel{
					RecipeName:    "Rice porridge with egg white",
					RecipeMethod:  gormModels.TextArray{"Simmer rice in water until soft", "Stir in egg white and season lightly"},
					Calories:      220,
					CaloriesUnit:  "kcal",
					RecipeImgLink: gormModels.TextArray{"https://img.example.com/porridge.jpg"},
					FoodCategory:  gormModels.TextArray{"breakfast"},
					DishType:      gormModels.TextArray{"soup"},
				},
				nutrients: [7]float64{220, 40, 2, 60, 90, 9, 180},
				allergy:   -1,
			},
			{
				model: gormModels.RecipeModel{
					RecipeName:    "Stir-fried chicken with cabbage",
					RecipeMethod:  gormModels.TextArray{"Slice chicken breast", "Stir-fry with cabbage and garlic"},
					Calories:      340,
					CaloriesUnit:  "kcal",
					RecipeImgLink: gormModels.TextArray{"https://img.example.com/chicken-cabbage.jpg"},
					FoodCategory:  gormModels.TextArray{"main"},
					DishType:      gormModels.TextArray{"stir-fry"},
				},
				nutrients: [7]float64{340, 18, 12, 210, 380, 28, 420},
				allergy:   -1,
			},
			{
				model: gormModels.RecipeModel{
					RecipeName:    "Shrimp glass noodle salad",
					RecipeMethod:  gormModels.TextArray{"Blanch shrimp and noodles", "Toss with lime dressing"},
					Calories:      280,
					CaloriesUnit:  "kcal",
					RecipeImgLink: gormModels.TextArray{"https://img.example.com/shrimp-salad.jpg"},
					FoodCategory:  gormModels.TextArray{"main"},
					DishType:      gormModels.TextArray{"salad"},
				},
				nutrients: [7]float64{280, 30, 6, 190, 260, 20, 610},
				allergy:   0,
			},
			{
				model: gormModels.RecipeModel{
					RecipeName:    "Steamed fish with ginger",
					RecipeMethod:  gormModels.TextArray{"Season fish with ginger", "Steam for twelve minutes"},
					Calories:      260,
					CaloriesUnit:  "kcal",
					RecipeImgLink: gormModels.TextArray{"https://img.example.com/steamed-fish.jpg"},
					FoodCategory:  gormModels.TextArray{"main"},
					DishType:      gormModels.TextArray{"steamed"},
				},
				nutrients: [7]float64{260, 4, 8, 230, 340, 32, 350},
				allergy:   -1,
			},
		}

		for i := range demoRecipes {
			r := &demoRecipes[i]
			if err := tx.Create(&r.model).Error; err != nil {
				return fmt.Errorf("failed to create demo recipe: %w", err)
			}
			for j, quantity := range r.nutrients {
				link := gormModels.RecipeNutrientModel{RecipeID: r.model.RecipeID, NutrientID: j + 1, Quantity: quantity}
				if err := tx.Create(&link).Error; err != nil {
					return fmt.Errorf("failed to create recipe nutrient: %w", err)
				}
			}
			if r.allergy >= 0 {
				link := gormModels.RecipeAllergyModel{RecipeID: r.model.RecipeID, IngredientAllergyID: allergies[r.allergy].IngredientAllergyID}
				if err := tx.Create(&link).Error; err != nil {
					return fmt.Errorf("failed to create recipe allergy: %w", err)
				}
			}
		}

		eng := func(s string) *string { return &s }
		ingredients := []gormModels.IngredientModel{
			{IngredientName: "ข้าวหอมมะลิ", IngredientNameEng: eng("jasmine rice")},
			{IngredientName: "อกไก่", IngredientNameEng: eng("chicken breast")},
			{IngredientName: "กะหล่ำปลี", IngredientNameEng: eng("cabbage")},
			{IngredientName: "ขิง"},
		}
		if err := tx.Create(&ingredients).Error; err != nil {
			return fmt.Errorf("failed to create ingredients: %w", err)
		}

		return nil
	})
}
