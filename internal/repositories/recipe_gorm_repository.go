package repositories

import (
	"errors"
	"fmt"

	"recipebox/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{
		db: db,
	}
}

// ListByUser retrieves all recipes owned by the user, newest first, with
// their tag and ingredient sets loaded.
func (r *GORMRecipeRepository) ListByUser(userID string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.Preload("Tags").Preload("Ingredients").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// GetByID retrieves one of the user's recipes by ID.
func (r *GORMRecipeRepository) GetByID(userID, id string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.Preload("Tags").Preload("Ingredients").
		First(&recipe, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recipe by ID %s: %w", id, err)
	}
	return &recipe, nil
}

// Create inserts the recipe row and the link rows for any tags and
// ingredients already set on the struct, in one transaction. The referenced
// tag and ingredient rows themselves are never inserted or updated here.
func (r *GORMRecipeRepository) Create(recipe *models.Recipe) error {
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags.*", "Ingredients.*").Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return nil
	})
}

// Update saves the recipe's fields and replaces its tag and ingredient sets
// with the ones on the struct, all within one transaction.
func (r *GORMRecipeRepository) Update(recipe *models.Recipe) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).
			Where("id = ? AND user_id = ?", recipe.ID, recipe.UserID).
			Updates(map[string]interface{}{
				"title":        recipe.Title,
				"time_minutes": recipe.TimeMinutes,
				"price":        recipe.Price,
				"link":         recipe.Link,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recipe with ID %s: %w", recipe.ID, ErrNotFound)
		}
		if err := tx.Model(recipe).Association("Tags").Replace(recipe.Tags); err != nil {
			return fmt.Errorf("failed to replace recipe tags: %w", err)
		}
		if err := tx.Model(recipe).Association("Ingredients").Replace(recipe.Ingredients); err != nil {
			return fmt.Errorf("failed to replace recipe ingredients: %w", err)
		}
		return nil
	})
}

// Delete removes one of the user's recipes along with its association rows.
func (r *GORMRecipeRepository) Delete(userID, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("recipe with ID %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to get recipe for deletion: %w", err)
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear recipe tags: %w", err)
		}
		if err := tx.Model(&recipe).Association("Ingredients").Clear(); err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		if err := tx.Delete(&recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
}

// AddTag links a tag to the recipe. The join table's composite key makes the
// insert an upsert, so adding the same tag twice has no further effect.
func (r *GORMRecipeRepository) AddTag(recipe *models.Recipe, tag *models.Tag) error {
	if err := r.db.Model(recipe).Association("Tags").Append(tag); err != nil {
		return fmt.Errorf("failed to add tag to recipe: %w", err)
	}
	return nil
}

// AddIngredient links an ingredient to the recipe, idempotently.
func (r *GORMRecipeRepository) AddIngredient(recipe *models.Recipe, ingredient *models.Ingredient) error {
	if err := r.db.Model(recipe).Association("Ingredients").Append(ingredient); err != nil {
		return fmt.Errorf("failed to add ingredient to recipe: %w", err)
	}
	return nil
}
