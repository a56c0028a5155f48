package repositories

import "recipebox/internal/models"

// RecipeRepository defines the interface for recipe data access. Lookups by
// ID are always scoped to the owning user; a recipe owned by someone else is
// indistinguishable from one that does not exist.
type RecipeRepository interface {
	ListByUser(userID string) ([]models.Recipe, error)
	GetByID(userID, id string) (*models.Recipe, error)
	Create(recipe *models.Recipe) error
	Update(recipe *models.Recipe) error
	Delete(userID, id string) error
	AddTag(recipe *models.Recipe, tag *models.Tag) error
	AddIngredient(recipe *models.Recipe, ingredient *models.Ingredient) error
}
