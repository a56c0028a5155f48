package repositories

import "recipebox/internal/models"

// TagRepository defines the interface for tag data access. Every query is
// scoped to the owning user.
type TagRepository interface {
	ListByUser(userID string, assignedOnly bool) ([]models.Tag, error)
	GetByID(userID, id string) (*models.Tag, error)
	Create(tag *models.Tag) error
}

// IngredientRepository defines the interface for ingredient data access.
type IngredientRepository interface {
	ListByUser(userID string, assignedOnly bool) ([]models.Ingredient, error)
	GetByID(userID, id string) (*models.Ingredient, error)
	Create(ingredient *models.Ingredient) error
}
