package services

import (
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/repositories"
)

// CatalogService handles business logic for tags and ingredients. Every
// operation is scoped to the calling user.
type CatalogService struct {
	tagRepo        repositories.TagRepository
	ingredientRepo repositories.IngredientRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(tagRepo repositories.TagRepository, ingredientRepo repositories.IngredientRepository) *CatalogService {
	return &CatalogService{
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
	}
}

// ListTags returns the user's tags, reverse-alphabetical. With assignedOnly
// only tags linked from at least one of the user's recipes are returned,
// each exactly once.
func (s *CatalogService) ListTags(user *models.User, assignedOnly bool) ([]models.Tag, error) {
	return s.tagRepo.ListByUser(user.ID, assignedOnly)
}

// CreateTag creates a tag owned by the user. Blank names are rejected.
func (s *CatalogService) CreateTag(user *models.User, name string) (*models.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	tag := &models.Tag{
		UserID: user.ID,
		Name:   name,
	}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// ListIngredients returns the user's ingredients, reverse-alphabetical,
// optionally restricted to those assigned to the user's recipes.
func (s *CatalogService) ListIngredients(user *models.User, assignedOnly bool) ([]models.Ingredient, error) {
	return s.ingredientRepo.ListByUser(user.ID, assignedOnly)
}

// CreateIngredient creates an ingredient owned by the user.
func (s *CatalogService) CreateIngredient(user *models.User, name string) (*models.Ingredient, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	ingredient := &models.Ingredient{
		UserID: user.ID,
		Name:   name,
	}
	if err := s.ingredientRepo.Create(ingredient); err != nil {
		return nil, err
	}
	return ingredient, nil
}
