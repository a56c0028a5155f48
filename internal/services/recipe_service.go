package services

import (
	"encoding/json"
	"errors"
	"log"

	"recipebox/internal/models"
	"recipebox/internal/repositories"
	"recipebox/pkg/rabbitmq"
)

// RecipeService handles business logic for recipes, including resolving the
// tag and ingredient references a recipe links to. All lookups are scoped to
// the calling user.
type RecipeService struct {
	recipeRepo     repositories.RecipeRepository
	tagRepo        repositories.TagRepository
	ingredientRepo repositories.IngredientRepository
	mqClient       *rabbitmq.Client
}

// NewRecipeService creates a new RecipeService. mqClient may be nil, in
// which case lifecycle events are not published.
func NewRecipeService(recipeRepo repositories.RecipeRepository, tagRepo repositories.TagRepository, ingredientRepo repositories.IngredientRepository, mqClient *rabbitmq.Client) *RecipeService {
	return &RecipeService{
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		mqClient:       mqClient,
	}
}

// RecipeInput carries the fields for creating a recipe. TagIDs and
// IngredientIDs must reference rows owned by the same user.
type RecipeInput struct {
	Title         string
	TimeMinutes   int
	Price         float64
	Link          string
	TagIDs        []string
	IngredientIDs []string
}

// RecipeUpdate carries a partial update; nil fields are left unchanged.
type RecipeUpdate struct {
	Title         *string
	TimeMinutes   *int
	Price         *float64
	Link          *string
	TagIDs        *[]string
	IngredientIDs *[]string
}

// ListRecipes returns all recipes owned by the user.
func (s *RecipeService) ListRecipes(user *models.User) ([]models.Recipe, error) {
	return s.recipeRepo.ListByUser(user.ID)
}

// GetRecipe returns one of the user's recipes. A recipe owned by another
// user yields the same not-found error as a nonexistent ID.
func (s *RecipeService) GetRecipe(user *models.User, id string) (*models.Recipe, error) {
	return s.recipeRepo.GetByID(user.ID, id)
}

// CreateRecipe creates a recipe owned by the user together with its tag and
// ingredient links. All references are resolved up front, so a reference to
// a row the user does not own fails with ErrUnknownReference before anything
// is written; the insert itself is atomic and leaves no recipe row behind on
// failure.
func (s *RecipeService) CreateRecipe(user *models.User, input RecipeInput) (*models.Recipe, error) {
	tags, err := s.resolveTags(user, input.TagIDs)
	if err != nil {
		return nil, err
	}
	ingredients, err := s.resolveIngredients(user, input.IngredientIDs)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		UserID:      user.ID,
		Title:       input.Title,
		TimeMinutes: input.TimeMinutes,
		Price:       input.Price,
		Link:        input.Link,
		Tags:        tags,
		Ingredients: ingredients,
	}
	if err := s.recipeRepo.Create(recipe); err != nil {
		return nil, err
	}

	s.publishEvent("recipe.created", recipe)
	return recipe, nil
}

// UpdateRecipe applies a partial update to one of the user's recipes. When
// TagIDs or IngredientIDs are present the corresponding link set is replaced
// wholesale; otherwise it is kept.
func (s *RecipeService) UpdateRecipe(user *models.User, id string, update RecipeUpdate) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(user.ID, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		recipe.Title = *update.Title
	}
	if update.TimeMinutes != nil {
		recipe.TimeMinutes = *update.TimeMinutes
	}
	if update.Price != nil {
		recipe.Price = *update.Price
	}
	if update.Link != nil {
		recipe.Link = *update.Link
	}
	if update.TagIDs != nil {
		tags, err := s.resolveTags(user, *update.TagIDs)
		if err != nil {
			return nil, err
		}
		recipe.Tags = tags
	}
	if update.IngredientIDs != nil {
		ingredients, err := s.resolveIngredients(user, *update.IngredientIDs)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = ingredients
	}

	if err := s.recipeRepo.Update(recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// DeleteRecipe removes one of the user's recipes.
func (s *RecipeService) DeleteRecipe(user *models.User, id string) error {
	if err := s.recipeRepo.Delete(user.ID, id); err != nil {
		return err
	}
	s.publishEvent("recipe.deleted", &models.Recipe{ID: id, UserID: user.ID})
	return nil
}

// AddTag links one of the user's tags to the recipe. Adding the same tag
// twice has no additional effect.
func (s *RecipeService) AddTag(user *models.User, recipe *models.Recipe, tagID string) error {
	tag, err := s.tagRepo.GetByID(user.ID, tagID)
	if err != nil {
		return unknownReference(err)
	}
	return s.recipeRepo.AddTag(recipe, tag)
}

// AddIngredient links one of the user's ingredients to the recipe,
// idempotently.
func (s *RecipeService) AddIngredient(user *models.User, recipe *models.Recipe, ingredientID string) error {
	ingredient, err := s.ingredientRepo.GetByID(user.ID, ingredientID)
	if err != nil {
		return unknownReference(err)
	}
	return s.recipeRepo.AddIngredient(recipe, ingredient)
}

// resolveTags loads the user's tags for the given IDs, failing with
// ErrUnknownReference on any ID the user does not own.
func (s *RecipeService) resolveTags(user *models.User, ids []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		tag, err := s.tagRepo.GetByID(user.ID, id)
		if err != nil {
			return nil, unknownReference(err)
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// resolveIngredients is the ingredient counterpart of resolveTags.
func (s *RecipeService) resolveIngredients(user *models.User, ids []string) ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, 0, len(ids))
	for _, id := range ids {
		ingredient, err := s.ingredientRepo.GetByID(user.ID, id)
		if err != nil {
			return nil, unknownReference(err)
		}
		ingredients = append(ingredients, *ingredient)
	}
	return ingredients, nil
}

// unknownReference converts a not-found lookup of a referenced tag or
// ingredient into ErrUnknownReference so handlers report it as a validation
// failure rather than a missing recipe.
func unknownReference(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUnknownReference
	}
	return err
}

// publishEvent emits a recipe lifecycle event when a message broker is
// configured. Publish failures are logged, never surfaced to the caller.
func (s *RecipeService) publishEvent(routingKey string, recipe *models.Recipe) {
	if s.mqClient == nil {
		return
	}
	message := map[string]interface{}{
		"recipeID": recipe.ID,
		"userID":   recipe.UserID,
		"title":    recipe.Title,
	}
	body, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal recipe event: %v", err)
		return
	}
	if err := s.mqClient.Publish("recipe", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event for recipe %s: %v", routingKey, recipe.ID, err)
	} else {
		log.Printf("Published %s event for recipe %s", routingKey, recipe.ID)
	}
}
