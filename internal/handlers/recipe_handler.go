package handlers

import (
	"errors"
	"log"

	"recipebox/internal/middleware"
	"recipebox/internal/repositories"
	"recipebox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RecipeHandler handles HTTP requests for recipes.
type RecipeHandler struct {
	service  *services.RecipeService
	validate *validator.Validate
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(service *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the recipe routes. The router is expected to
// already require authentication.
func (h *RecipeHandler) RegisterRoutes(router fiber.Router) {
	recipeRoutes := router.Group("/recipes")
	recipeRoutes.Get("/", h.HandleListRecipes)
	recipeRoutes.Post("/", h.HandleCreateRecipe)
	recipeRoutes.Get("/:id", h.HandleGetRecipe)
	recipeRoutes.Patch("/:id", h.HandleUpdateRecipe)
	recipeRoutes.Delete("/:id", h.HandleDeleteRecipe)
}

// CreateRecipeRequest represents the request body for creating a recipe.
type CreateRecipeRequest struct {
	Title         string   `json:"title" validate:"required,max=255"`
	TimeMinutes   int      `json:"time_minutes" validate:"gte=0"`
	Price         float64  `json:"price" validate:"gte=0"`
	Link          string   `json:"link" validate:"omitempty,max=255"`
	TagIDs        []string `json:"tag_ids" validate:"dive,uuid"`
	IngredientIDs []string `json:"ingredient_ids" validate:"dive,uuid"`
}

// UpdateRecipeRequest represents a partial recipe update; absent fields are
// left unchanged, present ID lists replace the link set wholesale.
type UpdateRecipeRequest struct {
	Title         *string   `json:"title" validate:"omitempty,max=255"`
	TimeMinutes   *int      `json:"time_minutes" validate:"omitempty,gte=0"`
	Price         *float64  `json:"price" validate:"omitempty,gte=0"`
	Link          *string   `json:"link" validate:"omitempty,max=255"`
	TagIDs        *[]string `json:"tag_ids" validate:"omitempty,dive,uuid"`
	IngredientIDs *[]string `json:"ingredient_ids" validate:"omitempty,dive,uuid"`
}

// HandleListRecipes lists the caller's recipes.
func (h *RecipeHandler) HandleListRecipes(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	recipes, err := h.service.ListRecipes(user)
	if err != nil {
		log.Printf("Error listing recipes for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve recipes",
		})
	}
	return c.JSON(recipes)
}

// HandleGetRecipe returns one of the caller's recipes. Someone else's
// recipe produces the same 404 as an ID that does not exist.
func (h *RecipeHandler) HandleGetRecipe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	recipeID := c.Params("id")

	recipe, err := h.service.GetRecipe(user, recipeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Recipe not found",
			})
		}
		log.Printf("Error getting recipe %s: %v", recipeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve recipe",
		})
	}
	return c.JSON(recipe)
}

// HandleCreateRecipe creates a recipe owned by the caller. Referencing a tag
// or ingredient the caller does not own is a validation failure.
func (h *RecipeHandler) HandleCreateRecipe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req CreateRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create recipe request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	recipe, err := h.service.CreateRecipe(user, services.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	})
	if err != nil {
		if errors.Is(err, services.ErrUnknownReference) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid recipe",
				"error":   err.Error(),
			})
		}
		log.Printf("Error creating recipe for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create recipe",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// HandleUpdateRecipe applies a partial update to one of the caller's
// recipes.
func (h *RecipeHandler) HandleUpdateRecipe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	recipeID := c.Params("id")

	var req UpdateRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update recipe request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	recipe, err := h.service.UpdateRecipe(user, recipeID, services.RecipeUpdate{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	})
	if err != nil {
		if errors.Is(err, services.ErrUnknownReference) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid recipe",
				"error":   err.Error(),
			})
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Recipe not found",
			})
		}
		log.Printf("Error updating recipe %s: %v", recipeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update recipe",
		})
	}
	return c.JSON(recipe)
}

// HandleDeleteRecipe removes one of the caller's recipes.
func (h *RecipeHandler) HandleDeleteRecipe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	recipeID := c.Params("id")

	if err := h.service.DeleteRecipe(user, recipeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Recipe not found",
			})
		}
		log.Printf("Error deleting recipe %s: %v", recipeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete recipe",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
