package handlers

import (
	"errors"
	"log"

	"recipebox/internal/middleware"
	"recipebox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles HTTP requests for tags and ingredients.
type CatalogHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the tag and ingredient routes. The router is
// expected to already require authentication.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/tags", h.HandleListTags)
	router.Post("/tags", h.HandleCreateTag)
	router.Get("/ingredients", h.HandleListIngredients)
	router.Post("/ingredients", h.HandleCreateIngredient)
}

// CreateCatalogItemRequest represents the request body for creating a tag or
// an ingredient.
type CreateCatalogItemRequest struct {
	Name string `json:"name" validate:"required"`
}

// HandleListTags lists the caller's tags. With assigned_only=1 only tags
// linked by at least one of the caller's recipes are returned.
func (h *CatalogHandler) HandleListTags(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	assignedOnly := c.QueryBool("assigned_only")

	tags, err := h.service.ListTags(user, assignedOnly)
	if err != nil {
		log.Printf("Error listing tags for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve tags",
		})
	}
	return c.JSON(tags)
}

// HandleCreateTag creates a tag owned by the caller.
func (h *CatalogHandler) HandleCreateTag(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req CreateCatalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create tag request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	tag, err := h.service.CreateTag(user, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrEmptyName) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid tag",
				"error":   err.Error(),
			})
		}
		log.Printf("Error creating tag for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create tag",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}

// HandleListIngredients lists the caller's ingredients, honoring
// assigned_only like the tag listing.
func (h *CatalogHandler) HandleListIngredients(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	assignedOnly := c.QueryBool("assigned_only")

	ingredients, err := h.service.ListIngredients(user, assignedOnly)
	if err != nil {
		log.Printf("Error listing ingredients for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve ingredients",
		})
	}
	return c.JSON(ingredients)
}

// HandleCreateIngredient creates an ingredient owned by the caller.
func (h *CatalogHandler) HandleCreateIngredient(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req CreateCatalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create ingredient request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	ingredient, err := h.service.CreateIngredient(user, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrEmptyName) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid ingredient",
				"error":   err.Error(),
			})
		}
		log.Printf("Error creating ingredient for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create ingredient",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(ingredient)
}
