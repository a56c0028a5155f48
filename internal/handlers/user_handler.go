package handlers

import (
	"errors"
	"fmt"
	"log"

	"recipebox/internal/middleware"
	"recipebox/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for accounts and tokens.
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes. Account creation and token
// issuance are public; the me endpoints require a bearer token.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/create", h.HandleCreate)
	userRoutes.Post("/token", h.HandleCreateToken)

	tokenRequired := middleware.TokenRequired(h.authService)
	userRoutes.Get("/me", tokenRequired, h.HandleGetMe)
	userRoutes.Patch("/me", tokenRequired, h.HandleUpdateMe)
	userRoutes.Post("/logout", tokenRequired, h.HandleLogout)
}

// CreateUserRequest represents the request body for account creation.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"max=255"`
}

// HandleCreate handles new account registration.
func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create user request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	user, err := h.userService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrMissingEmail) ||
			errors.Is(err, services.ErrEmailTaken) ||
			errors.Is(err, services.ErrPasswordTooShort) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		log.Printf("Error registering user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// TokenRequest represents the request body for token issuance.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleCreateToken issues a bearer token for valid credentials. Unknown
// email, wrong password, and missing fields all produce the same response.
func (h *UserHandler) HandleCreateToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing token request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	token, err := h.authService.IssueToken(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Unable to authenticate with provided credentials",
			})
		}
		log.Printf("Error issuing token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not issue token",
		})
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}

// ProfileResponse is the body of the me endpoints. It carries only the
// fields a user may see and edit about themselves.
type ProfileResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleGetMe returns the authenticated user's profile.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(ProfileResponse{Email: user.Email, Name: user.Name})
}

// UpdateMeRequest represents a partial profile update; absent fields are
// left unchanged.
type UpdateMeRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// HandleUpdateMe applies a partial update to the authenticated user.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update profile request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.userService.UpdateProfile(user, req.Name, req.Password); err != nil {
		if errors.Is(err, services.ErrPasswordTooShort) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Profile update failed",
				"error":   err.Error(),
			})
		}
		log.Printf("Error updating profile for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update profile",
		})
	}

	return c.JSON(ProfileResponse{Email: user.Email, Name: user.Name})
}

// HandleLogout revokes the bearer token used on this request.
func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.RevokeToken(middleware.CurrentTokenKey(c)); err != nil {
		log.Printf("Error revoking token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not revoke token",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// validationErrorResponse converts validator errors into a 400 response with
// one message per failed field.
func validationErrorResponse(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
