package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"recipebox/internal/handlers"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/repositories"
	"recipebox/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over a fresh in-memory SQLite database with
// the same wiring main.go uses, minus the message broker.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
	))

	userRepo := repositories.NewGORMUserRepository(db)
	tokenRepo := repositories.NewGORMTokenRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	ingredientRepo := repositories.NewGORMIngredientRepository(db)
	recipeRepo := repositories.NewGORMRecipeRepository(db)

	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, tokenRepo)
	catalogService := services.NewCatalogService(tagRepo, ingredientRepo)
	recipeService := services.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, nil)

	userHandler := handlers.NewUserHandler(userService, authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	userHandler.RegisterRoutes(apiV1)

	recipeGroup := apiV1.Group("/recipe", middleware.TokenRequired(authService))
	catalogHandler.RegisterRoutes(recipeGroup)
	recipeHandler.RegisterRoutes(recipeGroup)

	return app
}

// TestMain suppresses handler logging for cleaner test output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doRequest(t *testing.T, app *fiber.App, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func registerUser(t *testing.T, app *fiber.App, email, password, name string) {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/v1/users/create", "", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func obtainToken(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/v1/users/token", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tokenResp map[string]string
	decodeJSON(t, resp, &tokenResp)
	require.NotEmpty(t, tokenResp["token"])
	return tokenResp["token"]
}

func TestCreateUser(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/v1/users/create", "", map[string]string{
		"email":    "test@outlook.com",
		"password": "test123",
		"name":     "test",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	decodeJSON(t, resp, &created)
	assert.Equal(t, "test@outlook.com", created["email"])
	assert.Equal(t, "test", created["name"])
	assert.NotContains(t, created, "password")

	// Duplicate email is rejected.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/create", "", map[string]string{
		"email":    "test@outlook.com",
		"password": "test123",
		"name":     "test",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateUserShortPassword(t *testing.T) {
	app := setupApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/v1/users/create", "", map[string]string{
		"email":    "short@outlook.com",
		"password": "ha",
		"name":     "test",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// The account was not persisted: issuing a token for it fails.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/token", "", map[string]string{
		"email":    "short@outlook.com",
		"password": "ha",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateUserEmailNormalized(t *testing.T) {
	app := setupApp(t)

	registerUser(t, app, "Test@OUTLOOK.COM", "test123", "test")

	// The credential check normalizes the same way, so either spelling of
	// the domain authenticates.
	token := obtainToken(t, app, "Test@outlook.com", "test123")
	assert.NotEmpty(t, token)

	// And the normalized address counts as taken.
	resp := doRequest(t, app, http.MethodPost, "/api/v1/users/create", "", map[string]string{
		"email":    "Test@outlook.com",
		"password": "test123",
		"name":     "dupe",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestTokenInvalidCredentials(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "test@outlook.com", "test123", "test")

	readResponse := func(body map[string]string) (int, string) {
		resp := doRequest(t, app, http.MethodPost, "/api/v1/users/token", "", body)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode, string(raw)
	}

	wrongPasswordStatus, wrongPasswordBody := readResponse(map[string]string{
		"email":    "test@outlook.com",
		"password": "wrong",
	})
	unknownEmailStatus, unknownEmailBody := readResponse(map[string]string{
		"email":    "nobody@outlook.com",
		"password": "test123",
	})
	missingPasswordStatus, missingPasswordBody := readResponse(map[string]string{
		"email": "test@outlook.com",
	})

	assert.Equal(t, http.StatusBadRequest, wrongPasswordStatus)
	assert.NotContains(t, wrongPasswordBody, "token")

	// Wrong password, unknown email, and a missing field are response-
	// indistinguishable.
	assert.Equal(t, wrongPasswordStatus, unknownEmailStatus)
	assert.Equal(t, wrongPasswordBody, unknownEmailBody)
	assert.Equal(t, wrongPasswordStatus, missingPasswordStatus)
	assert.Equal(t, wrongPasswordBody, missingPasswordBody)
}

func TestMeEndpoints(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "test@outlook.com", "test123", "test")

	// Unauthenticated access is rejected.
	resp := doRequest(t, app, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	token := obtainToken(t, app, "test@outlook.com", "test123")

	resp = doRequest(t, app, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var me map[string]interface{}
	decodeJSON(t, resp, &me)
	assert.Equal(t, "test@outlook.com", me["email"])
	assert.Equal(t, "test", me["name"])
	// Only the profile fields are exposed.
	assert.Len(t, me, 2)

	// Partial update: new name and password.
	resp = doRequest(t, app, http.MethodPatch, "/api/v1/users/me", token, map[string]string{
		"name":     "new name",
		"password": "newpassword",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &me)
	assert.Equal(t, "new name", me["name"])
	assert.Len(t, me, 2)

	// The new password authenticates; the old one no longer does.
	newToken := obtainToken(t, app, "test@outlook.com", "newpassword")
	assert.NotEmpty(t, newToken)
	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/token", "", map[string]string{
		"email":    "test@outlook.com",
		"password": "test123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// POST is not a supported verb on /users/me.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/me", token, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

func TestLogout(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "test@outlook.com", "test123", "test")
	token := obtainToken(t, app, "test@outlook.com", "test123")

	resp := doRequest(t, app, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/v1/users/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// The revoked token no longer authenticates.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestTagEndpoints(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "test@outlook.com", "test123", "test")
	registerUser(t, app, "other@outlook.com", "test321", "other")
	token := obtainToken(t, app, "test@outlook.com", "test123")
	otherToken := obtainToken(t, app, "other@outlook.com", "test321")

	// Login required.
	resp := doRequest(t, app, http.MethodGet, "/api/v1/recipe/tags", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	for _, name := range []string{"test", "burger"} {
		resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/tags", token, map[string]string{"name": name})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/tags", otherToken, map[string]string{"name": "fruit"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Only the caller's tags come back, reverse-alphabetical.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/tags", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tags []models.Tag
	decodeJSON(t, resp, &tags)
	require.Len(t, tags, 2)
	assert.Equal(t, "test", tags[0].Name)
	assert.Equal(t, "burger", tags[1].Name)

	// Empty name is rejected and persists nothing.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/tags", token, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/tags", token, nil)
	decodeJSON(t, resp, &tags)
	assert.Len(t, tags, 2)
}

func TestTagsAssignedOnly(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "test@outlook.com", "test123", "test")
	token := obtainToken(t, app, "test@outlook.com", "test123")

	var assigned, unassigned models.Tag
	resp := doRequest(t, app, http.MethodPost, "/api/v1/recipe/tags", token, map[string]string{"name": "breakfast"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &assigned)
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/tags", token, map[string]string{"name": "lunch"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &unassigned)

	// Two recipes link the same tag.
	for _, title := range []string{"Eggs on toast", "Eggs benedict"} {
		resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/recipes", token, map[string]interface{}{
			"title":        title,
			"time_minutes": 20,
			"price":        12.0,
			"tag_ids":      []string{assigned.ID},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// The assigned filter returns the linked tag exactly once.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/tags?assigned_only=1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var tags []models.Tag
	decodeJSON(t, resp, &tags)
	require.Len(t, tags, 1)
	assert.Equal(t, "breakfast", tags[0].Name)
}

func TestIngredientEndpointsEndToEnd(t *testing.T) {
	app := setupApp(t)

	// Create user, obtain token, create an ingredient, list it back.
	registerUser(t, app, "test@outlook.com", "test123", "test")
	token := obtainToken(t, app, "test@outlook.com", "test123")

	resp := doRequest(t, app, http.MethodPost, "/api/v1/recipe/ingredients", token, map[string]string{"name": "Carrot"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/ingredients", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var ingredients []models.Ingredient
	decodeJSON(t, resp, &ingredients)

	count := 0
	for _, ingredient := range ingredients {
		if ingredient.Name == "Carrot" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// Empty name rejected.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/ingredients", token, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestIngredientsLimitedToUser(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "test@outlook.com", "test123", "test")
	registerUser(t, app, "test123@outlook.com", "test123", "other")
	token := obtainToken(t, app, "test@outlook.com", "test123")
	otherToken := obtainToken(t, app, "test123@outlook.com", "test123")

	resp := doRequest(t, app, http.MethodPost, "/api/v1/recipe/ingredients", otherToken, map[string]string{"name": "Salt"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/ingredients", token, map[string]string{"name": "Vinegar"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/ingredients", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var ingredients []models.Ingredient
	decodeJSON(t, resp, &ingredients)
	require.Len(t, ingredients, 1)
	assert.Equal(t, "Vinegar", ingredients[0].Name)
}

func TestRecipeCRUD(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "test@outlook.com", "test123", "test")
	token := obtainToken(t, app, "test@outlook.com", "test123")

	var tag models.Tag
	resp := doRequest(t, app, http.MethodPost, "/api/v1/recipe/tags", token, map[string]string{"name": "dessert"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &tag)

	var ingredient models.Ingredient
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/ingredients", token, map[string]string{"name": "Apple"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &ingredient)

	// Create with references.
	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/recipes", token, map[string]interface{}{
		"title":          "Apple crumble",
		"time_minutes":   5,
		"price":          10.0,
		"link":           "http://example.com/crumble",
		"tag_ids":        []string{tag.ID},
		"ingredient_ids": []string{ingredient.ID},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Recipe
	decodeJSON(t, resp, &created)
	require.NotEmpty(t, created.ID)

	// Detail includes the linked objects.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/recipes/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var detail models.Recipe
	decodeJSON(t, resp, &detail)
	require.Len(t, detail.Tags, 1)
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "dessert", detail.Tags[0].Name)
	assert.Equal(t, "Apple", detail.Ingredients[0].Name)

	// List contains it.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/recipes", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var recipes []models.Recipe
	decodeJSON(t, resp, &recipes)
	require.Len(t, recipes, 1)

	// Partial update: title changes, clearing tags, ingredients untouched.
	resp = doRequest(t, app, http.MethodPatch, "/api/v1/recipe/recipes/"+created.ID, token, map[string]interface{}{
		"title":   "Vegan crumble",
		"tag_ids": []string{},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Recipe
	decodeJSON(t, resp, &updated)
	assert.Equal(t, "Vegan crumble", updated.Title)
	assert.Equal(t, 5, updated.TimeMinutes)
	assert.Empty(t, updated.Tags)
	assert.Len(t, updated.Ingredients, 1)

	// Delete, then the recipe is gone.
	resp = doRequest(t, app, http.MethodDelete, "/api/v1/recipe/recipes/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/recipes/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRecipeCrossOwnerAccess(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "test@outlook.com", "test123", "test")
	registerUser(t, app, "other@outlook.com", "test321", "other")
	token := obtainToken(t, app, "test@outlook.com", "test123")
	otherToken := obtainToken(t, app, "other@outlook.com", "test321")

	resp := doRequest(t, app, http.MethodPost, "/api/v1/recipe/recipes", otherToken, map[string]interface{}{
		"title":        "Secret sauce",
		"time_minutes": 5,
		"price":        1.0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var foreign models.Recipe
	decodeJSON(t, resp, &foreign)

	readNotFound := func(method, url string) string {
		resp := doRequest(t, app, method, url, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()
		return string(raw)
	}

	// Someone else's recipe and a nonexistent ID answer identically.
	foreignBody := readNotFound(http.MethodGet, "/api/v1/recipe/recipes/"+foreign.ID)
	absentBody := readNotFound(http.MethodGet, "/api/v1/recipe/recipes/00000000-0000-0000-0000-000000000000")
	assert.Equal(t, absentBody, foreignBody)

	readNotFound(http.MethodDelete, "/api/v1/recipe/recipes/"+foreign.ID)

	// It is still there for its owner.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/recipes/"+foreign.ID, otherToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestRecipeUnknownReference(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "test@outlook.com", "test123", "test")
	registerUser(t, app, "other@outlook.com", "test321", "other")
	token := obtainToken(t, app, "test@outlook.com", "test123")
	otherToken := obtainToken(t, app, "other@outlook.com", "test321")

	// A tag owned by somebody else cannot be referenced.
	var foreignTag models.Tag
	resp := doRequest(t, app, http.MethodPost, "/api/v1/recipe/tags", otherToken, map[string]string{"name": "fruit"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &foreignTag)

	resp = doRequest(t, app, http.MethodPost, "/api/v1/recipe/recipes", token, map[string]interface{}{
		"title":        "Fruit salad",
		"time_minutes": 5,
		"price":        3.0,
		"tag_ids":      []string{foreignTag.ID},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// The rejected recipe must not have been stored.
	resp = doRequest(t, app, http.MethodGet, "/api/v1/recipe/recipes", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var recipes []models.Recipe
	decodeJSON(t, resp, &recipes)
	assert.Empty(t, recipes)
}
