package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/pos-backend/internal/domain/entity"
	apphttp "github.com/openretail/pos-backend/internal/interfaces/http"
	pkgjwt "github.com/openretail/pos-backend/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "pos-backend-test"
	testExpMin    = 60
)

// buildTestApp mounts a dummy route behind AuthMiddleware and RequireRole.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":   apphttp.GetUserID(c),
				"full_name": apphttp.GetFullName(c),
				"role":      apphttp.GetRole(c),
			})
		},
	)
	return app
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "Luis Perez", role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	_ = json.Unmarshal(body, &parsed)
	return resp, parsed
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	app := buildTestApp(entity.RoleCashier)
	resp, body := doRequest(t, app, tokenForRole(t, entity.RoleCashier))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "Luis Perez", body["full_name"])
	assert.Equal(t, entity.RoleCashier, body["role"])
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	app := buildTestApp(entity.RoleCashier)
	resp, body := doRequest(t, app, "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	app := buildTestApp(entity.RoleCashier)
	for _, header := range []string{"Token abc", "Bearer", "Bearer "} {
		resp, _ := doRequest(t, app, header)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header %q", header)
	}
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	app := buildTestApp(entity.RoleCashier)
	tok, err := pkgjwt.Generate("another-secret", testUserID, "x", entity.RoleCashier, testIssuer, testExpMin)
	require.NoError(t, err)

	resp, body := doRequest(t, app, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestRequireRoleAllowsListedRoles(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin, entity.RoleManager)

	for _, role := range []string{entity.RoleAdmin, entity.RoleManager} {
		resp, _ := doRequest(t, app, tokenForRole(t, role))
		assert.Equal(t, http.StatusOK, resp.StatusCode, "role %s", role)
	}
}

func TestRequireRoleRejectsCashier(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin, entity.RoleManager)
	resp, body := doRequest(t, app, tokenForRole(t, entity.RoleCashier))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])
}
