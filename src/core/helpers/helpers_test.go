package helpers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Camier/searxng-convivial-instance/src/core/apperr"
)

func performRequest(t *testing.T, handler fiber.Handler) (int, map[string]interface{}) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestHandleSuccess(t *testing.T) {
	status, body := performRequest(t, func(c *fiber.Ctx) error {
		return HandleSuccess(c, fiber.StatusOK, "All good", fiber.Map{"value": 42})
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "All good", body["message"])
	assert.Nil(t, body["error"])
}

func TestHandleErrorNilError(t *testing.T) {
	status, body := performRequest(t, func(c *fiber.Ctx) error {
		return HandleError(c, fiber.StatusBadRequest, "Bad input", nil)
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error", body["status"])
	assert.Nil(t, body["error"])
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", goerr.Wrap(apperr.ErrNotFound, "no such gift"), http.StatusNotFound},
		{"forbidden", goerr.Wrap(apperr.ErrForbidden, "not yours"), http.StatusForbidden},
		{"rate limited", goerr.Wrap(apperr.ErrRateLimited, "already shaken"), http.StatusTooManyRequests},
		{"validation", goerr.Wrap(apperr.ErrValidation, "bad delay"), http.StatusUnprocessableEntity},
		{"storage", goerr.Wrap(apperr.ErrStorageUnavailable, "redis down"), http.StatusServiceUnavailable},
		{"unknown", goerr.New("something else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := performRequest(t, func(c *fiber.Ctx) error {
				return HandleServiceError(c, tt.err)
			})
			assert.Equal(t, tt.want, status)
			assert.Equal(t, "error", body["status"])
			assert.NotNil(t, body["error"])
		})
	}
}
