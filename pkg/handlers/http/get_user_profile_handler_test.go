package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/SentriLabs/SentriAuth/pkg/domain/profile"
	"github.com/SentriLabs/SentriAuth/pkg/infra/repository"
	"github.com/SentriLabs/SentriAuth/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserProfileHandler(t *testing.T) {
	profiles := repository.NewMemoryProfileRepository(nil)
	_, err := profiles.GetOrCreate(context.Background(), "alice@example.com")
	require.NoError(t, err)

	handler := NewGetUserProfileHandler(testLogger(), profiles)
	app := fiber.New()
	app.Get("/api/v1/profiles/:email", handler.Handle)

	t.Run("existing profile", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/profiles/alice@example.com", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var prof profile.UserSecurityProfile
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&prof))
		assert.Equal(t, "alice@example.com", prof.Email)
	})

	t.Run("unknown profile", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/profiles/nobody@example.com", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestGetVersionHandler(t *testing.T) {
	handler := NewGetVersionHandler(testLogger())
	app := fiber.New()
	app.Get("/api/v1/version", handler.Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/version", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var info version.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, version.AppName, info.AppName)
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
