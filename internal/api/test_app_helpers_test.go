package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/dailyglow/internal/db"
	"github.com/terraincognita07/dailyglow/internal/services"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret-key-with-at-least-32-chars"

type testApp struct {
	app      *fiber.App
	handler  *Handler
	sessions *services.SessionRegistry
}

func newTestApp(t *testing.T, options Options) testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "dailyglow-api-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	_, err = db.SeedCatalog(context.Background(), database, db.Catalog{
		Achievements: services.DefaultAchievements,
		Badges:       services.DefaultBadges,
		Challenges:   services.DefaultChallenges,
	})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	sessions := services.NewSessionRegistry(services.SessionDeps{
		Store:    db.NewStore(database, time.UTC, services.DefaultDailyChallengeLimit),
		Metrics:  services.NewMetrics(registry),
		Location: time.UTC,
	})

	options.SecretKey = []byte(testSecret)
	if options.Registerer == nil {
		options.Registerer = registry
		options.Gatherer = registry
	}
	handler, err := NewHandler(sessions, options)
	require.NoError(t, err)

	app := fiber.New()
	RegisterRoutes(app, handler)
	return testApp{app: app, handler: handler, sessions: sessions}
}

func bearerFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := SignAccessToken([]byte(testSecret), userID, time.Now(), time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (fixture testApp) do(t *testing.T, method string, path string, authorization string, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		request.Header.Set("Authorization", authorization)
	}
	response, err := fixture.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { _ = response.Body.Close() })
	return response
}

func decodeBody(t *testing.T, response *http.Response, target any) {
	t.Helper()
	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(payload, target); err != nil {
		t.Fatalf("decode response body %q: %v", payload, err)
	}
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()
	payload := map[string]any{}
	decodeBody(t, response, &payload)
	message, _ := payload["error"].(string)
	return message
}

func unlimited() Options {
	return Options{RateLimit: rate.Inf}
}
