package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/dailyglow/internal/models"
	"github.com/terraincognita07/dailyglow/internal/services"
)

func TestHealthIsPublic(t *testing.T) {
	fixture := newTestApp(t, unlimited())

	response := fixture.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, response.StatusCode)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	fixture := newTestApp(t, unlimited())
	userID := uuid.New()

	expired, err := SignAccessToken([]byte(testSecret), userID, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	foreign, err := SignAccessToken([]byte("another-secret-that-is-long-enough!!"), userID, time.Now(), time.Hour)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
	}{
		{name: "missing", authorization: ""},
		{name: "wrong scheme", authorization: "Basic abc"},
		{name: "expired", authorization: "Bearer " + expired},
		{name: "foreign signature", authorization: "Bearer " + foreign},
		{name: "no subject", authorization: "Bearer " + noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := fixture.do(t, http.MethodGet, "/api/session", tt.authorization, "")
			assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
			assert.Equal(t, "unauthorized", readAPIError(t, response))
		})
	}
}

func TestCheckInReturnsStreakUpdateAndUnlocks(t *testing.T) {
	fixture := newTestApp(t, unlimited())
	auth := bearerFor(t, uuid.New())

	response := fixture.do(t, http.MethodPost, "/api/check-ins", auth, `{"period":"morning"}`)
	require.Equal(t, http.StatusOK, response.StatusCode)

	var result services.CheckInResult
	decodeBody(t, response, &result)
	assert.Equal(t, models.PeriodMorning, result.Update.Period)
	assert.True(t, result.Update.Changed)
	assert.True(t, result.Update.IsFirstCheckIn)
	assert.Equal(t, 1, result.Update.Streaks.Morning)
	assert.Equal(t, 1, result.Stats.TotalEntries)

	unlockedIDs := make([]string, 0, len(result.Unlocked))
	for _, unlock := range result.Unlocked {
		unlockedIDs = append(unlockedIDs, unlock.ID)
	}
	assert.Contains(t, unlockedIDs, "first-glow")

	second := fixture.do(t, http.MethodPost, "/api/check-ins", auth, `{"period":"morning"}`)
	require.Equal(t, http.StatusOK, second.StatusCode)
	var repeat services.CheckInResult
	decodeBody(t, second, &repeat)
	assert.False(t, repeat.Update.Changed)
	assert.Empty(t, repeat.Unlocked)
}

func TestCheckInWithoutBodyUsesCurrentPeriod(t *testing.T) {
	fixture := newTestApp(t, unlimited())

	response := fixture.do(t, http.MethodPost, "/api/check-ins", bearerFor(t, uuid.New()), "")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var result services.CheckInResult
	decodeBody(t, response, &result)
	assert.Equal(t, services.CurrentPeriod(time.Now(), time.UTC), result.Update.Period)
}

func TestCheckInRejectsUnknownPeriod(t *testing.T) {
	fixture := newTestApp(t, unlimited())

	response := fixture.do(t, http.MethodPost, "/api/check-ins", bearerFor(t, uuid.New()), `{"period":"midnight"}`)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	assert.Equal(t, "invalid period", readAPIError(t, response))
}

func dailyChallengeID(t *testing.T, fixture testApp, auth string) uuid.UUID {
	t.Helper()
	response := fixture.do(t, http.MethodGet, "/api/challenges/daily", auth, "")
	require.Equal(t, http.StatusOK, response.StatusCode)

	var payload struct {
		Challenge *models.Challenge `json:"challenge"`
	}
	decodeBody(t, response, &payload)
	require.NotNil(t, payload.Challenge)
	return payload.Challenge.ID
}

func TestCompleteChallengeRejectsShortResponse(t *testing.T) {
	fixture := newTestApp(t, unlimited())
	auth := bearerFor(t, uuid.New())
	challengeID := dailyChallengeID(t, fixture, auth)

	response := fixture.do(t, http.MethodPost, "/api/challenges/"+challengeID.String()+"/complete", auth, `{"response":"  ok  "}`)
	require.Equal(t, http.StatusUnprocessableEntity, response.StatusCode)

	payload := map[string]any{}
	decodeBody(t, response, &payload)
	assert.Equal(t, "response too short", payload["error"])
	assert.EqualValues(t, 2, payload["length"])
	assert.NotZero(t, payload["min_length"])
}

func TestCompleteChallengeAwardsPointsAndEnforcesDailyLimit(t *testing.T) {
	fixture := newTestApp(t, unlimited())
	auth := bearerFor(t, uuid.New())
	answer := `{"response":"A long and thoughtful reflection on the day so far."}`

	completed := map[uuid.UUID]bool{}
	for attempt := 0; attempt < services.DefaultDailyChallengeLimit; attempt++ {
		challengeID := dailyChallengeID(t, fixture, auth)
		require.False(t, completed[challengeID], "daily pick repeated a completed challenge")
		response := fixture.do(t, http.MethodPost, "/api/challenges/"+challengeID.String()+"/complete", auth, answer)
		require.Equal(t, http.StatusOK, response.StatusCode, "attempt %d", attempt)

		var outcome services.CompletionOutcome
		decodeBody(t, response, &outcome)
		assert.Equal(t, challengeID, outcome.Challenge.ID)
		assert.Positive(t, outcome.TotalPoints)
		assert.Equal(t, attempt+1, outcome.CompletedToday)
		completed[challengeID] = true

		refresh := fixture.do(t, http.MethodPost, "/api/challenges/daily/refresh", auth, "")
		require.Equal(t, http.StatusOK, refresh.StatusCode)
	}

	var extra uuid.UUID
	for _, challenge := range services.DefaultChallenges {
		if !completed[challenge.ID] {
			extra = challenge.ID
			break
		}
	}

	response := fixture.do(t, http.MethodPost, "/api/challenges/"+extra.String()+"/complete", auth, answer)
	require.Equal(t, http.StatusConflict, response.StatusCode)
	payload := map[string]any{}
	decodeBody(t, response, &payload)
	assert.Equal(t, true, payload["limit_reached"])
}

func TestCompleteUnknownChallenge(t *testing.T) {
	fixture := newTestApp(t, unlimited())
	auth := bearerFor(t, uuid.New())

	response := fixture.do(t, http.MethodPost, "/api/challenges/"+uuid.NewString()+"/complete", auth, `{"response":"A long and thoughtful reflection."}`)
	assert.Equal(t, http.StatusNotFound, response.StatusCode)

	malformed := fixture.do(t, http.MethodPost, "/api/challenges/not-a-uuid/complete", auth, `{"response":"A long and thoughtful reflection."}`)
	assert.Equal(t, http.StatusNotFound, malformed.StatusCode)
}

func TestSessionSnapshotAndCatalogViews(t *testing.T) {
	fixture := newTestApp(t, unlimited())
	userID := uuid.New()
	auth := bearerFor(t, userID)
	fixture.do(t, http.MethodPost, "/api/check-ins", auth, `{"period":"evening"}`)

	response := fixture.do(t, http.MethodGet, "/api/session", auth, "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	var snapshot services.SessionSnapshot
	decodeBody(t, response, &snapshot)
	assert.Equal(t, userID, snapshot.UserID)
	assert.Equal(t, 1, snapshot.Streaks.Evening)
	assert.Equal(t, 1, snapshot.OverallStreak)
	assert.Contains(t, snapshot.UnlockedAchievementIDs, "first-glow")
	assert.Equal(t, services.DefaultDailyChallengeLimit, snapshot.DailyChallengeLimit)

	achievements := fixture.do(t, http.MethodGet, "/api/achievements", auth, "")
	require.Equal(t, http.StatusOK, achievements.StatusCode)
	var achievementPayload struct {
		Achievements []services.AchievementView `json:"achievements"`
	}
	decodeBody(t, achievements, &achievementPayload)
	assert.Len(t, achievementPayload.Achievements, len(services.DefaultAchievements))

	badges := fixture.do(t, http.MethodGet, "/api/badges", auth, "")
	require.Equal(t, http.StatusOK, badges.StatusCode)
	var badgePayload struct {
		Badges []services.BadgeView `json:"badges"`
	}
	decodeBody(t, badges, &badgePayload)
	require.Len(t, badgePayload.Badges, len(services.DefaultBadges))
	for _, badge := range badgePayload.Badges {
		assert.NotEmpty(t, badge.Style.Color, badge.ID)
		assert.False(t, badge.Unlocked, badge.ID)
	}
}

func TestReconcileSessionReloadsStoredState(t *testing.T) {
	fixture := newTestApp(t, unlimited())
	userID := uuid.New()
	auth := bearerFor(t, userID)
	fixture.do(t, http.MethodPost, "/api/check-ins", auth, `{"period":"morning"}`)

	response := fixture.do(t, http.MethodPost, "/api/session/reconcile", auth, "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	var snapshot services.SessionSnapshot
	decodeBody(t, response, &snapshot)
	assert.Equal(t, 1, snapshot.Streaks.Morning)
	assert.False(t, snapshot.StreakPending)
	assert.Contains(t, snapshot.UnlockedAchievementIDs, "first-glow")

	unauthorized := fixture.do(t, http.MethodPost, "/api/session/reconcile", "", "")
	assert.Equal(t, http.StatusUnauthorized, unauthorized.StatusCode)
}

func TestUpdateProfile(t *testing.T) {
	fixture := newTestApp(t, unlimited())
	auth := bearerFor(t, uuid.New())

	response := fixture.do(t, http.MethodPatch, "/api/profile", auth, `{"display_name":"Mira","timezone":"Asia/Tokyo","push_token":"device-1","push_platform":"ios"}`)
	require.Equal(t, http.StatusOK, response.StatusCode)
	payload := map[string]any{}
	decodeBody(t, response, &payload)
	assert.Equal(t, "Mira", payload["display_name"])
	assert.Equal(t, "Asia/Tokyo", payload["timezone"])
	assert.Equal(t, true, payload["push_registered"])
	assert.NotContains(t, payload, "push_token")

	snapshot := fixture.do(t, http.MethodGet, "/api/session", auth, "")
	var state services.SessionSnapshot
	decodeBody(t, snapshot, &state)
	assert.Equal(t, "Asia/Tokyo", state.Timezone)

	invalid := fixture.do(t, http.MethodPatch, "/api/profile", auth, `{"timezone":"Mars/Olympus"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, invalid.StatusCode)
}

func TestMutatingEndpointsAreRateLimitedPerUser(t *testing.T) {
	fixture := newTestApp(t, Options{RateLimit: 0.001, RateBurst: 2})
	auth := bearerFor(t, uuid.New())

	for attempt := 0; attempt < 2; attempt++ {
		response := fixture.do(t, http.MethodPost, "/api/check-ins", auth, `{"period":"morning"}`)
		require.Equal(t, http.StatusOK, response.StatusCode)
	}
	limited := fixture.do(t, http.MethodPost, "/api/check-ins", auth, `{"period":"morning"}`)
	assert.Equal(t, http.StatusTooManyRequests, limited.StatusCode)

	other := fixture.do(t, http.MethodPost, "/api/check-ins", bearerFor(t, uuid.New()), `{"period":"morning"}`)
	assert.Equal(t, http.StatusOK, other.StatusCode)

	reads := fixture.do(t, http.MethodGet, "/api/session", auth, "")
	assert.Equal(t, http.StatusOK, reads.StatusCode)
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	fixture := newTestApp(t, unlimited())
	fixture.do(t, http.MethodPost, "/api/check-ins", bearerFor(t, uuid.New()), `{"period":"afternoon"}`)

	response := fixture.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	for _, name := range []string{
		"dailyglow_http_requests_total",
		"dailyglow_check_ins_total",
		fmt.Sprintf(`period=%q`, "afternoon"),
	} {
		assert.True(t, strings.Contains(string(body), name), "expected %s in metrics output", name)
	}
}

func TestUnknownRoute(t *testing.T) {
	fixture := newTestApp(t, unlimited())

	response := fixture.do(t, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}
