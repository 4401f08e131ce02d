package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
	"wardrobeapi/test"
)

func TestAuthGoogleCreatesUserAndSession(t *testing.T) {
	e, env := setupTestServer(t)

	rec := serve(e, test.NewJSONRequest("POST", "/auth/google", models.GoogleAuthSignIn{IdToken: "token", Platform: "ios"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[models.AuthOut](t, rec)
	assert.Equal(t, "fake@example.com", resp.Email)
	assert.True(t, resp.New)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	var user models.UserAccount
	require.NoError(t, env.db.First(&user, "email = ?", "fake@example.com").Error)
	assert.Equal(t, "123googleid", user.GoogleID)
	assert.Equal(t, "Fake", user.FirstName)
	assert.Equal(t, models.PlatformIOS, user.Platform)

	// signing in again finds the same account
	rec = serve(e, test.NewJSONRequest("POST", "/auth/google", models.GoogleAuthSignIn{IdToken: "token", Platform: "android"}))
	require.Equal(t, http.StatusOK, rec.Code)
	again := decode[models.AuthOut](t, rec)
	assert.False(t, again.New)
	assert.Equal(t, resp.Id, again.Id)

	// the issued access token works against a protected route
	rec = serve(e, test.NewJSONAuthRequestCustomAuth("GET", "/profile/me", "Bearer "+resp.AccessToken, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthGoogleRejectsBadInput(t *testing.T) {
	e, _ := setupTestServer(t)

	rec := serve(e, test.NewJSONRequest("POST", "/auth/google", models.GoogleAuthSignIn{IdToken: "token", Platform: "symbian"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, test.NewJSONRequest("POST", "/auth/google", models.GoogleAuthSignIn{IdToken: "invalid", Platform: "ios"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	e, env := setupTestServer(t)
	user := test.FakeUser(env.db, env.sessions)
	userPk := fmt.Sprint(user.ID)

	rec := serve(e, test.NewJSONRequest("POST", "/auth/refresh", models.RefreshTokenIn{RefreshToken: test.GenerateRefreshToken(userPk)}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pair := decode[models.AuthOut](t, rec)
	assert.NotEmpty(t, pair.AccessToken)

	// an access token is not a refresh token
	rec = serve(e, test.NewJSONRequest("POST", "/auth/refresh", models.RefreshTokenIn{RefreshToken: test.GenerateUserToken(userPk)}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a refresh token cannot authorize requests
	rec = serve(e, test.NewJSONAuthRequestCustomAuth("GET", "/profile/me", "Bearer "+test.GenerateRefreshToken(userPk), nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, test.NewJSONAuthRequest("POST", "/auth/logout", userPk, models.UserPushIn{}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// every token of the expired session is revoked
	rec = serve(e, test.NewJSONAuthRequest("GET", "/profile/me", userPk, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = serve(e, test.NewJSONRequest("POST", "/auth/refresh", models.RefreshTokenIn{RefreshToken: test.GenerateRefreshToken(userPk)}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBannedUserIsLocked(t *testing.T) {
	e, env := setupTestServer(t)
	user := test.FakeUser(env.db, env.sessions)
	env.db.Model(user).Update("banned", true)

	rec := serve(e, test.NewJSONAuthRequest("GET", "/profile/me", fmt.Sprint(user.ID), nil))
	assert.Equal(t, http.StatusLocked, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e, _ := setupTestServer(t)

	rec := serve(e, test.NewJSONRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(e, test.NewJSONRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total{method=GET,path=/healthz,status=2xx} 1")
}
