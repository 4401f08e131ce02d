package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	apple "github.com/Timothylock/go-signin-with-apple/apple"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"wardrobeapi/languageutil"
	"wardrobeapi/models"
	"wardrobeapi/services"
)

type AuthController struct {
	Google   services.GoogleServiceProvider
	Sessions services.SessionStore
}

func (m *AuthController) AuthRoutes(g *echo.Group, jwtAuth echo.MiddlewareFunc) {
	g.POST("/google", m.GoogleSignIn)
	g.POST("/apple", m.AppleSignIn)
	g.POST("/refresh", m.Refresh)
	g.POST("/logout", m.Logout, jwtAuth, UserMiddleware)
}

// signInUser finds the user by provider id, then by email, and creates one
// when neither exists.
func signInUser(db *gorm.DB, providerColumn, providerID string, candidate models.UserAccount) (*models.UserAccount, bool, error) {
	var user models.UserAccount
	r := db.Where(providerColumn+" = ?", providerID).Limit(1).Find(&user)
	if r.Error != nil {
		return nil, false, r.Error
	}
	if r.RowsAffected > 0 {
		return &user, false, nil
	}

	if candidate.Email != "" {
		r = db.Where("email = ?", candidate.Email).Limit(1).Find(&user)
		if r.Error != nil {
			return nil, false, r.Error
		}
		if r.RowsAffected > 0 {
			switch providerColumn {
			case "google_id":
				user.GoogleID = providerID
			case "apple_id":
				user.AppleID = providerID
			}
			user.Platform = candidate.Platform
			user.LastIp = candidate.LastIp
			if err := db.Save(&user).Error; err != nil {
				return nil, false, err
			}
			return &user, false, nil
		}
	}

	if candidate.Username == "" {
		candidate.Username = strings.Split(candidate.Email, "@")[0]
	}
	if candidate.Username == "" || strings.HasSuffix(candidate.Email, "@apple.invalid") {
		candidate.Username = languageutil.RandomUsername()
	}
	candidate.ReceiveNotifications = true
	if err := db.Create(&candidate).Error; err != nil {
		return nil, false, err
	}
	return &candidate, true, nil
}

func (m *AuthController) respondWithTokens(c echo.Context, user *models.UserAccount, isNew bool) error {
	if user.Banned {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Sorry, your access is blocked"})
	}
	out, err := issueTokens(c.Request().Context(), m.Sessions, *user, isNew)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[User: %v] failed to issue tokens: %w", user.ID, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, out)
}

func (m *AuthController) GoogleSignIn(c echo.Context) error {
	logger := zerolog.Ctx(c.Request().Context())
	creds := new(models.GoogleAuthSignIn)
	if err := c.Bind(creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	payload, err := m.Google.ValidateIdToken(c.Request().Context(), creds.IdToken, os.Getenv("GOOGLE_CLIENT_ID"))
	if err != nil {
		logger.Warn().Err(err).Msg("google token rejected")
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials"})
	}
	googleID, _ := payload.Claims["sub"].(string)
	email, _ := payload.Claims["email"].(string)
	if googleID == "" || email == "" {
		sentry.CaptureMessage(fmt.Sprintf("Error when fetching user data %v", payload.Claims))
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials"})
	}
	firstName, _ := payload.Claims["given_name"].(string)
	lastName, _ := payload.Claims["family_name"].(string)

	db := c.Get("__db").(*gorm.DB)
	user, isNew, err := signInUser(db, "google_id", googleID, models.UserAccount{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		GoogleID:  googleID,
		Platform:  models.Platform(creds.Platform),
		LastIp:    c.RealIP(),
	})
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return m.respondWithTokens(c, user, isNew)
}

func (m *AuthController) AppleSignIn(c echo.Context) error {
	logger := zerolog.Ctx(c.Request().Context())
	var req models.AppleAuthRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	teamID := os.Getenv("APPLE_TEAM_ID")
	keyID := os.Getenv("APPLE_KEY_ID")
	clientID := os.Getenv("APPLE_CLIENT_ID")
	secret, err := services.DecodeBase64EnvPrivateKey("APPLE_SIGNIN_PKEY_BASE64")
	if err != nil {
		logger.Error().Err(err).Msg("apple private key unavailable")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	secret, err = apple.GenerateClientSecret(secret, teamID, clientID, keyID)
	if err != nil {
		logger.Error().Err(err).Msg("apple client secret failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	var resp apple.ValidationResponse
	err = apple.New().VerifyAppToken(c.Request().Context(), apple.AppValidationTokenRequest{
		ClientID:     clientID,
		ClientSecret: secret,
		Code:         req.AuthorizationCode,
	}, &resp)
	if err != nil || resp.Error != "" {
		logger.Warn().Err(err).Str("apple_error", resp.Error).Msg("apple token rejected")
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't verify credentials through Apple"})
	}
	unique, err := apple.GetUniqueID(resp.IDToken)
	if err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't get your unique identifier"})
	}
	claim, err := apple.GetClaims(resp.IDToken)
	if err != nil {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Couldn't get your information"})
	}
	email, _ := (*claim)["email"].(string)
	if email == "" {
		// apple only shares the email on the first sign in
		email = fmt.Sprintf("%s@apple.invalid", unique)
	}

	db := c.Get("__db").(*gorm.DB)
	user, isNew, err := signInUser(db, "apple_id", unique, models.UserAccount{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     email,
		AppleID:   unique,
		Platform:  models.Platform(req.Platform),
		LastIp:    c.RealIP(),
	})
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return m.respondWithTokens(c, user, isNew)
}

// Refresh trades a refresh token for a new pair bound to the same session.
func (m *AuthController) Refresh(c echo.Context) error {
	tokenReq := new(models.RefreshTokenIn)
	if err := c.Bind(tokenReq); err != nil || tokenReq.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Refresh token is required"})
	}
	claims, err := parseToken(tokenReq.RefreshToken)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
	}
	identity, ok := identityFromClaims(claims)
	if !ok || identity.Kind != refreshTokenKind {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid refresh token"})
	}

	ctx := c.Request().Context()
	session, err := m.Sessions.Get(ctx, identity.SessionID)
	if err != nil || UIntToStr(session.UserID) != identity.UserID {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Session expired, please sign in again"})
	}

	db := c.Get("__db").(*gorm.DB)
	var user models.UserAccount
	result := db.Where("id = ?", session.UserID).Take(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Session expired, please sign in again"})
	}
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if user.Banned {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Sorry, your access is blocked"})
	}

	// sliding expiry
	if err := m.Sessions.Put(ctx, *session); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	out, err := signPair(user, session.ID, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, out)
}

func (m *AuthController) Logout(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	sessionID, _ := c.Get("currentSession").(string)
	db := c.Get("__db").(*gorm.DB)

	var tokenRequest models.UserPushIn
	_ = c.Bind(&tokenRequest)
	if tokenRequest.Token != "" {
		db.Where("user_account_id = ? and token = ?", user.ID, tokenRequest.Token).Delete(&models.UserPushToken{})
	}

	if err := m.Sessions.Expire(c.Request().Context(), sessionID); err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to log out"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}
