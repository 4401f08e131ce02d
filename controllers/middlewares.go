package controllers

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"wardrobeapi/models"
	"wardrobeapi/services"
)

type tokenIdentity struct {
	UserID    string
	SessionID string
	Kind      string
}

func identityFromClaims(claims jwt.MapClaims) (tokenIdentity, bool) {
	sub, _ := claims["sub"].(string)
	sid, _ := claims["sid"].(string)
	kind, _ := claims["typ"].(string)
	if sub == "" || sid == "" {
		return tokenIdentity{}, false
	}
	return tokenIdentity{UserID: sub, SessionID: sid, Kind: kind}, true
}

// UserMiddleware resolves the bearer of an access token. The token's session
// must still be open, so logging out revokes every token issued with it.
func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		logger := zerolog.Ctx(ctx)
		db := c.Get("__db").(*gorm.DB)
		sessions, _ := c.Get("__sessions").(services.SessionStore)

		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.ErrUnauthorized
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return echo.ErrUnauthorized
		}
		identity, ok := identityFromClaims(claims)
		if !ok || identity.Kind == refreshTokenKind {
			logger.Warn().Msg("token without subject or session")
			return echo.ErrUnauthorized
		}
		if sessions == nil {
			return echo.ErrUnauthorized
		}
		session, err := sessions.Get(ctx, identity.SessionID)
		if err != nil || UIntToStr(session.UserID) != identity.UserID {
			return echo.ErrUnauthorized
		}

		var currentUser models.UserAccount
		result := db.Where("id = ?", session.UserID).Take(&currentUser)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return echo.ErrUnauthorized
		}
		if result.Error != nil {
			logger.Error().Err(result.Error).Msg("failed to load current user")
			return echo.ErrInternalServerError
		}
		if currentUser.Banned {
			return echo.NewHTTPError(http.StatusLocked)
		}

		c.Set("currentUser", currentUser)
		c.Set("currentSession", session.ID)
		l := logger.With().Uint("user", currentUser.ID).Logger()
		c.SetRequest(c.Request().WithContext(l.WithContext(ctx)))
		return next(c)
	}
}
