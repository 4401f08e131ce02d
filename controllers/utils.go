package controllers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"wardrobeapi/models"
	"wardrobeapi/services"
)

const (
	accessTokenKind  = "access"
	refreshTokenKind = "refresh"

	accessTokenTTL  = 72 * time.Hour
	refreshTokenTTL = 24 * 30 * 12 * time.Hour
)

func BoolPointer(b bool) *bool {
	return &b
}

func StrPointer(b string) *string {
	return &b
}

func UIntToStr(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func signToken(userPk, sessionID, kind string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userPk,
		"sid": sessionID,
		"typ": kind,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func GenerateUserToken(userPk, sessionID string) (string, error) {
	return signToken(userPk, sessionID, accessTokenKind, accessTokenTTL)
}

func GenerateRefreshToken(userPk, sessionID string) (string, error) {
	return signToken(userPk, sessionID, refreshTokenKind, refreshTokenTTL)
}

func parseToken(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// issueTokens opens a new session for the user and signs a token pair for it.
func issueTokens(ctx context.Context, sessions services.SessionStore, user models.UserAccount, isNew bool) (*models.AuthOut, error) {
	session, err := sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return signPair(user, session.ID, isNew)
}

func signPair(user models.UserAccount, sessionID string, isNew bool) (*models.AuthOut, error) {
	access, err := GenerateUserToken(UIntToStr(user.ID), sessionID)
	if err != nil {
		return nil, err
	}
	refresh, err := GenerateRefreshToken(UIntToStr(user.ID), sessionID)
	if err != nil {
		return nil, err
	}
	return &models.AuthOut{
		Id:           UIntToStr(user.ID),
		Email:        user.Email,
		New:          isNew,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
