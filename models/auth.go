package models

import "time"

type JsonModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GoogleAuthSignIn struct {
	IdToken  string `json:"idToken" validate:"required"`
	Platform string `json:"platform" validate:"required,platform"`
}

type AppleAuthRequest struct {
	IdentityToken     string `json:"identity_token" validate:"required"`
	Platform          string `json:"platform" validate:"required,platform"`
	AuthorizationCode string `json:"authorization_code" validate:"required"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
}

type RefreshTokenIn struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthOut struct {
	Id           string `json:"id"`
	Email        string `json:"email"`
	New          bool   `json:"new"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
