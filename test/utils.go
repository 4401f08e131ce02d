package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"

	"wardrobeapi/models"
	"wardrobeapi/services"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

// SessionID is the session FakeUser opens for a user.
func SessionID(userPk string) string {
	return "sess-" + userPk
}

func signToken(userPk, sessionID, kind string, ttl time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userPk,
		"sid": sessionID,
		"typ": kind,
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatal().Err(err).Msgf("error when signing user token for %s", userPk)
	}
	return t
}

func GenerateUserToken(userPk string) string {
	return signToken(userPk, SessionID(userPk), "access", 72*time.Hour)
}

func GenerateRefreshToken(userPk string) string {
	return signToken(userPk, SessionID(userPk), "refresh", 30*24*time.Hour)
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", authorizationString)
	return req
}

// OpenSession registers the session GenerateUserToken refers to.
func OpenSession(sessions services.SessionStore, userID uint) {
	err := sessions.Put(context.Background(), services.Session{
		ID:        SessionID(fmt.Sprint(userID)),
		UserID:    userID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open test session")
	}
}

func FakeUser(db *gorm.DB, sessions services.SessionStore) *models.UserAccount {
	return FakeUserV2(db, sessions, "Alex", "email@example.com")
}

func FakeUserV2(db *gorm.DB, sessions services.SessionStore, firstName string, email string) *models.UserAccount {
	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		FirstName:            firstName,
		LastName:             "Doe",
		Username:             strings.ToLower(firstName),
		Email:                email,
		GoogleID:             "12232",
		Platform:             models.PlatformIOS,
		LastIp:               "123.122.122.122",
		City:                 "London",
		ReceiveNotifications: true,
	}
	db.Create(&user)
	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      "android",
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU",
		Active:        true,
	}
	db.Save(&tokenDb)
	if sessions != nil {
		OpenSession(sessions, user.ID)
	}
	return user
}

func FakeItem(db *gorm.DB, ownerID uint, itemType, color, subType string) *models.WardrobeItem {
	item := &models.WardrobeItem{
		OwnerID:             ownerID,
		ItemType:            itemType,
		Material:            "cotton",
		Color:               color,
		Formality:           "casual",
		Pattern:             "solid",
		Fit:                 "regular",
		SubType:             subType,
		SuitableForWeather:  pq.StringArray{"all weather"},
		SuitableForOccasion: pq.StringArray{"all occasions"},
		ImageKey:            fmt.Sprintf("images/%s-%s.png", color, subType),
		ProcessingStatus:    models.ItemReady,
	}
	db.Create(item)
	return item
}

// FakeWardrobe creates a small ready wardrobe: top, bottom, shoes, outerwear.
func FakeWardrobe(db *gorm.DB, ownerID uint) []*models.WardrobeItem {
	return []*models.WardrobeItem{
		FakeItem(db, ownerID, "top", "white", "t-shirt"),
		FakeItem(db, ownerID, "bottom", "navy", "chinos"),
		FakeItem(db, ownerID, "shoes", "black", "sneakers"),
		FakeItem(db, ownerID, "outerwear", "grey", "cardigan"),
	}
}

// OutfitReply renders a completion answer naming the given items.
func OutfitReply(occasion string, items ...*models.WardrobeItem) string {
	type ref struct {
		ID       string `json:"id"`
		SubType  string `json:"sub_type"`
		Color    string `json:"color"`
		ItemType string `json:"item_type"`
	}
	refs := make([]ref, 0, len(items))
	for _, it := range items {
		refs = append(refs, ref{ID: fmt.Sprint(it.ID), SubType: it.SubType, Color: it.Color, ItemType: it.ItemType})
	}
	return "### Output:\n```json\n" + JsonString(map[string]interface{}{
		"occasion":     occasion,
		"outfit_items": refs,
		"description":  "An easy everyday look.",
		"styling_tips": "Roll the sleeves once.",
	}) + "\n```"
}

type GoogleServiceMock struct{}

func (gsm GoogleServiceMock) ValidateIdToken(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error) {
	if idToken == "invalid" {
		return nil, fmt.Errorf("idtoken: invalid token")
	}
	return &idtoken.Payload{Issuer: "Issue", Audience: "AAA", Expires: 119919191919, IssuedAt: 12312321321, Subject: "fake@example.com", Claims: map[string]interface{}{
		"email":       "fake@example.com",
		"picture":     "pictureurl",
		"sub":         "123googleid",
		"given_name":  "Fake",
		"family_name": "User",
	}}, nil
}
