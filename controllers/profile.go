package controllers

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"wardrobeapi/languageutil"
	"wardrobeapi/models"
	"wardrobeapi/services"
)

type ProfileController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	BucketName string
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("/me", controller.Me)
	g.POST("/update", controller.Update)
	g.POST("/image", controller.ProfileImage)
	g.GET("/preferences", controller.GetPreferences)
	g.POST("/preferences", controller.SavePreferences)
	g.POST("/push-token", controller.RegisterPush)
}

func (controller *ProfileController) Me(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var wardrobeSize int64
	db.Model(&models.WardrobeItem{}).Where("owner_id = ?", user.ID).Count(&wardrobeSize)

	var imageURL string
	if controller.URLCache != nil && user.ProfileImageKey != "" {
		url, err := controller.URLCache.GetReadURL(c.Request().Context(), user.ProfileImageKey)
		if err != nil {
			zerolog.Ctx(c.Request().Context()).Warn().Err(err).Msg("could not presign profile image")
		}
		imageURL = url
	}

	return c.JSON(http.StatusOK, models.UserMeOut{
		Id:                   user.ID,
		FirstName:            user.FirstName,
		LastName:             user.LastName,
		Username:             user.Username,
		Email:                user.Email,
		Gender:               user.Gender,
		City:                 user.City,
		TelegramUsername:     user.TelegramUsername,
		ProfileImageURL:      imageURL,
		ReceiveNotifications: user.ReceiveNotifications,
		WardrobeSize:         wardrobeSize,
	})
}

func (controller *ProfileController) Update(c echo.Context) error {
	var req models.ProfileUpdateIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Username cannot be empty"})
		}
		user.Username = username
	}
	if req.Gender != nil {
		user.Gender = strings.ToLower(strings.TrimSpace(*req.Gender))
	}
	if req.City != nil {
		user.City = languageutil.TitleCase(strings.TrimSpace(*req.City))
	}
	if req.TelegramUsername != nil {
		user.TelegramUsername = strings.TrimPrefix(strings.TrimSpace(*req.TelegramUsername), "@")
	}
	if req.ReceiveNotifications != nil {
		user.ReceiveNotifications = *req.ReceiveNotifications
	}
	if err := db.Save(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update your profile"})
	}
	c.Set("currentUser", user)
	return controller.Me(c)
}

// ProfileImage hands out a presigned upload url for a new picture, or
// removes the current one.
func (controller *ProfileController) ProfileImage(c echo.Context) error {
	var req models.ProfileImageIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	ctx := c.Request().Context()

	if req.Remove {
		if user.ProfileImageKey != "" {
			if err := controller.AWSService.DeleteObject(ctx, controller.BucketName, user.ProfileImageKey); err != nil {
				sentry.CaptureException(err)
			}
		}
		if err := db.Model(&user).Update("profile_image_key", "").Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to remove your picture"})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "removed"})
	}

	fileName := path.Base(strings.TrimSpace(req.FileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file_name is required"})
	}
	objectKey := fmt.Sprintf("profiles/%v/%s", user.ID, fileName)
	uploadURL, err := controller.AWSService.PresignLink(ctx, controller.BucketName, objectKey)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("unable to presign profile image upload")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error while uploading your picture, please try again"})
	}
	if err := db.Model(&user).Update("profile_image_key", objectKey).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save your picture"})
	}
	return c.JSON(http.StatusOK, models.ProfileImageOut{UploadUrl: uploadURL, ObjectKey: objectKey})
}

func (controller *ProfileController) GetPreferences(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	pref := models.LoadPreferences(db, user.ID)
	if pref == nil {
		return c.JSON(http.StatusOK, models.UserPreference{UserAccountID: user.ID})
	}
	return c.JSON(http.StatusOK, pref)
}

func (controller *ProfileController) SavePreferences(c echo.Context) error {
	var req models.UserPreferenceIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	pref := models.LoadPreferences(db, user.ID)
	if pref == nil {
		pref = &models.UserPreference{UserAccountID: user.ID}
	}
	pref.PreferredFit = req.PreferredFit
	pref.PreferredColors = pq.StringArray(req.PreferredColors)
	pref.PreferredFormality = req.PreferredFormality
	pref.PreferredPatterns = pq.StringArray(req.PreferredPatterns)
	pref.PreferredTemperature = req.PreferredTemperature
	if err := db.Save(pref).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save your preferences"})
	}
	return c.JSON(http.StatusOK, pref)
}

func (controller *ProfileController) RegisterPush(c echo.Context) error {
	var req models.UserPushIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	pushData := models.UserPushToken{
		Platform:      models.Platform(req.Platform),
		Token:         req.Token,
		UserAccountID: user.ID,
		Active:        true,
	}
	// the same device may be signed in to several accounts
	result := db.Where("token = ? and user_account_id = ?", req.Token, user.ID).FirstOrCreate(&pushData)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to register the device"})
	}
	if !pushData.Active {
		db.Model(&pushData).Update("active", true)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "registered", "push_id": pushData.ID})
}
