package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/stylist"
)

const (
	minMessageLength      = 3
	emptyWardrobeResponse = "Your wardrobe is empty. Please add some items first."
)

type ChatController struct {
	Stylist *stylist.Stylist
	Weather services.WeatherProvider
}

func (controller *ChatController) ChatRoutes(g *echo.Group) {
	g.POST("/", controller.Chat)
}

// currentWeather falls back to an empty snapshot, which the pipeline treats
// as unavailable weather.
func currentWeather(ctx context.Context, provider services.WeatherProvider, city string) stylist.WeatherSnapshot {
	if provider == nil {
		return stylist.WeatherSnapshot{}
	}
	w, err := provider.Current(ctx, city)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("city", city).Msg("weather unavailable, generating without it")
		return stylist.WeatherSnapshot{}
	}
	return w
}

func (controller *ChatController) Chat(c echo.Context) error {
	var req models.ChatIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	req.UserMessage = strings.TrimSpace(req.UserMessage)
	if len([]rune(req.UserMessage)) < minMessageLength {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Please describe what you need an outfit for"})
	}
	if controller.Stylist == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Outfit generation is not available right now"})
	}

	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	ctx := c.Request().Context()

	items, err := models.ReadyWardrobe(db, user.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not load your wardrobe"})
	}
	if len(items) == 0 {
		return c.JSON(http.StatusOK, models.ChatOut{Response: &stylist.OutfitCandidate{
			Occasion:    stylist.AllOccasions,
			OutfitItems: []stylist.OutfitItemRef{},
			Description: emptyWardrobeResponse,
			Warnings:    []string{},
		}})
	}

	var weather stylist.WeatherSnapshot
	if req.Weather != nil {
		weather = *req.Weather
	} else {
		city := req.City
		if city == "" {
			city = user.City
		}
		weather = currentWeather(ctx, controller.Weather, city)
	}

	candidate, err := controller.Stylist.GenerateOutfit(ctx, stylist.Request{
		Message:     req.UserMessage,
		Weather:     weather,
		Wardrobe:    models.ToStylistWardrobe(items),
		Preferences: models.LoadPreferences(db, user.ID).ToStylist(),
	})
	if errors.Is(err, stylist.ErrCompletionUnavailable) {
		sentry.CaptureException(err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Our stylist is unavailable right now, please try again a bit later"})
	}
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, models.ChatOut{Response: candidate})
}
