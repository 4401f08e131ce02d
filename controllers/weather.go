package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"wardrobeapi/models"
	"wardrobeapi/services"
)

type WeatherController struct {
	Weather services.WeatherProvider
}

func (controller *WeatherController) WeatherRoutes(g *echo.Group) {
	g.GET("/current", controller.Current)
}

func (controller *WeatherController) Current(c echo.Context) error {
	if controller.Weather == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Weather service unavailable"})
	}
	user := c.Get("currentUser").(models.UserAccount)
	city := c.QueryParam("city")
	if city == "" {
		city = user.City
	}
	w, err := controller.Weather.Current(c.Request().Context(), city)
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Warn().Err(err).Str("city", city).Msg("weather lookup failed")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Weather service unavailable"})
	}
	return c.JSON(http.StatusOK, w)
}
