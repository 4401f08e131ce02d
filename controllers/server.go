package controllers

import (
	"context"
	"net/http"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"wardrobeapi/logging"
	"wardrobeapi/metrics"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/stylist"
	"wardrobeapi/tasks"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("itemtype", models.ValidateItemType)
	return &CustomValidator{validator: v}
}

type ServerDeps struct {
	DB          *gorm.DB
	Google      services.GoogleServiceProvider
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	Queue       tasks.Enqueuer
	URLCache    services.URLCacheServiceProvider
	Sessions    services.SessionStore
	Weather     services.WeatherProvider
	Stylist     *stylist.Stylist
	Metrics     *metrics.Registry
	BucketName  string
}

func SetupServer(deps ServerDeps) *echo.Echo {
	if err := deps.AWSService.InitPresignClient(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize AWS provider: S3")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}

	e := echo.New()
	e.Validator = NewValidator()
	e.Use(logging.RequestLogger(deps.Metrics))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", deps.DB)
			c.Set("__asynqclient", deps.Queue)
			c.Set("__sessions", deps.Sessions)
			return next(c)
		}
	})
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", deps.Metrics.EchoHandlerText)
	e.GET("/metrics.json", deps.Metrics.EchoHandlerJSON)

	jwtAuth := echojwt.JWT([]byte(os.Getenv("JWT_SECRET")))

	authController := AuthController{Google: deps.Google, Sessions: deps.Sessions}
	authController.AuthRoutes(e.Group("/auth"), jwtAuth)

	protected := e.Group("", jwtAuth, UserMiddleware)

	chatController := ChatController{Stylist: deps.Stylist, Weather: deps.Weather}
	chatController.ChatRoutes(protected.Group("/chat"))

	clothesController := ClothesController{URLCache: deps.URLCache}
	clothesController.ClothingRoutes(protected.Group("/clothing"))

	outfitController := OutfitController{}
	outfitController.OutfitRoutes(protected.Group("/outfits"))

	weatherController := WeatherController{Weather: deps.Weather}
	weatherController.WeatherRoutes(protected.Group("/weather"))

	profileController := ProfileController{AWSService: deps.AWSService, URLCache: deps.URLCache, BucketName: deps.BucketName}
	profileController.ProfileRoutes(protected.Group("/profile"))

	return e
}
