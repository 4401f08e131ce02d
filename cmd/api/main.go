package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"wardrobeapi/config"
	"wardrobeapi/controllers"
	"wardrobeapi/dbhelper"
	"wardrobeapi/logging"
	"wardrobeapi/metrics"
	"wardrobeapi/services"
	"wardrobeapi/stylist"
	"wardrobeapi/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.Environment)

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "wardrobeapi@1.0.0",
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("sentry.Init")
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := dbhelper.SetupDB()

	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing firebase app")
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.BrokerAddress})
	defer asynqClient.Close()

	awsService := &services.AWSService{}
	urlCache, err := services.NewURLCacheService(awsService, cfg.BucketName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize URL cache service")
	}
	sessions, err := services.NewCacheSessionStore(cfg.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session store")
	}
	weather, err := services.NewWeatherService(cfg.WeatherBaseURL, cfg.WeatherAPIKey, cfg.DefaultWeatherCity)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize weather service")
	}

	rules, err := cfg.Rules()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load stylist rules")
	}
	registry := metrics.NewRegistry()
	var st *stylist.Stylist
	completer, err := services.NewCompletionBackend(ctx, cfg.StylistConfig)
	if err != nil {
		// the API still serves wardrobes, /chat answers 503
		log.Error().Err(err).Msg("completion backend unavailable")
	} else {
		st = stylist.New(completer, rules, cfg.Stylist(), stylist.WithObserver(registry))
	}

	e := controllers.SetupServer(controllers.ServerDeps{
		DB:          db,
		Google:      services.GoogleService{},
		AWSService:  awsService,
		FirebaseApp: app,
		Queue:       asynqClient,
		URLCache:    urlCache,
		Sessions:    sessions,
		Weather:     weather,
		Stylist:     st,
		Metrics:     registry,
		BucketName:  cfg.BucketName,
	})

	if cfg.TelegramBot {
		if st == nil {
			log.Fatal().Msg("telegram bot needs a completion backend")
		}
		bot := &telegram.WardrobeBot{DB: db, Stylist: st, Weather: weather}
		if err := telegram.RunWardrobeBot(ctx, cfg.TelegramToken, bot); err != nil {
			log.Fatal().Err(err).Msg("telegram bot stopped")
		}
		return
	}

	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10)))
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()
	log.Info().Str("address", cfg.Address).Msg("starting api")
	if err := e.Start(cfg.Address); err != nil {
		log.Info().Err(err).Msg("server stopped")
	}
}
