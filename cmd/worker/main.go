package main

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"wardrobeapi/config"
	"wardrobeapi/dbhelper"
	"wardrobeapi/logging"
	"wardrobeapi/metrics"
	"wardrobeapi/services"
	"wardrobeapi/stylist"
	"wardrobeapi/tasks"
)

func runScheduler(redis asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redis, &asynq.SchedulerOpts{
		LogLevel: asynq.InfoLevel,
	})

	entries := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "*/15 * * * *",
			task: tasks.NewRequeueStaleTask(),
			desc: "Requeue items stuck in processing",
		},
	}

	for _, t := range entries {
		entryID, err := scheduler.Register(t.cron, t.task, asynq.Queue(tasks.QueueProcess))
		if err != nil {
			log.Fatal().Err(err).Str("task", t.desc).Msg("failed to register scheduled task")
		}
		log.Info().Str("task", t.desc).Str("entry", entryID).Str("cron", t.cron).Msg("registered scheduled task")
	}

	log.Info().Msg("starting scheduler")
	if err := scheduler.Run(); err != nil {
		log.Fatal().Err(err).Msg("scheduler failed")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.Environment)
	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Environment}); err != nil {
		log.Fatal().Err(err).Msg("sentry.Init")
	}
	ctx := context.Background()

	redis := asynq.RedisClientOpt{Addr: cfg.BrokerAddress}
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{tasks.QueueProcess: 7},
	})

	awsService := &services.AWSService{}
	if err := awsService.InitPresignClient(ctx); err != nil {
		log.Fatal().Err(err).Msg("[Queue] failed to initialize AWS provider: S3")
	}
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing firebase app")
	}
	completer, err := services.NewCompleter(ctx, cfg.StylistConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("completion backend unavailable")
	}
	imageGenerator, err := services.NewGeminiImageGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("image generator unavailable")
	}

	db := dbhelper.SetupDB()
	client := asynq.NewClient(redis)
	defer client.Close()

	processor := &tasks.ItemProcessor{
		DB:     db,
		Tagger: stylist.NewItemOccasionTagger(completer),
		Images: &services.ImageAssigner{
			Generator:  imageGenerator,
			AWSService: awsService,
			BucketName: cfg.BucketName,
		},
		FirebaseApp: app,
		Queue:       client,
		Metrics:     metrics.NewRegistry(),
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeProcessItem, processor.ProcessItemTask)
	mux.HandleFunc(tasks.TypeRequeueStale, processor.RequeueStaleTask)

	go runScheduler(redis)
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}
