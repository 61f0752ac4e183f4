package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"event-radar/internal/domain/entity"
	pgRepo "event-radar/internal/infra/adapter/persistence/postgres"
	"event-radar/internal/infra/db"
	"event-radar/internal/infra/llm"
	"event-radar/internal/infra/notifier"
	researchInfra "event-radar/internal/infra/research"
	"event-radar/internal/infra/search"
	workerPkg "event-radar/internal/infra/worker"
	"event-radar/internal/observability/logging"
	obs "event-radar/internal/observability/metrics"
	"event-radar/internal/observability/tracing"
	"event-radar/internal/pkg/config"
	"event-radar/internal/repository"
	"event-radar/internal/usecase/notify"
	"event-radar/internal/usecase/pipeline"
	"event-radar/internal/usecase/promo"
	"event-radar/internal/usecase/research"
	"event-radar/internal/usecase/review"
)

// reviewWindow is how far ahead an event start may lie and still pass the
// date window check.
const reviewWindow = 7 * 24 * time.Hour

func main() {
	logger := initLogger()

	shutdownTracing := tracing.Setup()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	dryRun := config.LoadEnvBool("DRY_RUN", false)

	repo, database := initEventRepo(logger)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
	}

	notifyService := initNotifyService(logger, workerConfig.NotifyMaxConcurrent, dryRun)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := notifyService.Shutdown(shutdownCtx); err != nil {
			logger.Error("notification service shutdown failed", slog.Any("error", err))
		}
	}()

	startMetricsServer(ctx, logger, notifyService)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	pipelineService := setupPipeline(logger)

	startCronWorker(logger, pipelineService, notifyService, repo, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initEventRepo opens the database, runs migrations, and returns the event
// repository. With NO_DB=true persistence is skipped and the repository is
// nil; the worker still searches, reviews, and notifies.
func initEventRepo(logger *slog.Logger) (repository.EventRepository, *sql.DB) {
	if config.LoadEnvBool("NO_DB", false) {
		logger.Info("persistence disabled via NO_DB")
		return nil, nil
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Error("DATABASE_URL is required unless NO_DB=true")
		os.Exit(1)
	}

	database, err := db.Open(dsn)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready")

	return pgRepo.NewEventRepo(database), database
}

// initNotifyService builds the delivery channels and the dispatch service.
// In dry-run mode only the log channel is used.
func initNotifyService(logger *slog.Logger, maxConcurrent int, dryRun bool) notify.Service {
	var channels []notifier.Channel

	if dryRun {
		channels = append(channels, notifier.NewNoopChannel())
		logger.Info("dry run: digests will be logged, not delivered")
	} else {
		emailConfig := notifier.LoadEmailConfig()
		emailChannel := notifier.NewEmailChannel(emailConfig)
		channels = append(channels, emailChannel)
		logger.Info("email channel initialized", slog.Bool("enabled", emailChannel.IsEnabled()))

		twilioConfig := notifier.LoadTwilioConfig()
		twilioChannel := notifier.NewTwilioChannel(twilioConfig)
		channels = append(channels, twilioChannel)
		logger.Info("sms channel initialized", slog.Bool("enabled", twilioChannel.IsEnabled()))
	}

	service := notify.NewService(channels, maxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", maxConcurrent))
	return service
}

// setupPipeline wires the search sources, review swarm, research chain, and
// promo generator into the pipeline sequencer.
func setupPipeline(logger *slog.Logger) *pipeline.Service {
	// Analytical steps and the promo run on separate role clients so each
	// can use a different model (LLM_MODEL_REASONING / LLM_MODEL_GENERATION).
	reasoningClient, err := llm.NewFromEnv(llm.RoleReasoning)
	if err != nil {
		logger.Error("failed to initialize reasoning model client", slog.Any("error", err))
		os.Exit(1)
	}
	generationClient, err := llm.NewFromEnv(llm.RoleGeneration)
	if err != nil {
		logger.Error("failed to initialize generation model client", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("model clients initialized", slog.String("provider", reasoningClient.Provider()))

	searchConfig := search.LoadSearchConfig()
	sources := search.DefaultSources()
	logger.Info("search sources initialized",
		slog.Int("count", len(sources)),
		slog.String("city", searchConfig.City))

	reviewClient := &http.Client{Timeout: 10 * time.Second}
	swarm := review.NewSwarm([]review.Reviewer{
		review.NewURLChecker(reviewClient),
		review.NewRelevanceScorer(),
		review.NewDateWindowChecker(searchConfig.Location, reviewWindow),
		review.NewContentReviewer(reviewClient, reasoningClient),
	}, 4)

	researchEnabled := config.LoadEnvBool("RESEARCH_ENABLED", true)
	var researchService *research.Service
	if researchEnabled {
		lookupClient := &http.Client{Timeout: 15 * time.Second}
		agents := []research.LookupAgent{
			researchInfra.NewWebSearch(os.Getenv("SERPAPI_KEY"), lookupClient),
			researchInfra.NewWikipedia(lookupClient),
		}
		researchService = research.NewService(
			research.NewExtractor(reasoningClient),
			research.NewQueryGenerator(reasoningClient),
			agents,
			research.NewSynthesizer(reasoningClient),
			research.DefaultMaxConcurrent,
		)
		logger.Info("research chain enabled", slog.Int("lookup_agents", len(agents)))
	} else {
		logger.Info("research chain disabled")
	}

	return pipeline.NewService(sources, swarm, researchService, promo.NewGenerator(generationClient), pipeline.Config{
		ResearchEnabled: researchEnabled,
	})
}

// startCronWorker starts the cron scheduler and runs the discovery job on
// the configured schedule.
func startCronWorker(logger *slog.Logger, pipelineService *pipeline.Service, notifyService notify.Service, repo repository.EventRepository, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runJob(logger, pipelineService, notifyService, repo, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	if config.LoadEnvBool("RUN_ON_START", false) {
		runJob(logger, pipelineService, notifyService, repo, cfg, metrics)
	}

	select {}
}

// runJob executes a single pipeline run: discover, review, research,
// generate the promo, deliver the digest, and persist the verified events.
func runJob(logger *slog.Logger, pipelineService *pipeline.Service, notifyService notify.Service, repo repository.EventRepository, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("discovery run started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	state, err := pipelineService.Run(ctx)
	runLogger := logging.WithRunID(logger, state.RunID)
	if err != nil {
		runLogger.Error("discovery run failed", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	if state.Promo == nil {
		runLogger.Info("no digest to deliver",
			slog.Int("events_found", len(state.EventsFound)))
		metrics.RecordJobRun("success")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		metrics.RecordLastSuccess()
		return
	}

	digest := buildDigest(state)
	if err := notifyService.Dispatch(ctx, digest); err != nil {
		runLogger.Error("digest dispatch failed", slog.Any("error", err))
	}

	if repo != nil {
		batch := verifiedEvents(state)
		if err := repo.SaveBatch(ctx, batch); err != nil {
			runLogger.Error("failed to persist events", slog.Any("error", err))
		} else {
			obs.RecordEventsStored(len(batch))
			runLogger.Info("events persisted", slog.Int("count", len(batch)))
		}
		if total, err := repo.CountEvents(ctx); err == nil {
			obs.UpdateEventsInStore(total)
		}
	}

	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordEventsProcessed(len(state.EventsReviewed))
	metrics.RecordLastSuccess()

	runLogger.Info("discovery run complete",
		slog.Int("events_found", len(state.EventsFound)),
		slog.Int("events_verified", len(state.EventsReviewed)),
		slog.Duration("duration", time.Since(startTime)))
}

// buildDigest renders the dispatchable digest from a completed run: the
// promo text followed by a plain listing of every covered event.
func buildDigest(state *pipeline.State) *notifier.Digest {
	var b strings.Builder
	b.WriteString(state.Promo.PromoText)
	b.WriteString("\n\n")
	b.WriteString("Event details:\n")
	for _, enriched := range state.EventsReviewed {
		event := enriched.Event
		b.WriteString("- " + event.Title)
		if event.StartTime != nil {
			b.WriteString(" | " + event.StartTime.Format("Mon Jan 2 3:04 PM"))
		}
		if event.Location != "" {
			b.WriteString(" | " + event.Location)
		}
		if event.URL != "" {
			b.WriteString(" | " + event.URL)
		}
		b.WriteString("\n")
	}

	count := len(state.EventsReviewed)
	return &notifier.Digest{
		Subject:     fmt.Sprintf("%d local events for %s", count, time.Now().Format("Monday, January 2")),
		Body:        b.String(),
		EventCount:  count,
		RunID:       state.RunID,
		GeneratedAt: time.Now(),
	}
}

// verifiedEvents collects the persistable events from a run state.
func verifiedEvents(state *pipeline.State) []*entity.Event {
	out := make([]*entity.Event, 0, len(state.EventsReviewed))
	for _, enriched := range state.EventsReviewed {
		out = append(out, enriched.Event)
	}
	return out
}
