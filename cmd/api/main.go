package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/onego-ai/onego/internal/api"
	"github.com/onego-ai/onego/internal/audit"
	"github.com/onego-ai/onego/internal/auth"
	"github.com/onego-ai/onego/internal/config"
	"github.com/onego-ai/onego/internal/content"
	"github.com/onego-ai/onego/internal/courses"
	"github.com/onego-ai/onego/internal/credits"
	"github.com/onego-ai/onego/internal/database"
	"github.com/onego-ai/onego/internal/extraction"
	"github.com/onego-ai/onego/internal/llm"
	mw "github.com/onego-ai/onego/internal/middleware"
	inats "github.com/onego-ai/onego/internal/nats"
	"github.com/onego-ai/onego/internal/quiz"
	iredis "github.com/onego-ai/onego/internal/redis"
	"github.com/onego-ai/onego/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		return err
	}
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// NATS is optional: without it events are dropped and quizzes are inline.
	var (
		natsClient  *inats.Client
		publisher   *inats.Publisher
		consumerMgr *inats.ConsumerManager
	)
	if cfg.NATS.URL != "" {
		natsClient, err = inats.NewClient(ctx, cfg.NATS)
		if err != nil {
			return err
		}
		defer natsClient.Close()
		publisher = inats.NewPublisher(natsClient.JetStream())
		consumerMgr = inats.NewConsumerManager(natsClient.JetStream())
	} else {
		slog.Warn("NATS not configured, events disabled")
	}

	// Generation
	generator := llm.New(cfg.LLM)
	if cfg.LLM.APIKey == "" {
		slog.Warn("LLM API key not set, all content will use templates")
	}
	moduleSynth := content.NewSynthesizer(generator, cfg.LLM.ContentModel, cfg.Generation)
	quizSynth := quiz.NewSynthesizer(generator, cfg.LLM.QuizModel, cfg.Generation)

	// Credits
	creditRepo := credits.NewRepository(pool)
	holds := credits.NewHoldStore(redisClient, cfg.Credits.HoldTTL)
	gate := credits.NewGate(creditRepo, holds, publisher)
	creditHandler := credits.NewHandler(gate)
	resetScheduler := credits.NewResetScheduler(creditRepo, cfg.Credits.ResetSchedule)

	// Courses
	courseRepo := courses.NewRepository(pool)
	courseSvc := courses.NewService(courseRepo, gate, moduleSynth, quizSynth, publisher, cfg.Generation)
	tutor := courses.NewTutor(courseSvc, generator, cfg.LLM.ChatModel, cfg.Generation)
	courseHandler := courses.NewHandler(courseSvc, tutor)

	// Extraction
	extractionSvc := extraction.NewService(
		extraction.NewRepository(pool),
		gate,
		extraction.NewGeminiClient(cfg.Extraction),
		extraction.NewSerpClient(cfg.Extraction),
		publisher,
	)
	extractionHandler := extraction.NewHandler(extractionSvc, cfg.Extraction.MaxDocumentBytes)

	// Activity log
	auditRepo := audit.NewRepository(pool)
	auditHandler := audit.NewHandler(auditRepo)

	// Router
	generationLimiter := mw.NewRateLimiter(redisClient, "generation", cfg.RateLimit.Requests, cfg.RateLimit.WindowSec, auth.RateLimitKey)
	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins:    cfg.CORS.AllowedOrigins,
		GenerationRateLimiter: generationLimiter.Middleware,
	}, api.HandlerSet{
		CreateCourse:      courseHandler.Create,
		ListCourses:       courseHandler.List,
		GetCourse:         courseHandler.Get,
		RegenerateQuizzes: courseHandler.RegenerateQuizzes,
		CourseChat:        courseHandler.Chat,

		GetCredits:      creditHandler.GetSummary,
		ListCreditUsage: creditHandler.ListUsage,

		ExtractDocument: extractionHandler.Document,
		ExtractWebsite:  extractionHandler.Website,

		ListActivity: auditHandler.List,

		AuthMiddleware: auth.Middleware(auth.NewValidator(cfg.JWT.AccessSecret, cfg.JWT.Issuer)),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return resetScheduler.Start(gctx)
	})

	if consumerMgr != nil {
		auditConsumer := audit.NewConsumer(auditRepo, consumerMgr)
		g.Go(func() error {
			if err := auditConsumer.Start(gctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
			return nil
		})

		quizWorker := courses.NewQuizWorker(courseSvc, consumerMgr)
		g.Go(func() error {
			if err := quizWorker.Start(gctx); err != nil {
				slog.Error("quiz worker stopped", "error", err)
			}
			return nil
		})
	}

	srv := server.New(cfg.Server, router)
	g.Go(func() error {
		return srv.Start(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("shutdown complete")
	return nil
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
