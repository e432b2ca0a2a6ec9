package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/replykit/pagebot/internal/api"
	"github.com/replykit/pagebot/pkg/db"
	"github.com/replykit/pagebot/pkg/interfaces/facebook"
	"github.com/replykit/pagebot/pkg/llm/openai"
	"github.com/replykit/pagebot/pkg/orchestrator"
	"github.com/replykit/pagebot/pkg/replies"
	"github.com/replykit/pagebot/pkg/store"
	"github.com/replykit/pagebot/pkg/webhook"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Only log warning since .env is optional
		logrus.WithError(err).Warn("Error loading .env file")
	}

	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Get log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if level, err := logrus.ParseLevel(logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithFields(logrus.Fields{
			"attempted_level": logLevel,
			"default_level":   "INFO",
		}).Warn("Invalid log level specified, defaulting to INFO")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database (runs migrations, then opens gorm)
	database, err := db.SetupDatabase(log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up database")
	}

	// Initialize OpenAI client
	openaiConfig, err := openai.NewOpenAIConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create OpenAI config")
	}

	llmClient, err := openai.NewClient(openaiConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create OpenAI client")
	}

	// Initialize Facebook Graph client
	fbConfig, err := facebook.NewFacebookConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to create Facebook config")
	}
	fbConfig.Logger = log

	fbClient, err := facebook.NewFacebookClient(fbConfig)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Facebook client")
	}

	// Stores
	comments := store.NewCommentStore(database, log)
	pages := store.NewPageStore(database, log)
	settings := store.NewSettingsStore(database, log)
	runs := store.NewRunStore(database, log)

	generator := replies.NewReplyGenerator(llmClient, log)

	orch, err := orchestrator.New(orchestrator.Config{
		Comments:  comments,
		Pages:     pages,
		Settings:  settings,
		Runs:      runs,
		Generator: generator,
		Poster:    fbClient,
		Lister:    fbClient,
		Logger:    log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create orchestrator")
	}

	ingestor := webhook.NewIngestor(comments, pages, log)

	server, err := api.NewServer(api.ServerConfig{
		Orchestrator: orch,
		Ingestor:     ingestor,
		Comments:     comments,
		Pages:        pages,
		Settings:     settings,
		Runs:         runs,
		Logger:       log,
		VerifyToken:  fbConfig.VerifyToken,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create HTTP server")
	}

	// Scheduled runs: RUN_INTERVAL_MINUTES=0 disables the ticker and
	// leaves runs to manual triggers only.
	interval := scheduleInterval(log)
	if interval > 0 {
		go runScheduler(ctx, orch, interval, log)
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := server.Start(":" + port); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}

	log.Info("Shutdown complete")
}

func scheduleInterval(log *logrus.Logger) time.Duration {
	raw := os.Getenv("RUN_INTERVAL_MINUTES")
	if raw == "" {
		return 5 * time.Minute
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 0 {
		log.WithField("value", raw).Warn("Invalid RUN_INTERVAL_MINUTES, defaulting to 5")
		return 5 * time.Minute
	}
	return time.Duration(minutes) * time.Minute
}

// runScheduler drives periodic non-manual runs. Global pause is
// enforced inside the orchestrator, so the ticker keeps firing even
// while processing is paused.
func runScheduler(ctx context.Context, orch *orchestrator.Orchestrator, interval time.Duration, log *logrus.Logger) {
	log.WithField("interval", interval.String()).Info("Starting run scheduler")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Run scheduler stopped")
			return
		case <-ticker.C:
			result, err := orch.Run(ctx, orchestrator.Options{})
			if err != nil {
				log.WithError(err).Error("Scheduled run failed")
				continue
			}
			log.WithFields(logrus.Fields{
				"processed": result.Processed,
				"replied":   result.Replied,
				"skipped":   result.Skipped,
				"failed":    result.Failed,
			}).Info("Scheduled run completed")
		}
	}
}
