package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kyu1c/abstract-analysis-Public/internal/config"
	"github.com/kyu1c/abstract-analysis-Public/internal/database"
	"github.com/kyu1c/abstract-analysis-Public/internal/logger"
	"github.com/kyu1c/abstract-analysis-Public/internal/queue"
	"github.com/kyu1c/abstract-analysis-Public/internal/services/classifier"
	"github.com/kyu1c/abstract-analysis-Public/internal/workers"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.New(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("classifier_provider", cfg.AIProvider),
		zap.String("classifier_model", cfg.AIModel),
		zap.Int("cluster_threshold", cfg.ClusterThreshold),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	tagRepo := database.NewTagRepository(db)
	reportRepo := database.NewClusterReportRepository(db)

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	provider := createProvider(cfg, zapLogger, debugMode)

	clusterer := workers.NewClusterer(tagRepo, reportRepo, provider, cfg.ClusterThreshold, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	zapLogger.Info("worker_started_consuming")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}

				if err := clusterer.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("failed_to_process_job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	<-sigChan
	zapLogger.Info("shutdown_signal_received")

	cancel()

	zapLogger.Info("worker_stopped")
}

// createProvider builds the label-grouping provider from configuration.
// A missing API key is not fatal: the clusterer falls back to local
// edit-distance clustering when provider is nil.
func createProvider(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) classifier.Provider {
	if cfg.AIProvider != "openai" {
		zapLogger.Warn("unsupported_classifier_provider_using_fallback",
			zap.String("provider", cfg.AIProvider),
		)
		return nil
	}

	if cfg.OpenAIKey == "" {
		zapLogger.Warn("no_classifier_api_key_using_fallback")
		return nil
	}

	provider := classifier.NewOpenAIProviderWithLogger(
		cfg.OpenAIKey,
		cfg.AIBaseURL,
		cfg.AIModel,
		zapLogger,
		debugMode,
	)

	zapLogger.Info("initialized_classifier_provider",
		zap.String("provider", cfg.AIProvider),
		zap.String("model", cfg.AIModel),
	)

	return provider
}
