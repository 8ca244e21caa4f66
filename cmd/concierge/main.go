package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/app"
	"github.com/kailas-cloud/concierge/internal/config"
	"github.com/kailas-cloud/concierge/internal/domain/summary"
	logpkg "github.com/kailas-cloud/concierge/internal/logger"
	"github.com/kailas-cloud/concierge/internal/metrics"
	chiTransport "github.com/kailas-cloud/concierge/internal/transport/chi"
	answeruc "github.com/kailas-cloud/concierge/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/concierge/internal/usecase/health"
	retrievaluc "github.com/kailas-cloud/concierge/internal/usecase/retrieval"
	"github.com/kailas-cloud/concierge/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(logpkg.Options{Env: env, Level: cfg.Logging.Level, Service: "concierge"})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting concierge API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("built", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	// explicit registration, no init()
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	embedders := app.NewEmbedders(cfg.Embedding, cfg.Storage.KeyPrefix, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	cols := app.NewCollections(&cfg, store, embedders.Query)
	rc, err := app.SelectContext(ctx, cols.Combined, cols.Business, cols.Event, logger)
	if err != nil {
		logger.Fatal("No searchable collection; run concierge-indexer build first", zap.Error(err))
	}

	retrieval := retrievaluc.New(rc, metrics.RetrievalSearchDuration).
		WithTimeout(cfg.Retrieval.SearchTimeout)
	answers := answeruc.New(retrieval, summary.New()).WithMetrics(answeruc.Metrics{
		Classification: metrics.QueryClassificationTotal,
		Results:        metrics.AnswerResults,
		Rules:          metrics.SummaryRuleTotal,
	})

	var counters []healthuc.Counter
	for _, c := range rc.Collections() {
		if cc, ok := c.(healthuc.Counter); ok {
			counters = append(counters, cc)
		}
	}
	health := healthuc.New(store, embedders.Provider, counters...)

	server := chiTransport.NewServer(answers, health, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.Recoverer(logger))
	r.Use(chiTransport.WideEvent(logger))
	r.Use(chiTransport.RequireAPIKey(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.String("mode", string(rc.Mode())),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
