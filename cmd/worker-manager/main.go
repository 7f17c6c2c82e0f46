// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"eligibility-workers/internal/common/camunda"
	"eligibility-workers/internal/common/config"
	"eligibility-workers/internal/common/database"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/observability"
	"eligibility-workers/internal/eligibility/assets"
	"eligibility-workers/internal/eligibility/confidence"
	"eligibility-workers/internal/eligibility/matcher"
	"eligibility-workers/internal/eligibility/rules"
	"eligibility-workers/internal/repository/programs"

	cit "eligibility-workers/internal/workers/eligibility/calculate-income-threshold"
	cal "eligibility-workers/internal/workers/eligibility/check-asset-limit"
	fpm "eligibility-workers/internal/workers/eligibility/find-program-matches"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("ruleSource", cfg.Eligibility.RuleSource),
	)

	obs := observability.New(cfg.Metrics.ServiceName, log)
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	// --- Reference tables ---
	guidelines, err := cfg.Eligibility.GuidelineTable()
	if err != nil {
		zapLog.Fatal("poverty guideline table invalid", zap.Error(err))
	}
	limits, err := cfg.Eligibility.AssetTable()
	if err != nil {
		zapLog.Fatal("asset limit table invalid", zap.Error(err))
	}

	// --- Zeebe client ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Rule store ---
	var store programs.Store
	switch cfg.Eligibility.RuleSource {
	case config.RuleSourceFile:
		catalog, err := programs.LoadCatalogStore(cfg.Eligibility.CatalogPath)
		if err != nil {
			zapLog.Fatal("program catalog failed to load", zap.Error(err))
		}
		store = catalog
		zapLog.Info("Program catalog loaded", zap.String("path", cfg.Eligibility.CatalogPath))
	default:
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		store = programs.NewPostgresStore(pg)
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Candidate cache ---
	var cache *programs.Cache
	if ttl := cfg.Eligibility.CacheDuration(); ttl > 0 {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		cache = programs.NewCache(redis, ttl)
		zapLog.Info("Redis connected successfully", zap.Duration("ttl", ttl))
	}

	repo := programs.NewRepository(store, cache, log.WithFields(map[string]interface{}{"component": "programs"}))

	scorer := confidence.NewScorer()
	engine := rules.NewEngine(scorer, guidelines)
	evaluator := assets.NewEvaluator(limits)
	m := matcher.New(engine, scorer,
		matcher.WithAssets(evaluator),
		matcher.WithRouting(!cfg.Eligibility.DisablePathwayRouting),
	)

	// --- Workers ---
	workers := camunda.NewWorkers(zeebe.GetClient(), log)

	findMatches := fpm.NewHandler(fpm.ConfigFrom(cfg), repo, m, obs, log)
	workers.Start(fpm.TaskType, config.GetWorkerConfig(cfg, fpm.TaskType), findMatches.Handle)

	incomeThreshold := cit.NewHandler(cit.ConfigFrom(cfg), guidelines, obs, log)
	workers.Start(cit.TaskType, config.GetWorkerConfig(cfg, cit.TaskType), incomeThreshold.Handle)

	assetLimit := cal.NewHandler(cal.ConfigFrom(cfg), evaluator, obs, log)
	workers.Start(cal.TaskType, config.GetWorkerConfig(cfg, cal.TaskType), assetLimit.Handle)

	zapLog.Info("Workers registered", zap.Int("count", workers.Count()))

	// --- Health & Metrics ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"workers": workers.Count(),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]interface{}{"status": "ready"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health & metrics server started", zap.Int("port", cfg.Metrics.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	workers.Close(30 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
