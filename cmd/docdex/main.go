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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/answer"
	"github.com/kailas-cloud/docdex/internal/config"
	"github.com/kailas-cloud/docdex/internal/corpus"
	"github.com/kailas-cloud/docdex/internal/db"
	dbBadger "github.com/kailas-cloud/docdex/internal/db/badger"
	dbRedis "github.com/kailas-cloud/docdex/internal/db/redis"
	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/index"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	"github.com/kailas-cloud/docdex/internal/metrics"
	"github.com/kailas-cloud/docdex/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/docdex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/docdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/docdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	queryuc "github.com/kailas-cloud/docdex/internal/usecase/query"
	rebuilduc "github.com/kailas-cloud/docdex/internal/usecase/rebuild"
	"github.com/kailas-cloud/docdex/internal/vectorizer"
	"github.com/kailas-cloud/docdex/internal/vectorizer/tfidf"
	"github.com/kailas-cloud/docdex/internal/version"
)

func main() {
	// Load .env before reading ENV or expanding ${VAR} in the config file.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("data_dir", cfg.Corpus.DataDir),
		zap.String("index_path", cfg.Index.Path),
	)

	ctx := context.Background()

	// Register domain metrics explicitly (no init())
	metrics.RegisterIndexMetrics()
	metrics.RegisterEmbeddingMetrics()

	// Create the embedding cache store based on driver. "none" runs without
	// a persistent cache, which is the default for the tfidf model.
	var store db.Store
	switch cfg.Cache.Driver {
	case "none":
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Redis.Addrs,
			Username: cfg.Cache.Redis.Username,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	case "badger":
		store, err = dbBadger.NewStore(dbBadger.Config{
			Dir:      cfg.Cache.Badger.Dir,
			InMemory: cfg.Cache.Badger.InMemory,
			Logger:   logger,
		})
	default:
		logger.Fatal("Unknown cache driver", zap.String("driver", cfg.Cache.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	if store != nil {
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.Redis.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.String("driver", cfg.Cache.Driver))
	}

	vectorizers := vectorizer.NewFactory(&vectorizer.Config{
		Model: cfg.Embedding.Model,
		TFIDF: tfidf.Config{
			MaxFeatures: cfg.Embedding.TFIDF.MaxFeatures,
			MaxDocRatio: cfg.Embedding.TFIDF.MaxDocRatio,
			MinDocCount: cfg.Embedding.TFIDF.MinDocCount,
		},
		OpenAI: openaiEmb.Config{
			APIKey:     cfg.Embedding.OpenAI.APIKey,
			BaseURL:    cfg.Embedding.OpenAI.BaseURL,
			Model:      cfg.Embedding.OpenAI.Model,
			Dimensions: cfg.Embedding.OpenAI.Dimensions,
			Logger:     logger,
		},
		RemoteDecorators: remoteDecorators(store, time.Duration(cfg.Cache.TTLSec)*time.Second, cfg.Cache.LRUSize, logger),
		Logger:           logger,
	})

	source := corpus.NewFS(corpus.FSConfig{
		Dir:         cfg.Corpus.DataDir,
		Patterns:    cfg.Corpus.Patterns,
		Parallelism: cfg.Corpus.Parallelism,
		Logger:      logger,
	})

	indexes := index.NewStore(vectorizers, index.StoreConfig{
		EmbedChunk: cfg.Index.EmbedChunk,
		Workers:    cfg.Index.BuildWorkers,
		Logger:     logger,
	})
	handle := index.NewHandle()

	// Load the persisted index if present. The server still starts without
	// one; queries answer 503 until a rebuild succeeds.
	if idx, err := indexes.Load(ctx, cfg.Index.Path); err != nil {
		logger.Warn("Failed to load index on startup, server starts without one",
			zap.String("path", cfg.Index.Path),
			zap.Error(err),
		)
	} else {
		handle.Swap(idx)
		metrics.IndexDocuments.Set(float64(idx.Len()))
		logger.Info("Index loaded",
			zap.String("path", cfg.Index.Path),
			zap.Int("num_documents", idx.Len()),
			zap.String("model", idx.ModelName()),
		)
	}

	// Answer backends. OpenAI is only offered when a key is configured so
	// the factory can fall back to the simple synthesizer without one.
	factoryCfg := &answer.FactoryConfig{
		Local: answer.NewLocal(&answer.LocalConfig{
			ServerURL: cfg.Answer.Local.ServerURL,
			Model:     cfg.Answer.Local.Model,
			Logger:    logger,
		}),
		GPT4All: answer.NewGPT4All(&answer.GPT4AllConfig{
			BaseURL: cfg.Answer.GPT4All.BaseURL,
			Model:   cfg.Answer.GPT4All.Model,
			Logger:  logger,
		}),
		Logger: logger,
	}
	if cfg.Answer.OpenAI.APIKey != "" {
		factoryCfg.OpenAI = answer.NewOpenAI(&answer.OpenAIConfig{
			APIKey:  cfg.Answer.OpenAI.APIKey,
			BaseURL: cfg.Answer.OpenAI.BaseURL,
			Model:   cfg.Answer.OpenAI.Model,
			Logger:  logger,
		})
	}
	answers := answer.NewFactory(factoryCfg)

	// Create use case services
	querySvc := queryuc.New(handle, indexes, answers)
	rebuildSvc := rebuilduc.New(handle, indexes, source, cfg.Index.Path)
	healthSvc := healthuc.New(handle)

	// Create chi server
	server := chiTransport.NewServer(querySvc, rebuildSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// remoteDecorators assembles the layers around a remote vectorizer, innermost
// first: KV cache -> LRU -> instrumented. The tfidf backend never sees them.
func remoteDecorators(store db.Store, ttl time.Duration, lruSize int, logger *zap.Logger) []vectorizer.Decorator {
	var decorators []vectorizer.Decorator
	if store != nil {
		decorators = append(decorators, func(v domain.Vectorizer) domain.Vectorizer {
			return embcache.New(v, store, ttl, metrics.EmbeddingCacheTotal, logger)
		})
	}
	decorators = append(decorators,
		func(v domain.Vectorizer) domain.Vectorizer {
			return embcache.NewLRU(v, lruSize)
		},
		func(v domain.Vectorizer) domain.Vectorizer {
			return embeddinguc.NewInstrumentedVectorizer(v, logger)
		},
	)
	return decorators
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]map[string]string{
						"error": {
							"code":    "internal_error",
							"message": "internal error",
						},
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
