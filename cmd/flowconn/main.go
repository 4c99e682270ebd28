package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flowconn/internal/config"
	"github.com/kailas-cloud/flowconn/internal/db/cosmos"
	dbRedis "github.com/kailas-cloud/flowconn/internal/db/redis"
	"github.com/kailas-cloud/flowconn/internal/domain/search/catalog"
	"github.com/kailas-cloud/flowconn/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/flowconn/internal/logger"
	"github.com/kailas-cloud/flowconn/internal/metrics"
	documentrepo "github.com/kailas-cloud/flowconn/internal/repository/document"
	historyrepo "github.com/kailas-cloud/flowconn/internal/repository/history"
	chiTransport "github.com/kailas-cloud/flowconn/internal/transport/chi"
	openaiChat "github.com/kailas-cloud/flowconn/internal/transport/openai"
	"github.com/kailas-cloud/flowconn/internal/transport/searchapi"
	"github.com/kailas-cloud/flowconn/internal/transport/vertexchat"
	chatuc "github.com/kailas-cloud/flowconn/internal/usecase/chat"
	documentuc "github.com/kailas-cloud/flowconn/internal/usecase/document"
	healthuc "github.com/kailas-cloud/flowconn/internal/usecase/health"
	historyuc "github.com/kailas-cloud/flowconn/internal/usecase/history"
	searchuc "github.com/kailas-cloud/flowconn/internal/usecase/search"
	"github.com/kailas-cloud/flowconn/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting flowconn connector host",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("chat_provider", cfg.Chat.Provider),
		zap.String("history_driver", cfg.History.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterConnectorMetrics()
	metrics.RegisterChatMetrics()

	ctx := context.Background()
	healthSvc := healthuc.New()

	// A connector that fails to build is left nil; its routes answer 503.
	searchSvc := buildSearch(cfg.Search, logger)

	historyStore, closeHistory := buildHistoryStore(ctx, cfg.History, healthSvc, logger)
	defer closeHistory()

	// Pass nil interface (not typed nil pointer!) when history is not configured.
	var historySvc *historyuc.Service
	var recorder chatuc.Recorder
	if historyStore != nil {
		historySvc, err = historyuc.New(historyStore, logger)
		if err != nil {
			logger.Error("History connector disabled", zap.Error(err))
		} else {
			recorder = historySvc
		}
	}

	chatSvc := buildChat(cfg.Chat, recorder, healthSvc, logger)
	docSvc := buildDocuments(cfg.Documents, healthSvc, logger)

	server := chiTransport.NewServer(chiTransport.Services{
		Search:    searchSvc,
		Chat:      chatSvc,
		Documents: docSvc,
		History:   historySvc,
		Health:    healthSvc,
	}, version.Version, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware("/metrics"))
	server.Routes(r)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func buildSearch(cfg config.SearchConfig, logger *zap.Logger) *searchuc.Service {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	client, err := searchapi.New(searchapi.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Timeout: timeout})
	if err != nil {
		logger.Error("Search connector disabled", zap.Error(err))
		return nil
	}
	cat, err := catalog.New(cfg.Collections)
	if err != nil {
		logger.Error("Search connector disabled", zap.Error(err))
		return nil
	}
	svc, err := searchuc.New(client, request.Limits{Catalog: cat, MaxResults: cfg.MaxResults}, timeout, logger)
	if err != nil {
		logger.Error("Search connector disabled", zap.Error(err))
		return nil
	}
	logger.Info("Search connector ready",
		zap.Strings("collections", cat.Names()),
		zap.String("default_collection", cat.Default()),
	)
	return svc
}

func buildChat(
	cfg config.ChatConfig, recorder chatuc.Recorder, health *healthuc.Service, logger *zap.Logger,
) *chatuc.Service {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	var completer chatuc.Completer
	switch cfg.Provider {
	case "openai":
		c, err := openaiChat.NewCompleter(&openaiChat.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("Chat connector disabled", zap.Error(err))
			return nil
		}
		health.Register("chat", c)
		completer = c
	default:
		c, err := vertexchat.New(vertexchat.Config{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey, Timeout: timeout})
		if err != nil {
			logger.Error("Chat connector disabled", zap.Error(err))
			return nil
		}
		completer = c
	}

	svc, err := chatuc.New(completer, recorder, timeout, logger)
	if err != nil {
		logger.Error("Chat connector disabled", zap.Error(err))
		return nil
	}
	logger.Info("Chat connector ready", zap.String("provider", cfg.Provider), zap.Bool("history", recorder != nil))
	return svc
}

// buildHistoryStore returns nil when history is disabled or unreachable.
func buildHistoryStore(
	ctx context.Context, cfg config.HistoryConfig, health *healthuc.Service, logger *zap.Logger,
) (historyuc.Store, func()) {
	noop := func() {}

	switch cfg.Driver {
	case "":
		logger.Info("Chat history disabled")
		return nil, noop
	case "valkey", "redis":
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Addrs, Password: cfg.Password})
		if err != nil {
			logger.Error("History store disabled", zap.Error(err))
			return nil, noop
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			logger.Error("History store not ready", zap.Error(err))
			store.Close()
			return nil, noop
		}
		health.Register("history", store)
		logger.Info("Connected to history store", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
		return historyrepo.NewListRepo(store, cfg.KeyPrefix, time.Duration(cfg.TTLHours)*time.Hour), store.Close
	case "cosmos":
		client, err := cosmos.NewClient(cfg.Cosmos.Endpoint, cfg.Cosmos.Key)
		if err != nil {
			logger.Error("History store disabled", zap.Error(err))
			return nil, noop
		}
		health.Register("history", healthuc.CheckerFunc(func(ctx context.Context) error {
			return client.Ping(ctx, cfg.Cosmos.Database, cfg.Cosmos.Container)
		}))
		return historyrepo.NewItemRepo(client, cfg.Cosmos.Database, cfg.Cosmos.Container), noop
	default:
		logger.Error("Unknown history driver", zap.String("driver", cfg.Driver))
		return nil, noop
	}
}

func buildDocuments(cfg config.DocumentsConfig, health *healthuc.Service, logger *zap.Logger) *documentuc.Service {
	if cfg.Cosmos.Endpoint == "" {
		logger.Info("Document connector disabled: no cosmos endpoint configured")
		return nil
	}
	client, err := cosmos.NewClient(cfg.Cosmos.Endpoint, cfg.Cosmos.Key)
	if err != nil {
		logger.Error("Document connector disabled", zap.Error(err))
		return nil
	}
	repo := documentrepo.New(client, cfg.Cosmos.Database, cfg.Cosmos.Container)
	svc, err := documentuc.New(repo, cfg.Cosmos.Database, cfg.Cosmos.Container, logger)
	if err != nil {
		logger.Error("Document connector disabled", zap.Error(err))
		return nil
	}
	health.Register("documents", repo)
	return svc.WithPagination(cfg.DefaultLimit, cfg.MaxLimit).
		WithTimeout(time.Duration(cfg.TimeoutSec) * time.Second)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternal,
						Message: "internal error",
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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
