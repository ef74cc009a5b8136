package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"resumatch-gateway/internal/analysis"
	"resumatch-gateway/internal/cache"
	"resumatch-gateway/internal/handlers"
	"resumatch-gateway/internal/httpserver"
	"resumatch-gateway/internal/llm"
	"resumatch-gateway/internal/metrics"
	"resumatch-gateway/pkg/logging/logging"
)

// redisProbeTimeout bounds the startup connectivity check. A shared
// backend that cannot answer a ping this fast is treated as absent for
// the whole process lifetime.
const redisProbeTimeout = 1 * time.Second

type Config struct {
	Port          string
	APIKey        string
	Model         string
	LLMBaseURL    string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	CacheTTL      time.Duration
}

func LoadConfig() Config {
	ttl := time.Hour
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	return Config{
		Port:          getenv("PORT", "9000"),
		APIKey:        os.Getenv("QWEN_API_KEY"),
		Model:         getenv("MODEL_NAME", "qwen-plus"),
		LLMBaseURL:    getenv("LLM_BASE_URL", llm.DefaultBaseURL),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getenv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      ttl,
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("gateway exited with error: %v", err)
	}
}

func run() error {
	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg := LoadConfig()

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("model", cfg.Model),
		zap.String("llm_base_url", cfg.LLMBaseURL),
		zap.String("redis_host", cfg.RedisHost),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Bool("api_key_present", cfg.APIKey != ""),
	)
	if cfg.APIKey == "" {
		// Startup still succeeds: cached results remain servable and
		// the missing key surfaces per request.
		logger.Warn("QWEN_API_KEY is not set, analysis requests will fail")
	}

	// ----- Cache backend selection (once, at startup) -----
	backend := "memory"
	var redisClient *redis.Client
	if cfg.RedisHost != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:        cfg.RedisHost + ":" + cfg.RedisPort,
			Password:    cfg.RedisPassword,
			DialTimeout: redisProbeTimeout,
		})

		probeCtx, cancel := context.WithTimeout(context.Background(), redisProbeTimeout)
		err := redisClient.Ping(probeCtx).Err()
		cancel()

		if err != nil {
			// Degrade, never fail: the shared cache is an optimization.
			logger.Warn("redis unreachable, falling back to in-process cache",
				zap.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
				zap.Error(err),
			)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			backend = "redis"
			logger.Info("redis connection established",
				zap.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
			)
		}
	} else {
		logger.Info("REDIS_HOST not set, using in-process cache")
	}

	resultCache := cache.NewResultCache(cache.Config{
		Backend: backend,
		TTL:     cfg.CacheTTL,
	}, redisClient)
	resultCache = cache.NewLoggingResultCache(resultCache)

	// ----- LLM client -----
	llmClient, err := llm.NewClient(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.APIKey,
	}, logger)
	if err != nil {
		return err
	}
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// ----- Pipeline + handlers -----
	analyzer := analysis.NewAnalyzer(resultCache, cfg.CacheTTL, llmClient, cfg.Model)
	analyzeHandler := handlers.NewAnalyzeHandler(analyzer)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, analyzeHandler)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting gateway",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", backend),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
