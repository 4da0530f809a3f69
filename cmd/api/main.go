package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/api/router"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/callback"
	appconfig "github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/config"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/detection"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/engagement"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/honeypot"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/http/handlers"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/observability/metrics"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/persona"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/session"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

func main() {
	// Load .env if present; real deployments use the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting agentic-honeypot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Response generation: Gemini when a key is configured, canned
	// persona replies otherwise.
	var generator engagement.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := engagement.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to initialize gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		generator = engagement.NewResilientGenerator(
			gemini,
			engagement.NewStaticGenerator(nil),
			cfg.GenerationTimeout,
			logger,
		)
	} else {
		logger.Warn("GEMINI_API_KEY not set, using canned responses only")
		generator = engagement.NewStaticGenerator(nil)
	}

	// Detection system: heuristic text analysis plus URL reputation.
	signals := []detection.Signal{detection.NewTextAnalyst()}
	if cfg.SafeBrowsingAPIKey != "" {
		reputation := detection.NewSafeBrowsingClient(cfg.SafeBrowsingAPIKey, cfg.SafeBrowsingBaseURL)
		signals = append(signals, detection.NewLinkChecker(reputation, logger))
	}
	detector := detection.NewSystem(detection.NewEngine(cfg.ConfidenceThreshold), logger, signals...)

	registry := prometheus.NewRegistry()
	honeypotMetrics := metrics.NewHoneypotMetrics(registry)

	factory := func(sessionID string, scamType detection.ScamType, platform persona.Platform) *engagement.Agent {
		return engagement.NewAgent(engagement.AgentConfig{
			SessionID: sessionID,
			ScamType:  scamType,
			Platform:  platform,
			MaxTurns:  cfg.MaxConversationTurns,
			MinDelay:  cfg.MinResponseDelay,
			MaxDelay:  cfg.MaxResponseDelay,
			Generator: generator,
			Logger:    logger,
		})
	}
	manager := session.NewManager(factory, cfg.SessionTimeout, logger,
		session.WithMetrics(honeypotMetrics),
	)

	deliverer := callback.NewDeliverer(cfg.CallbackEndpoint, cfg.CallbackAPIKey, logger,
		callback.WithMaxAttempts(cfg.CallbackMaxAttempts),
		callback.WithBaseDelay(cfg.CallbackBaseDelay),
		callback.WithHTTPClient(&http.Client{Timeout: cfg.CallbackTimeout}),
	)

	serviceOpts := []honeypot.ServiceOption{honeypot.WithMetrics(honeypotMetrics)}
	archiveEnabled := false
	if cfg.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(redisOpts)
		defer client.Close()
		serviceOpts = append(serviceOpts, honeypot.WithArchive(session.NewArchive(client, cfg.ArchiveTTL)))
		archiveEnabled = true
	}

	svc := honeypot.NewService(detector, manager, deliverer, logger, serviceOpts...)
	svc.Run(ctx, cfg.SessionSweepInterval)

	r := router.New(&router.Config{
		Logger:         logger,
		Honeypot:       handlers.NewHoneypotHandler(svc, logger),
		Health:         handlers.NewHealthHandler(svc, archiveEnabled, cfg.GeminiAPIKey != "", cfg.CallbackTimeout),
		APIKey:         cfg.APIKey,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
