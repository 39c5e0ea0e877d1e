package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"distress-server/internal/config"
	handlers "distress-server/internal/handlers/shared"
	"distress-server/internal/middleware"
	"distress-server/internal/services"
	"distress-server/internal/utils"
	"distress-server/pkg/logger"
	"distress-server/pkg/websocket"
	"distress-server/routes"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  cfg.App.LogOutput,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Server stopped")
	}
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cleanup closers
	defer cleanup.closeAll(appLogger)

	repos, err := newRepositories(ctx, cfg, appLogger, &cleanup)
	if err != nil {
		return err
	}

	smsProvider, err := newSMSProvider(ctx, cfg.SMS, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create SMS provider: %w", err)
	}
	emailProvider := newEmailProvider(cfg.SMTP, appLogger)

	store, err := newStorage(ctx, cfg.Storage, &cleanup)
	if err != nil {
		return fmt.Errorf("failed to create storage provider: %w", err)
	}

	publisher, err := newPublisher(ctx, cfg.MQTT, appLogger, &cleanup)
	if err != nil {
		return fmt.Errorf("failed to create drone publisher: %w", err)
	}

	healthChecks := map[string]routes.HealthCheck{}
	if repos.ping != nil {
		healthChecks["mongodb"] = repos.ping
	}

	var redisClient *redis.Client
	if redisCache := newRedis(ctx, cfg.Redis, cfg.App.Name, appLogger, &cleanup); redisCache != nil {
		redisClient = redisCache.Client()
		healthChecks["redis"] = redisCache.Ping
	}
	limiterStore, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		return err
	}
	escalationLimit, err := middleware.RateLimit(limiterStore, cfg.Security.EscalationRate, appLogger)
	if err != nil {
		return err
	}
	loginLimit, err := middleware.RateLimit(limiterStore, cfg.Security.LoginRate, appLogger)
	if err != nil {
		return err
	}

	// Realtime hub for audio relay and admin notifications
	hub := websocket.NewHub(appLogger)
	go hub.Run(ctx)

	tokens := utils.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.JWTRefreshTokenTTL)

	notifier := services.NewNotificationService(
		smsProvider,
		emailProvider,
		newGeocoder(cfg.Maps, appLogger),
		cfg.Notification,
		cfg.Maps.LookupTimeout,
		appLogger,
	)
	distressService := services.NewDistressService(repos.alerts, repos.users, notifier, hub, cfg.Notification, appLogger)
	authService := services.NewAuthService(repos.users, tokens, cfg.Security, appLogger)
	userService := services.NewUserService(repos.users, tokens, cfg.Security, appLogger)
	deployService := services.NewDeployService(repos.alerts, publisher, cfg.MQTT.DeployTopic(), cfg.MQTT.DeployMessage, appLogger)
	audioService := services.NewAudioService(repos.alerts, store, appLogger)

	audioHandler := websocket.NewHandler(hub, websocket.Options{
		ReadBufferSize:   cfg.WebSocket.ReadBufferSize,
		WriteBufferSize:  cfg.WebSocket.WriteBufferSize,
		HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
		PongTimeout:      cfg.WebSocket.PongTimeout,
		WriteTimeout:     cfg.WebSocket.WriteTimeout,
		MaxMessageSize:   cfg.WebSocket.MaxMessageSize,
		AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
	}, handlers.AudioStopFunc(audioService), appLogger)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.NewRouter(&routes.Dependencies{
		Tokens:          tokens,
		AuthHandler:     handlers.NewAuthHandler(authService),
		UserHandler:     handlers.NewUserHandler(userService),
		DistressHandler: handlers.NewDistressHandler(distressService),
		DeployHandler:   handlers.NewDeployHandler(deployService),
		AudioHandler:    audioHandler,
		EscalationLimit: escalationLimit,
		LoginLimit:      loginLimit,
		AllowedOrigins:  cfg.Security.CORSAllowedOrigins,
		AudioPath:       cfg.WebSocket.Path,
		Version:         cfg.App.Version,
		HealthChecks:    healthChecks,
		Logger:          appLogger,
	})
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}
	if cfg.Storage.Provider == "local" {
		router.Static("/uploads", cfg.Storage.Local.BasePath)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.WithFields(logger.Fields{
			"addr":         server.Addr,
			"sms":          smsProvider.Name(),
			"email":        emailProvider.Name(),
			"storage":      store.Name(),
			"publisher":    publisher.Name(),
			"notification": cfg.Notification.Mode,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		appLogger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Warn("Graceful shutdown timed out")
	}

	// Detached notification fan-outs still hold provider clients.
	distressService.Wait()
	return nil
}
