package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/sharath018/expo-event-service/config"
	"github.com/sharath018/expo-event-service/database"
	"github.com/sharath018/expo-event-service/internal/auditlog"
	"github.com/sharath018/expo-event-service/internal/event"
	"github.com/sharath018/expo-event-service/internal/integration"
	"github.com/sharath018/expo-event-service/internal/notification"
	"github.com/sharath018/expo-event-service/internal/reports"
	"github.com/sharath018/expo-event-service/internal/usercache"
	"github.com/sharath018/expo-event-service/middleware"
	"github.com/sharath018/expo-event-service/routes"
	"github.com/sharath018/expo-event-service/utils"
)

func main() {
	cfg := config.Load()

	logger, err := utils.NewLogger(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Logger init failed: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("❌ Database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("❌ DB AutoMigrate failed", zap.Error(err))
	}

	// Init Redis
	rdb, err := utils.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("❌ Redis init failed", zap.Error(err))
	}
	defer rdb.Close()
	logger.Info("✅ Connected to Redis", zap.String("addr", cfg.RedisAddr))

	// 🔥 Init Firebase, optional
	fcmClient, err := utils.NewFCMClient(ctx, cfg.FCMCredentialsPath, cfg.FCMProjectID, logger)
	if err != nil {
		logger.Warn("⚠️ Firebase initialization failed, push notifications disabled", zap.Error(err))
	}

	// Collaborating services
	files := integration.NewFileClient(cfg.FileServiceURL, cfg.HTTPClientTimeout, logger)
	authClient := integration.NewAuthClient(cfg.AuthServiceURL, cfg.HTTPClientTimeout, logger)

	profiles := usercache.NewProfileCache(rdb, authClient, usercache.ProfileOptions{
		DefaultTimezone: cfg.DefaultTimezone,
		DefaultLanguage: cfg.DefaultLanguage,
	}, logger)
	permissions := usercache.NewPermissionCache(rdb, authClient, 0, logger)

	// Notifications
	mailer, err := notification.NewEmailSender(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		FromName: cfg.SMTPFromName,
		FromAddr: cfg.SMTPFromEmail,
	}, logger)
	if err != nil {
		logger.Fatal("❌ Mail template init failed", zap.Error(err))
	}

	channels := notification.Channels{
		Mailer:     mailer,
		Realtime:   notification.NewRedisRealtime(rdb),
		Translator: notification.NewTranslator(cfg.DefaultLanguage, logger),
		Logger:     logger,
	}
	if fcmClient != nil {
		channels.Push = notification.NewFCMChannel(fcmClient, logger)
	}
	if len(cfg.KafkaBrokers) > 0 {
		writer := utils.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaEventTopic)
		defer writer.Close()
		channels.Broadcaster = notification.NewKafkaBroadcaster(writer)
		logger.Info("✅ Kafka writer ready", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaEventTopic))
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := middleware.NewHTTPMetrics(registry)

	// Init repositories & services
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))

	eventSvc := event.NewService(event.Dependencies{
		Store:       event.NewRepository(db),
		Files:       files,
		Roles:       authClient,
		Permissions: authClient,
		Profiles:    profiles,
		Notifier:    notification.NewNotifier(channels),
		Auditor:     auditSvc,
		Metrics:     event.NewMetrics(registry),
		Logger:      logger,
	})

	handlers := routes.Handlers{
		Events:  event.NewHandler(eventSvc, logger),
		Reports: reports.NewHandler(eventSvc, reports.NewEventExporter(), logger),
		Audit:   auditlog.NewHandler(auditSvc),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With",
			middleware.HeaderOrganizationID, middleware.HeaderEventID, middleware.HeaderLanguage,
		},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(httpMetrics.Middleware())

	if err := routes.Setup(router, routes.Options{
		Config:      cfg,
		Permissions: permissions,
		Redis:       rdb,
		Gatherer:    registry,
	}, handlers); err != nil {
		logger.Fatal("❌ Route setup failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🚀 Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("❌ Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}
	logger.Info("✅ Server exited")
}
