package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fathima-sithara/campus-service/internal/activity"
	"github.com/fathima-sithara/campus-service/internal/auth"
	"github.com/fathima-sithara/campus-service/internal/config"
	"github.com/fathima-sithara/campus-service/internal/database"
	"github.com/fathima-sithara/campus-service/internal/handlers"
	"github.com/fathima-sithara/campus-service/internal/mailer"
	"github.com/fathima-sithara/campus-service/internal/media"
	"github.com/fathima-sithara/campus-service/internal/metrics"
	"github.com/fathima-sithara/campus-service/internal/middleware"
	"github.com/fathima-sithara/campus-service/internal/notify"
	"github.com/fathima-sithara/campus-service/internal/repository"
	"github.com/fathima-sithara/campus-service/internal/routes"
	"github.com/fathima-sithara/campus-service/internal/server"
	"github.com/fathima-sithara/campus-service/internal/services"
	"github.com/fathima-sithara/campus-service/internal/utils"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.App.Env, "campus-service")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting campus-service", zap.String("env", cfg.App.Env), zap.Int("port", cfg.App.Port))

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.App.Env,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}
	metrics.Init()

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), time.Minute)
	defer cancelBoot()

	db, mongoClient, err := database.ConnectMongo(bootCtx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectAttempts, logger)
	if err != nil {
		logger.Fatal("mongo unavailable", zap.Error(err))
	}

	users := repository.NewMongoUserRepo(db)
	otps := repository.NewMongoOTPRepo(db, cfg.Security.OtpTTL)
	resets := repository.NewMongoPasswordResetRepo(db, cfg.Security.OtpTTL)
	posts := repository.NewMongoPostRepo(db)
	events := repository.NewMongoEventRepo(db)
	comments := repository.NewMongoCommentRepo(db)
	for name, ensure := range map[string]func(context.Context) error{
		"users":          users.EnsureIndexes,
		"otps":           otps.EnsureIndexes,
		"password_reset": resets.EnsureIndexes,
		"posts":          posts.EnsureIndexes,
		"events":         events.EnsureIndexes,
		"comments":       comments.EnsureIndexes,
	} {
		if err := ensure(bootCtx); err != nil {
			logger.Fatal("index creation failed", zap.String("collection", name), zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = database.ConnectRedis(bootCtx, cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
			rdb = nil
		}
	}

	mail, err := mailer.New(cfg.Email, logger)
	if err != nil {
		logger.Fatal("mailer setup failed", zap.Error(err))
	}

	store, err := media.NewS3Store(bootCtx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.Endpoint, cfg.S3.PublicBaseURL)
	if err != nil {
		logger.Fatal("object storage setup failed", zap.Error(err))
	}
	host := media.NewHost(store, logger)

	var rec activity.Recorder = activity.Nop{}
	var publisher *activity.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = activity.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		rec = publisher
	}

	hub := notify.NewHub(logger)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	sec := cfg.Security

	svc := handlers.Services{
		Signup:       services.NewSignupService(users, otps, mail, rec, sec.PasswordHashCost, sec.OtpTTL, logger),
		Reset:        services.NewPasswordResetService(users, resets, mail, sec.PasswordHashCost, sec.OtpTTL, logger),
		Auth:         services.NewAuthService(users, posts, tokens, logger),
		Profiles:     services.NewProfileService(users, posts, host, logger),
		Graph:        services.NewGraphService(users, rec, logger),
		Content:      services.NewContentService(users, posts, events, comments, host, rec, logger),
		Interactions: services.NewInteractionService(users, posts, events, comments, hub, logger),
	}
	h := handlers.NewHandler(svc, tokens, hub, handlers.Options{
		CookieSecure:   cfg.App.CookieSecure,
		MaxUploadBytes: int64(cfg.App.BodyLimitMB) * 1024 * 1024,
		WS: notify.ConnOptions{
			PingInterval:   cfg.WS.PingInterval,
			WriteDeadline:  cfg.WS.WriteDeadline,
			MaxMessageSize: cfg.WS.MaxMessageSize,
			InboundRPS:     cfg.WS.InboundRPS,
			SendBuffer:     cfg.WS.SendBuffer,
		},
	}, logger)

	guards := routes.Guards{
		Auth:       middleware.Auth(tokens),
		Roles:      middleware.NewRoleGate(users, logger),
		OTPLimit:   middleware.NewRateLimiter(rdb, "rl:send-otp", sec.OtpRateLimit, sec.OtpRateWindow, logger).ByIP(),
		ResetLimit: middleware.NewRateLimiter(rdb, "rl:forgot-password", sec.OtpRateLimit, sec.OtpRateWindow, logger).ByIP(),
	}
	app := server.New(cfg, h, guards, logger)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Info("server listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("fiber shutdown error", zap.Error(err))
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", zap.Error(err))
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", zap.Error(err))
		}
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		logger.Error("mongo disconnect error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
