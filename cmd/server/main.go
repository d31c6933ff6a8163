package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/certilux/cert-app/internal/config"
	"github.com/certilux/cert-app/internal/db"
	"github.com/certilux/cert-app/internal/events"
	"github.com/certilux/cert-app/internal/mailer"
	"github.com/certilux/cert-app/internal/monitoring"
	"github.com/certilux/cert-app/internal/otp"
	"github.com/certilux/cert-app/internal/server"
	"github.com/certilux/cert-app/internal/services"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(cfg.DatabaseDSN); err != nil {
			logger.Fatal("migrate-only failed", zap.Error(err))
		}
		logger.Info("migrations completed; exiting as requested")
		return
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	monitoring.Init()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	codes := otp.CodeStore(otp.NewMemoryStore())
	if cfg.RedisAddr != "" {
		store, err := otp.NewRedisStore(cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"))
		if err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		codes = store
	} else {
		logger.Warn("REDIS_ADDR not set, verification codes held in memory")
	}
	defer codes.Close()

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPHost != "" {
		smtp, err := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			logger.Fatal("smtp setup failed", zap.Error(err))
		}
		mail = smtp
	}

	var pub events.Publisher
	if cfg.KafkaBroker != "" {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBroker)
		if err != nil {
			logger.Warn("kafka unavailable, events disabled", zap.Error(err))
		} else {
			pub = kp
			defer kp.Close()
		}
	}

	if cfg.PaymentCallbackSecret == "" {
		logger.Warn("PAYMENT_CALLBACK_SECRET not set, payment callback endpoint closed")
	}

	svc := services.NewMissionService(dbConn, pub)
	handler := server.New(dbConn, server.Deps{
		Codes:  codes,
		Mail:   mail,
		Svc:    svc,
		Config: cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
