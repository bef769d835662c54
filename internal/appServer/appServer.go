package appServer

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/eventsphere/config"
	repository "github.com/ds124wfegd/eventsphere/internal/database/postgres"
	cache "github.com/ds124wfegd/eventsphere/internal/database/redis"
	"github.com/ds124wfegd/eventsphere/internal/pkg/kafka"
	"github.com/ds124wfegd/eventsphere/internal/rabbitMQ"
	"github.com/ds124wfegd/eventsphere/internal/service"
	"github.com/ds124wfegd/eventsphere/internal/transport"
	"github.com/ds124wfegd/eventsphere/internal/worker"
	"github.com/ds124wfegd/eventsphere/pkg/postgres"
	"github.com/ds124wfegd/eventsphere/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// notifier is what the registration service and the health route need.
type notifier interface {
	service.Notifier
	transport.HealthChecker
}

func NewServer(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(ctx, db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	eventRepo := repository.NewEventRepository(db)
	rsvpRepo := repository.NewRSVPRepository(db)
	volunteerRepo := repository.NewVolunteerRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Event cache
	var eventCache cache.EventCache = cache.NoopCache{}
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logrus.Warnf("Redis unavailable, event cache disabled: %v", err)
		} else {
			defer redisClient.Close()
			eventCache = cache.NewCacheRepository(redisClient, cfg.Redis.CacheTTL)
		}
	}

	// Notifications
	var notify notifier = rabbitMQ.LogNotifier{}
	if cfg.RabbitMQ.URL != "" {
		mq, err := rabbitMQ.NewRabbitMQ(rabbitMQ.RabbitMQConfig{
			URL:       cfg.RabbitMQ.URL,
			QueueName: cfg.RabbitMQ.QueueName,
		})
		if err != nil {
			logrus.Errorf("Failed to initialize RabbitMQ: %v. Notifications go to the log", err)
		} else {
			logrus.Info("RabbitMQ notifier initialized")
			notify = mq
		}
	} else {
		logrus.Warn("RabbitMQ url not provided, notifications go to the log")
	}
	defer notify.Close()

	// Purge audit
	auditor := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer auditor.Close()

	// Initialize services
	eventService := service.NewEventService(eventRepo, eventCache, auditor)
	registrationService := service.NewRegistrationService(eventRepo, rsvpRepo, volunteerRepo, notify)
	moderationService := service.NewModerationService(eventService, eventRepo, userRepo)
	profileService := service.NewProfileService(userRepo)

	// Initialize cleanup worker
	cleanupWorker := worker.NewEventCleanupWorker(eventService, worker.Config{
		Schedule:   cfg.Worker.CleanupSchedule,
		Retention:  cfg.Worker.Retention,
		RunTimeout: cfg.Worker.RunTimeout,
		RunOnStart: cfg.Worker.RunOnStart,
	})
	if err := cleanupWorker.Start(ctx); err != nil {
		logrus.Fatalf("Failed to start cleanup worker: %v", err)
	}
	logrus.Info("Cleanup worker started")

	// Setup HTTP server
	if cfg.IsProduction() || cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := transport.InitRoutes(transport.Handlers{
		Event:        transport.NewEventHandler(eventService),
		Registration: transport.NewRegistrationHandler(registrationService, eventService),
		Export:       transport.NewExportHandler(eventService, registrationService),
		Admin:        transport.NewAdminHandler(moderationService),
		Profile:      transport.NewProfileHandler(profileService),
	}, transport.RouterConfig{
		JWTSecret:      cfg.JWT.Secret,
		RequestTimeout: cfg.Server.RequestTimeout,
		AppVersion:     cfg.Server.AppVersion,
		Notifier:       notify,
	})

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("addr", cfg.GetServerAddress()).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	cancel()
	cleanupWorker.Stop()
}
