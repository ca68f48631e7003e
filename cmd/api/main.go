package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/guhospital/hospital-api/internal/config"
	"github.com/guhospital/hospital-api/internal/email"
	"github.com/guhospital/hospital-api/internal/handler"
	announcementHandler "github.com/guhospital/hospital-api/internal/handler/announcement"
	appointmentHandler "github.com/guhospital/hospital-api/internal/handler/appointment"
	authHandler "github.com/guhospital/hospital-api/internal/handler/auth"
	billingHandler "github.com/guhospital/hospital-api/internal/handler/billing"
	doctorHandler "github.com/guhospital/hospital-api/internal/handler/doctor"
	orderHandler "github.com/guhospital/hospital-api/internal/handler/order"
	patientHandler "github.com/guhospital/hospital-api/internal/handler/patient"
	pharmacyHandler "github.com/guhospital/hospital-api/internal/handler/pharmacy"
	prescriptionHandler "github.com/guhospital/hospital-api/internal/handler/prescription"
	roomHandler "github.com/guhospital/hospital-api/internal/handler/room"
	"github.com/guhospital/hospital-api/internal/invoice"
	"github.com/guhospital/hospital-api/internal/middleware"
	"github.com/guhospital/hospital-api/internal/model"
	"github.com/guhospital/hospital-api/internal/repository/postgres"
	"github.com/guhospital/hospital-api/internal/router"
	announcementService "github.com/guhospital/hospital-api/internal/service/announcement"
	appointmentService "github.com/guhospital/hospital-api/internal/service/appointment"
	authService "github.com/guhospital/hospital-api/internal/service/auth"
	billingService "github.com/guhospital/hospital-api/internal/service/billing"
	doctorService "github.com/guhospital/hospital-api/internal/service/doctor"
	orderService "github.com/guhospital/hospital-api/internal/service/order"
	patientService "github.com/guhospital/hospital-api/internal/service/patient"
	pharmacyService "github.com/guhospital/hospital-api/internal/service/pharmacy"
	prescriptionService "github.com/guhospital/hospital-api/internal/service/prescription"
	roomService "github.com/guhospital/hospital-api/internal/service/room"
	"github.com/guhospital/hospital-api/internal/storage"
	"github.com/guhospital/hospital-api/pkg/auth"
	"github.com/guhospital/hospital-api/pkg/logger"
	"github.com/guhospital/hospital-api/pkg/messaging/redis"
	"github.com/guhospital/hospital-api/pkg/metrics"
	"github.com/guhospital/hospital-api/pkg/security"
	"github.com/guhospital/hospital-api/pkg/worker"
)

func main() {
	// .env is optional, real deployments use the config file and environment
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	appLogger := logger.NewLogger(&logger.Config{Level: level, TimeFormat: time.RFC3339, Output: os.Stdout})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("hospital", "api")

	// Repositories
	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	billingRepo := postgres.NewBillingRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)
	pharmacyRepo := postgres.NewPharmacyRepository(base)
	orderRepo := postgres.NewOrderRepository(base)
	announcementRepo := postgres.NewAnnouncementRepository(base)
	roomRepo := postgres.NewRoomRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	// Infrastructure
	jwtSvc := auth.NewJWTService(auth.JWTConfig{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})
	hasher := security.NewBcryptHasher(0)
	emailSvc := email.NewSMTPService(cfg.SMTP)

	renderer, err := invoice.NewPDFRenderer(cfg.Storage.InvoiceDir)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to initialize invoice renderer")
	}
	uploadStore, err := storage.NewDiskStore(cfg.Storage.UploadDir)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to initialize upload store")
	}

	// Services
	authSvc := authService.NewService(userRepo, tokenRepo, hasher, jwtSvc, emailSvc, zl)
	patientSvc := patientService.NewService(patientRepo, userRepo, outboxRepo, hasher, emailSvc, uploadStore, zl)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, patientRepo, billingRepo, outboxRepo, renderer, m, zl)
	billingSvc := billingService.NewService(billingRepo, outboxRepo, renderer, m, zl)
	doctorSvc := doctorService.NewService(doctorRepo)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, pharmacyRepo, outboxRepo, zl)
	pharmacySvc := pharmacyService.NewService(pharmacyRepo)
	orderSvc := orderService.NewService(orderRepo, patientRepo, outboxRepo, zl)
	announcementSvc := announcementService.NewService(announcementRepo, userRepo, outboxRepo, emailSvc, zl)
	roomSvc := roomService.NewService(roomRepo)

	// Handlers
	handlers := router.Handlers{
		Base:         handler.NewHandler(),
		Auth:         authHandler.NewHandler(authSvc),
		Patient:      patientHandler.NewHandler(patientSvc),
		Appointment:  appointmentHandler.NewHandler(appointmentSvc),
		Billing:      billingHandler.NewHandler(billingSvc),
		Doctor:       doctorHandler.NewHandler(doctorSvc),
		Prescription: prescriptionHandler.NewHandler(prescriptionSvc),
		Pharmacy:     pharmacyHandler.NewHandler(pharmacySvc),
		Lab:          orderHandler.NewHandler(orderSvc, model.OrderKindLab),
		Radiology:    orderHandler.NewHandler(orderSvc, model.OrderKindRadiology),
		Announcement: announcementHandler.NewHandler(announcementSvc),
		Room:         roomHandler.NewHandler(roomSvc),
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(authMiddleware, handlers, router.Config{
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxUploadBytes: cfg.Storage.MaxUploadMB << 20,
		MetricsPrefix:  "hospital_api",
	})
	r.Setup()

	// Outbox drain to the message broker
	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL}, &zl)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.DefaultOutboxProcessorConfig(), appLogger, m)
	go processor.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zl.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Fatal().Err(err).Msg("server forced to shutdown")
	}

	zl.Info().Msg("server exited properly")
}
