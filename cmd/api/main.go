package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cascadia-commons/portal-api/internal/config"
	"github.com/cascadia-commons/portal-api/internal/database"
	"github.com/cascadia-commons/portal-api/internal/handler"
	"github.com/cascadia-commons/portal-api/internal/middleware"
	"github.com/cascadia-commons/portal-api/internal/models"
	"github.com/cascadia-commons/portal-api/internal/observability"
	"github.com/cascadia-commons/portal-api/internal/repository"
	"github.com/cascadia-commons/portal-api/internal/router"
	"github.com/cascadia-commons/portal-api/internal/service"
	"github.com/cascadia-commons/portal-api/pkg/ai"
	cloud "github.com/cascadia-commons/portal-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Member{},
		&models.Membership{},
		&models.HourLog{},
		&models.VolunteerAssignment{},
		&models.Event{},
		&models.EventRegistration{},
		&models.Announcement{},
		&models.PaymentRecord{},
		&models.ActivityLog{},
		&models.FeatureFlag{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudinaryService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudinaryService
	} else {
		logger.Warn().Msg("cloudinary not configured, uploads disabled")
	}

	var assistant ai.Assistant
	if cfg.OpenAIAPIKey != "" {
		assistant, err = ai.NewOpenAIAssistant(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AssistantModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create assistant: %v", err)
		}
	} else {
		logger.Warn().Msg("openai not configured, assistant disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	memberRepo := repository.NewMemberRepository(db)
	hourLogRepo := repository.NewHourLogRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	eventRepo := repository.NewEventRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	featureFlagRepo := repository.NewFeatureFlagRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	notifier := service.NewNATSNotifier(natsConn, "portal", logger)

	volunteerService := service.NewVolunteerService(hourLogRepo, memberRepo, activityService, notifier, validate, logger)
	membershipService := service.NewMembershipService(memberRepo, membershipRepo, activityService, validate, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, redisClient, cfg.AnnouncementCacheTTL, validate, logger)
	eventService := service.NewEventService(eventRepo, validate, logger)
	userConfigService := service.NewUserConfigService(featureFlagRepo, redisClient, cfg.UserConfigCacheTTL, logger)
	uploadService := service.NewUploadService(uploader, memberRepo, eventRepo, cfg.UploadMaxSizeMB, logger)
	assistantService := service.NewAssistantService(assistant, memberRepo, hourLogRepo, validate, cfg.AssistantModel, logger)

	billingService, err := service.NewBillingService(paymentRepo, membershipRepo, cfg.PaymentWebhookSecret, logger)
	if err != nil {
		log.Fatalf("failed to create billing service: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	app.Get("/metrics", observability.MetricsHandler())

	router.Register(app, cfg, router.Dependencies{
		AnnouncementHandler:   handler.NewAnnouncementHandler(announcementService, logger),
		VolunteerHandler:      handler.NewVolunteerHandler(volunteerService, logger),
		AdminVolunteerHandler: handler.NewAdminVolunteerHandler(volunteerService, logger),
		MembershipHandler:     handler.NewMembershipHandler(membershipService, logger),
		EventHandler:          handler.NewEventHandler(eventService, logger),
		AssistantHandler:      handler.NewAssistantHandler(assistantService, logger),
		UserConfigHandler:     handler.NewUserConfigHandler(userConfigService, logger),
		UploadHandler:         handler.NewUploadHandler(uploadService, logger),
		PaymentWebhookHandler: handler.NewPaymentWebhookHandler(billingService, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
		AssistantRateLimiter:  middleware.RateLimit("assistant", cfg.AssistantRateLimit, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
