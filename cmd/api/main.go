package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/profmed/crm-api/internal/config"
	authHandler "github.com/profmed/crm-api/internal/handler/auth"
	calendarplanHandler "github.com/profmed/crm-api/internal/handler/calendarplan"
	contingentHandler "github.com/profmed/crm-api/internal/handler/contingent"
	contractHandler "github.com/profmed/crm-api/internal/handler/contract"
	doctorHandler "github.com/profmed/crm-api/internal/handler/doctor"
	examinationHandler "github.com/profmed/crm-api/internal/handler/examination"
	expertiseHandler "github.com/profmed/crm-api/internal/handler/expertise"
	healthHandler "github.com/profmed/crm-api/internal/handler/health"
	medtestHandler "github.com/profmed/crm-api/internal/handler/medtest"
	queueHandler "github.com/profmed/crm-api/internal/handler/queue"
	referralHandler "github.com/profmed/crm-api/internal/handler/referral"
	reportHandler "github.com/profmed/crm-api/internal/handler/report"
	routesheetHandler "github.com/profmed/crm-api/internal/handler/routesheet"
	"github.com/profmed/crm-api/internal/middleware"
	"github.com/profmed/crm-api/internal/notification"
	"github.com/profmed/crm-api/internal/repository/postgres"
	"github.com/profmed/crm-api/internal/router"
	authService "github.com/profmed/crm-api/internal/service/auth"
	calendarplanService "github.com/profmed/crm-api/internal/service/calendarplan"
	contingentService "github.com/profmed/crm-api/internal/service/contingent"
	contractService "github.com/profmed/crm-api/internal/service/contract"
	doctorService "github.com/profmed/crm-api/internal/service/doctor"
	examinationService "github.com/profmed/crm-api/internal/service/examination"
	expertiseService "github.com/profmed/crm-api/internal/service/expertise"
	medtestService "github.com/profmed/crm-api/internal/service/medtest"
	queueService "github.com/profmed/crm-api/internal/service/queue"
	referralService "github.com/profmed/crm-api/internal/service/referral"
	reportService "github.com/profmed/crm-api/internal/service/report"
	routesheetService "github.com/profmed/crm-api/internal/service/routesheet"
	"github.com/profmed/crm-api/pkg/auth"
	"github.com/profmed/crm-api/pkg/logger"
	"github.com/profmed/crm-api/pkg/security"
	"github.com/profmed/crm-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	if err := validator.RegisterRules(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validation rules")
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	contractRepo := postgres.NewContractRepository(db)
	contingentRepo := postgres.NewContingentRepository(db)
	planRepo := postgres.NewCalendarPlanRepository(db)
	sheetRepo := postgres.NewRouteSheetRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	examRepo := postgres.NewExaminationRepository(db)
	expertiseRepo := postgres.NewExpertiseRepository(db)
	referralRepo := postgres.NewReferralRepository(db)
	testRepo := postgres.NewMedicalTestRepository(db)
	queueRepo := postgres.NewQueueRepository(db)

	// Notifications
	whatsapp := notification.NewWhatsAppClient(notification.WhatsAppConfig{
		BaseURL:    cfg.WhatsApp.BaseURL,
		InstanceID: cfg.WhatsApp.InstanceID,
		Token:      cfg.WhatsApp.Token,
		Enabled:    cfg.WhatsApp.Enabled,
	})
	email := notification.NewEmailSender(notification.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Enabled:  cfg.SMTP.Enabled,
	})
	notifier := notification.NewService(whatsapp, email, appLogger)

	// Services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	otpStore := authService.NewOTPStore(rdb, cfg.OTP.TTL())
	hasher := security.NewBcryptHasher(0)

	authSvc := authService.NewService(userRepo, otpStore, jwtService, hasher, notifier)
	contractSvc := contractService.NewService(contractRepo, userRepo, notifier)
	contingentSvc := contingentService.NewService(contingentRepo, contractRepo)
	planSvc := calendarplanService.NewService(planRepo, contractRepo, contingentRepo, userRepo)
	sheetSvc := routesheetService.NewService(sheetRepo, planRepo, contingentRepo, doctorRepo, testRepo)
	examSvc := examinationService.NewService(examRepo, doctorRepo)
	expertiseSvc := expertiseService.NewService(expertiseRepo, sheetRepo, testRepo, referralRepo, doctorRepo)
	referralSvc := referralService.NewService(referralRepo)
	testSvc := medtestService.NewService(testRepo, sheetRepo)
	queueSvc := queueService.NewService(queueRepo, sheetRepo, doctorRepo)
	doctorSvc := doctorService.NewService(doctorRepo)
	reportSvc := reportService.NewService(expertiseSvc)

	// HTTP layer
	authMw := middleware.NewAuthMiddleware(jwtService)

	r := router.NewRouter(
		authMw,
		authHandler.NewHandler(authSvc),
		healthHandler.NewHandler(db, rdb),
		router.Config{
			RateLimit:     rate.Limit(cfg.RateLimit.RPS),
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "crm_api",
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		},
		contractHandler.NewHandler(contractSvc),
		contingentHandler.NewHandler(contingentSvc),
		calendarplanHandler.NewHandler(planSvc),
		routesheetHandler.NewHandler(sheetSvc),
		examinationHandler.NewHandler(examSvc),
		expertiseHandler.NewHandler(expertiseSvc),
		referralHandler.NewHandler(referralSvc),
		medtestHandler.NewHandler(testSvc),
		queueHandler.NewHandler(queueSvc),
		doctorHandler.NewHandler(doctorSvc),
		reportHandler.NewHandler(reportSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
