package main

import (
	"time"

	"github.com/sirupsen/logrus"

	api "jobpulse-backend/cmd/api"
	jobdomain "jobpulse-backend/internal/job/domain"
	jobRepo "jobpulse-backend/internal/job/repository"
	jobUsecase "jobpulse-backend/internal/job/usecase"
	mailconndomain "jobpulse-backend/internal/mailconn/domain"
	mailconnRepo "jobpulse-backend/internal/mailconn/repository"
	mailconnUsecase "jobpulse-backend/internal/mailconn/usecase"
	"jobpulse-backend/internal/metrics"
	scandomain "jobpulse-backend/internal/scan/domain"
	scanRepo "jobpulse-backend/internal/scan/repository"
	scanUsecase "jobpulse-backend/internal/scan/usecase"
	"jobpulse-backend/pkg/ai"
	"jobpulse-backend/pkg/config"
	"jobpulse-backend/pkg/crypto"
	"jobpulse-backend/pkg/database"
	"jobpulse-backend/pkg/mailprovider"
	"jobpulse-backend/pkg/oauth"
	"jobpulse-backend/pkg/tokencache"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&mailconndomain.MailConnection{},
		&scandomain.Scan{},
		&jobdomain.JobEmail{},
		&jobdomain.JobApplication{},
	); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// Refresh tokens and email snippets are encrypted at rest
	box, err := crypto.NewBox(cfg.MailTokenEncKey)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize encryption key")
	}

	// Initialize repositories (dependency injection)
	connectionRepo := mailconnRepo.NewGormMailConnectionRepository(db, box)
	scanRepository := scanRepo.NewGormScanRepository(db)
	emailRepository := jobRepo.NewGormJobEmailRepository(db, box)
	appRepository := jobRepo.NewGormJobApplicationRepository(db)

	// Mail access broker: cached access tokens, refreshed on demand
	cache := tokencache.New(1000, 45*time.Minute)
	refreshers := map[mailprovider.Provider]oauth.RefreshFunc{
		mailprovider.ProviderGmail: oauth.GoogleRefresher{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
		}.Refresh,
		mailprovider.ProviderOutlook: oauth.MicrosoftRefresher{
			ClientID:     cfg.MicrosoftClientID,
			ClientSecret: cfg.MicrosoftClientSecret,
			RedirectURI:  cfg.MicrosoftRedirectURI,
		}.Refresh,
	}
	broker := mailconnUsecase.NewBroker(connectionRepo, cache, refreshers)

	m := metrics.NewMetrics()
	broker.SetMetrics(m)

	// AI mail analysis
	analyzer := ai.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	// Initialize use cases (dependency injection)
	ingestionUc := jobUsecase.NewIngestionUsecase(emailRepository, appRepository)
	appUc := jobUsecase.NewApplicationUsecase(emailRepository, appRepository, ingestionUc)
	scanUc := scanUsecase.NewScanUsecase(scanRepository, broker, mailprovider.New, analyzer, ingestionUc, m, log, scanUsecase.Options{
		BatchSize:    cfg.ScanBatchSize,
		BodyMaxChars: cfg.MailBodyMaxChars,
		Rules: mailprovider.RangeRules{
			MaxDays:     cfg.ScanMaxDays,
			MaxMessages: cfg.ScanMaxMessages,
		},
	})

	// Initialize HTTP handler
	handler := api.NewHandler(cfg, broker, mailprovider.New, scanUc, appUc, ingestionUc)

	// Start server
	log.WithField("port", cfg.Port).Info("server starting")
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
