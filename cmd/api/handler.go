package api

import (
	jobDelivery "jobpulse-backend/internal/job/delivery"
	jobUsecase "jobpulse-backend/internal/job/usecase"
	mailDelivery "jobpulse-backend/internal/mailconn/delivery"
	mailconnUsecase "jobpulse-backend/internal/mailconn/usecase"
	scanDelivery "jobpulse-backend/internal/scan/delivery"
	scanUsecase "jobpulse-backend/internal/scan/usecase"
	"jobpulse-backend/pkg/config"
	"jobpulse-backend/pkg/mailprovider"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config      *config.Config
	mailHandler *mailDelivery.MailHandler
	scanHandler *scanDelivery.ScanHandler
	jobHandler  *jobDelivery.JobHandler
}

func NewHandler(cfg *config.Config, broker *mailconnUsecase.Broker, newClient mailprovider.Factory, scanUc scanUsecase.ScanUsecase, appUc jobUsecase.ApplicationUsecase, ingestionUc jobUsecase.IngestionUsecase) *Handler {
	return &Handler{
		config:      cfg,
		mailHandler: mailDelivery.NewMailHandler(broker, newClient, scanUc),
		scanHandler: scanDelivery.NewScanHandler(scanUc),
		jobHandler:  jobDelivery.NewJobHandler(appUc, ingestionUc),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.config.JWTSecret, h.mailHandler, h.scanHandler, h.jobHandler)

	return r.Run(addr)
}
