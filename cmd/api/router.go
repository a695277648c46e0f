package api

import (
	"net/http"

	authDelivery "jobpulse-backend/internal/auth/delivery"
	jobDelivery "jobpulse-backend/internal/job/delivery"
	mailDelivery "jobpulse-backend/internal/mailconn/delivery"
	scanDelivery "jobpulse-backend/internal/scan/delivery"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, jwtSecret string, mailHandler *mailDelivery.MailHandler, scanHandler *scanDelivery.ScanHandler, jobHandler *jobDelivery.JobHandler) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := authDelivery.AuthMiddleware(jwtSecret)

		// Mail connection routes (protected)
		mail := api.Group("/mail")
		mail.Use(auth)
		{
			mail.GET("/status", mailHandler.GetStatus)
			mail.GET("/latest", mailHandler.GetLatestMails)
			mail.POST("/callback", mailHandler.Callback)
			mail.DELETE("", mailHandler.Disconnect)
			mail.POST("/range/validate", mailHandler.ValidateRange)
		}

		// Scan routes (protected)
		scan := api.Group("/scan")
		scan.Use(auth)
		{
			scan.POST("/init", scanHandler.Init)
			scan.POST("/batch", scanHandler.RunBatch)
			scan.POST("/run", scanHandler.Run)
			scan.POST("/pause", scanHandler.Pause)
			scan.POST("/cancel", scanHandler.Cancel)
			scan.GET("/active", scanHandler.GetActive)
			scan.GET("/:id", scanHandler.GetByID)
		}

		// Application routes (protected)
		applications := api.Group("/applications")
		applications.Use(auth)
		{
			applications.GET("", jobHandler.ListApplications)
			applications.POST("/merge", jobHandler.MergeApplications)
			applications.GET("/:id", jobHandler.GetApplication)
			applications.PATCH("/:id", jobHandler.UpdateApplication)
			applications.POST("/:id/archive", jobHandler.ArchiveApplication)
			applications.DELETE("/:id", jobHandler.DeleteApplication)
		}

		// Job email routes (protected)
		emails := api.Group("/emails")
		emails.Use(auth)
		{
			emails.GET("/unassigned", jobHandler.ListUnassignedEmails)
			emails.PATCH("/:id", jobHandler.UpdateEmail)
			emails.POST("/:id/reassign", jobHandler.ReassignEmail)
			emails.POST("/:id/archive", jobHandler.ArchiveEmail)
			emails.DELETE("/:id", jobHandler.DeleteEmail)
		}
	}
}
