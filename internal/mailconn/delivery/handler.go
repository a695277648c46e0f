package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"jobpulse-backend/internal/mailconn/dto"
	"jobpulse-backend/internal/mailconn/usecase"
	scanusecase "jobpulse-backend/internal/scan/usecase"
	"jobpulse-backend/pkg/mailprovider"

	"github.com/gin-gonic/gin"
)

const defaultLatestLimit = 10

type MailHandler struct {
	broker      *usecase.Broker
	newClient   mailprovider.Factory
	scanUsecase scanusecase.ScanUsecase
}

func NewMailHandler(broker *usecase.Broker, newClient mailprovider.Factory, scanUsecase scanusecase.ScanUsecase) *MailHandler {
	return &MailHandler{
		broker:      broker,
		newClient:   newClient,
		scanUsecase: scanUsecase,
	}
}

func (h *MailHandler) GetStatus(c *gin.Context) {
	userID := c.GetString("userID")

	conn, err := h.broker.Connection(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if conn == nil {
		c.JSON(http.StatusOK, dto.StatusResponse{Connected: false})
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{
		Connected: true,
		Provider:  conn.Provider,
		Email:     conn.Email,
	})
}

func (h *MailHandler) GetLatestMails(c *gin.Context) {
	userID := c.GetString("userID")

	limit := defaultLatestLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	mails, err := usecase.WithMailAccess(c.Request.Context(), h.broker, userID, func(access usecase.Access) ([]mailprovider.RawMail, error) {
		client, err := h.newClient(c.Request.Context(), access.Provider, access.AccessToken)
		if err != nil {
			return nil, err
		}
		return client.GetLatestMails(c.Request.Context(), limit)
	})
	if err != nil {
		if errors.Is(err, usecase.ErrReauthRequired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "REAUTH_REQUIRED"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.LatestMailsResponse{Mails: mails, Count: len(mails)})
}

func (h *MailHandler) Callback(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider := mailprovider.Provider(req.Provider)
	if err := h.broker.SaveConnection(userID, provider, req.Email, req.RefreshToken); err != nil {
		if errors.Is(err, mailprovider.ErrUnknownProvider) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "mail connection saved"})
}

func (h *MailHandler) Disconnect(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.broker.RemoveConnection(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "mail connection removed"})
}

func (h *MailHandler) ValidateRange(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.ValidateRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.scanUsecase.ValidateRange(c.Request.Context(), userID, req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, usecase.ErrReauthRequired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "REAUTH_REQUIRED"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
