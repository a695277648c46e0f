package delivery

import (
	"errors"
	"net/http"

	"jobpulse-backend/internal/job/dto"
	"jobpulse-backend/internal/job/usecase"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	appUsecase       usecase.ApplicationUsecase
	ingestionUsecase usecase.IngestionUsecase
}

func NewJobHandler(appUsecase usecase.ApplicationUsecase, ingestionUsecase usecase.IngestionUsecase) *JobHandler {
	return &JobHandler{
		appUsecase:       appUsecase,
		ingestionUsecase: ingestionUsecase,
	}
}

func (h *JobHandler) ListApplications(c *gin.Context) {
	userID := c.GetString("userID")
	includeArchived := c.Query("includeArchived") == "true"

	apps, err := h.appUsecase.ListApplications(userID, includeArchived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ApplicationsResponse{Applications: apps, Count: len(apps)})
}

func (h *JobHandler) GetApplication(c *gin.Context) {
	userID := c.GetString("userID")
	appID := c.Param("id")

	app, err := h.appUsecase.GetApplication(userID, appID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	emails, err := h.appUsecase.ListApplicationEmails(userID, appID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ApplicationDetailResponse{Application: app, Emails: emails})
}

func (h *JobHandler) UpdateApplication(c *gin.Context) {
	userID := c.GetString("userID")
	appID := c.Param("id")

	var patch usecase.ApplicationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.appUsecase.UpdateApplication(userID, appID, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

func (h *JobHandler) ArchiveApplication(c *gin.Context) {
	userID := c.GetString("userID")
	appID := c.Param("id")

	var req dto.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ingestionUsecase.SetApplicationArchived(userID, appID, *req.Archived); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "application updated"})
}

func (h *JobHandler) DeleteApplication(c *gin.Context) {
	userID := c.GetString("userID")
	appID := c.Param("id")

	if err := h.ingestionUsecase.DeleteApplicationHard(userID, appID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "application deleted"})
}

func (h *JobHandler) MergeApplications(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.MergeApplicationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.appUsecase.MergeApplications(userID, req.TargetID, req.SourceID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

func (h *JobHandler) ListUnassignedEmails(c *gin.Context) {
	userID := c.GetString("userID")

	emails, err := h.appUsecase.ListUnassignedEmails(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.EmailsResponse{Emails: emails, Count: len(emails)})
}

func (h *JobHandler) UpdateEmail(c *gin.Context) {
	userID := c.GetString("userID")
	emailID := c.Param("id")

	var patch usecase.EmailPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email, err := h.appUsecase.UpdateEmailFields(userID, emailID, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, email)
}

func (h *JobHandler) ReassignEmail(c *gin.Context) {
	userID := c.GetString("userID")
	emailID := c.Param("id")

	var req dto.ReassignEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.appUsecase.ReassignEmail(userID, emailID, req.ApplicationID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email reassigned"})
}

func (h *JobHandler) ArchiveEmail(c *gin.Context) {
	userID := c.GetString("userID")
	emailID := c.Param("id")

	var req dto.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.appUsecase.SetEmailArchived(userID, emailID, *req.Archived); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email updated"})
}

func (h *JobHandler) DeleteEmail(c *gin.Context) {
	userID := c.GetString("userID")
	emailID := c.Param("id")

	if err := h.appUsecase.DeleteEmailHard(userID, emailID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email deleted"})
}

func (h *JobHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrApplicationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
	case errors.Is(err, usecase.ErrEmailNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
	case errors.Is(err, usecase.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
