package delivery

import (
	"context"
	"errors"
	"net/http"

	mailconnusecase "jobpulse-backend/internal/mailconn/usecase"
	"jobpulse-backend/internal/scan/dto"
	"jobpulse-backend/internal/scan/usecase"

	"github.com/gin-gonic/gin"
)

type ScanHandler struct {
	scanUsecase usecase.ScanUsecase
}

func NewScanHandler(scanUsecase usecase.ScanUsecase) *ScanHandler {
	return &ScanHandler{
		scanUsecase: scanUsecase,
	}
}

func (h *ScanHandler) Init(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.InitScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.scanUsecase.Init(c.Request.Context(), userID, usecase.InitParams{
		StartISO: req.StartDate,
		EndISO:   req.EndDate,
		Limit:    req.Limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Rejected ranges come back as a structured result, not an error.
	if result.Range != nil && !result.Range.OK {
		c.JSON(http.StatusOK, result.Range)
		return
	}

	c.JSON(http.StatusOK, dto.InitScanResponse{Mode: result.Mode, Scan: result.Scan})
}

func (h *ScanHandler) RunBatch(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.ScanIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.scanUsecase.RunBatch(c.Request.Context(), userID, req.ScanID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BatchResponse{
		Scan:      result.Scan,
		Processed: result.Processed,
		Stored:    result.Stored,
		Done:      result.Done,
	})
}

func (h *ScanHandler) Run(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.ScanIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scan, err := h.scanUsecase.Get(userID, req.ScanID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// The runner outlives the request; it re-reads stored state before
	// every batch, so pause and cancel still take effect.
	go h.scanUsecase.Run(context.Background(), userID, scan.ID)

	c.JSON(http.StatusAccepted, dto.ScanResponse{Scan: scan})
}

func (h *ScanHandler) Pause(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.ScanIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scan, err := h.scanUsecase.Pause(userID, req.ScanID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ScanResponse{Scan: scan})
}

func (h *ScanHandler) Cancel(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.ScanIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scan, err := h.scanUsecase.Cancel(userID, req.ScanID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ScanResponse{Scan: scan})
}

func (h *ScanHandler) GetActive(c *gin.Context) {
	userID := c.GetString("userID")

	scan, err := h.scanUsecase.Active(userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if scan == nil {
		c.JSON(http.StatusOK, dto.ScanResponse{Scan: nil})
		return
	}

	c.JSON(http.StatusOK, dto.ScanResponse{Scan: scan})
}

func (h *ScanHandler) GetByID(c *gin.Context) {
	userID := c.GetString("userID")
	scanID := c.Param("id")

	scan, err := h.scanUsecase.Get(userID, scanID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ScanResponse{Scan: scan})
}

func (h *ScanHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrScanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "scan not found"})
	case errors.Is(err, mailconnusecase.ErrReauthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "REAUTH_REQUIRED"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
