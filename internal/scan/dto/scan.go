package dto

import (
	scandomain "jobpulse-backend/internal/scan/domain"
)

type InitScanRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	// Limit falls back to scanning the latest mails when no range is given
	Limit int `json:"limit"`
}

type ScanIDRequest struct {
	ScanID string `json:"scanId" binding:"required"`
}

type InitScanResponse struct {
	Mode string           `json:"mode"`
	Scan *scandomain.Scan `json:"scan"`
}

type ScanResponse struct {
	Scan *scandomain.Scan `json:"scan"`
}

type BatchResponse struct {
	Scan      *scandomain.Scan `json:"scan"`
	Processed int              `json:"processed"`
	Stored    int              `json:"stored"`
	Done      bool             `json:"done"`
}
