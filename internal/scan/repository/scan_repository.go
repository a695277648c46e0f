package repository

import (
	"errors"

	"jobpulse-backend/internal/scan/domain"
)

// ErrScanNotFound is reported when a scan id does not exist for the user
var ErrScanNotFound = errors.New("scan not found")

// ScanPatch is a partial update; nil fields are left untouched
type ScanPatch struct {
	Status         *domain.Status
	MessageIDs     *domain.StringArray
	ProcessedCount *int
	ShouldContinue *bool
	ErrorMessage   *string
}

// ScanRepository defines data access for scans
type ScanRepository interface {
	// FindActiveScan returns the user's most recent non-terminal scan, or
	// (nil, nil) when none exists
	FindActiveScan(userID string) (*domain.Scan, error)

	// GetByIDForUser returns the scan, or (nil, nil) when it does not exist
	GetByIDForUser(userID, scanID string) (*domain.Scan, error)

	// Create inserts a new scan, assigning an ID when missing
	Create(scan *domain.Scan) error

	// Update applies a partial patch and returns the updated scan
	Update(userID, scanID string, patch ScanPatch) (*domain.Scan, error)

	// Finalize moves the scan to a terminal status: should_continue is
	// cleared and the identifier list dropped. Completed forces the cursor
	// to total_count; failed records the error message (UNKNOWN_ERROR when
	// empty).
	Finalize(userID, scanID string, finalStatus domain.Status, errorMessage *string) (*domain.Scan, error)
}
