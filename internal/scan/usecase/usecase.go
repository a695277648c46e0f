package usecase

import (
	"context"

	scandomain "jobpulse-backend/internal/scan/domain"
	"jobpulse-backend/pkg/mailprovider"
)

const (
	ModeCreated  = "created"
	ModeExisting = "existing"
)

// InitParams selects which messages a new scan will cover: an explicit date
// range, or the latest mails when no range is given.
type InitParams struct {
	StartISO string
	EndISO   string
	Limit    int
}

// InitResult is the outcome of Init. When the requested range was rejected,
// Range carries the structured reason and Scan is nil.
type InitResult struct {
	Mode  string
	Scan  *scandomain.Scan
	Range *mailprovider.RangeResult
}

// BatchResult reports one runBatch call
type BatchResult struct {
	Scan      *scandomain.Scan
	Processed int
	Stored    int
	Done      bool
}

// ScanUsecase drives mailbox scans: a caller repeatedly asks for one batch at
// a time, and every transition is persisted so the loop can stop and resume
// at any batch boundary.
type ScanUsecase interface {
	// ValidateRange checks a date range against the configured rules and
	// enumerates ids when acceptable. Rule violations come back as a
	// structured result, never an error.
	ValidateRange(ctx context.Context, userID, startISO, endISO string) (*mailprovider.RangeResult, error)

	// ListMessageIDs enumerates ids for an already accepted range
	ListMessageIDs(ctx context.Context, userID, startISO, endISO string) (*mailprovider.RangeResult, error)

	// Init resolves message ids and creates the scan. At most one
	// non-terminal scan per user: an existing one is returned unchanged.
	Init(ctx context.Context, userID string, params InitParams) (*InitResult, error)

	// RunBatch processes the next slice of messages. Terminal scans are a
	// no-op; created and paused scans auto-resume.
	RunBatch(ctx context.Context, userID, scanID string) (*BatchResult, error)

	// Run drives RunBatch in a loop until the scan is terminal or paused,
	// re-reading stored state before every batch
	Run(ctx context.Context, userID, scanID string)

	// Pause stops a running scan; any other state is returned unchanged
	Pause(userID, scanID string) (*scandomain.Scan, error)

	// Cancel finalizes any non-terminal scan as canceled; idempotent
	Cancel(userID, scanID string) (*scandomain.Scan, error)

	// Active returns the user's current non-terminal scan, or nil
	Active(userID string) (*scandomain.Scan, error)

	// Get returns one scan by id
	Get(userID, scanID string) (*scandomain.Scan, error)
}
