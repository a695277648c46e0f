package usecase

import (
	"context"

	"jobpulse-backend/internal/job/domain"
	"jobpulse-backend/pkg/ai"
	"jobpulse-backend/pkg/mailprovider"
)

// IngestResult reports whether an analyzed mail was stored and where it landed
type IngestResult struct {
	Stored        bool   `json:"stored"`
	JobEmailID    string `json:"job_email_id,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
}

// IngestionUsecase turns analyzed mails into deduplicated job emails grouped
// under applications, and keeps application summaries consistent
type IngestionUsecase interface {
	// IngestAnalyzedMail stores one analyzed mail; mails that are not job
	// related are skipped without error
	IngestAnalyzedMail(ctx context.Context, userID, provider string, mail mailprovider.RawMail, analysis *ai.Analysis) (*IngestResult, error)

	// RecomputeApplicationSummary rebuilds the derived summary fields of an
	// application from its current member emails
	RecomputeApplicationSummary(userID, applicationID string) error

	// DeleteApplicationHard removes an application and all member emails
	DeleteApplicationHard(userID, applicationID string) error

	// SetApplicationArchived archives or unarchives an application and
	// cascades the flag to member emails
	SetApplicationArchived(userID, applicationID string, archived bool) error
}

// ApplicationUsecase covers the user-facing application and email management
// operations: browsing, manual edits, merging and re-parenting
type ApplicationUsecase interface {
	ListApplications(userID string, includeArchived bool) ([]*domain.JobApplication, error)
	GetApplication(userID, applicationID string) (*domain.JobApplication, error)
	ListApplicationEmails(userID, applicationID string) ([]*domain.JobEmail, error)
	ListUnassignedEmails(userID string) ([]*domain.JobEmail, error)

	// UpdateApplication edits the user-owned fields (company, position,
	// status override, notes); nil fields are left untouched
	UpdateApplication(userID, applicationID string, patch ApplicationPatch) (*domain.JobApplication, error)

	// MergeApplications moves every email from source into target, deletes
	// source, and recomputes target's summary
	MergeApplications(userID, targetID, sourceID string) (*domain.JobApplication, error)

	// ReassignEmail moves one email to another application (or detaches it
	// when applicationID is nil) and recomputes both affected summaries
	ReassignEmail(userID, emailID string, applicationID *string) error

	// UpdateEmailFields edits the extracted fields of one email and
	// recomputes the owning application's summary
	UpdateEmailFields(userID, emailID string, patch EmailPatch) (*domain.JobEmail, error)

	SetEmailArchived(userID, emailID string, archived bool) error
	DeleteEmailHard(userID, emailID string) error
}

// ApplicationPatch carries optional user edits to an application
type ApplicationPatch struct {
	Company  *string `json:"company"`
	Position *string `json:"position"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
}

// EmailPatch carries optional user corrections to an email's extracted fields
type EmailPatch struct {
	Company  *string `json:"company"`
	Position *string `json:"position"`
	Status   *string `json:"status"`
}
