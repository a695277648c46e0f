package repository

import (
	"jobpulse-backend/internal/job/domain"
)

// JobEmailRepository defines data access for analyzed job emails.
// Snippets are encrypted at rest; implementations return them decrypted.
type JobEmailRepository interface {
	// FindByProviderMessage looks up an email by its provider identity.
	// Returns (nil, nil) when no row exists.
	FindByProviderMessage(userID, provider, providerMessageID string) (*domain.JobEmail, error)

	// FindByID finds an email by ID scoped to the owning user
	FindByID(userID, id string) (*domain.JobEmail, error)

	// Create inserts a new email, assigning an ID when missing
	Create(email *domain.JobEmail) error

	// Save persists all fields of an existing email
	Save(email *domain.JobEmail) error

	// ListByApplication returns non-archived member emails, newest first
	ListByApplication(userID, applicationID string) ([]*domain.JobEmail, error)

	// ListUnassigned returns non-archived emails without an application
	ListUnassigned(userID string) ([]*domain.JobEmail, error)

	// MoveToApplication re-parents a single email (nil detaches it)
	MoveToApplication(userID, id string, applicationID *string) error

	// ReassignAll moves every email from one application to another
	ReassignAll(userID, fromApplicationID, toApplicationID string) error

	// SetArchived flags or unflags a single email
	SetArchived(userID, id string, archived bool) error

	// SetArchivedByApplication flags every member email of an application
	SetArchivedByApplication(userID, applicationID string, archived bool) error

	// DeleteByID removes an email permanently
	DeleteByID(userID, id string) error

	// DeleteByApplication removes every member email of an application
	DeleteByApplication(userID, applicationID string) error
}

// JobApplicationRepository defines data access for job applications
type JobApplicationRepository interface {
	// Create inserts a new application, assigning an ID when missing
	Create(app *domain.JobApplication) error

	// FindByID finds an application by ID scoped to the owning user.
	// Returns (nil, nil) when no row exists.
	FindByID(userID, id string) (*domain.JobApplication, error)

	// FindCandidate finds a non-archived application with exactly the given
	// company and position; nil matches only NULL, not any value
	FindCandidate(userID string, company, position *string) (*domain.JobApplication, error)

	// ListByUser returns the user's applications, most recent activity first
	ListByUser(userID string, includeArchived bool) ([]*domain.JobApplication, error)

	// Save persists all fields of an existing application
	Save(app *domain.JobApplication) error

	// DeleteByID removes an application permanently
	DeleteByID(userID, id string) error
}
