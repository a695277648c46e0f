package usecase

import (
	"context"
	"strings"
	"time"

	"jobpulse-backend/internal/job/domain"
	"jobpulse-backend/internal/job/repository"
	"jobpulse-backend/pkg/ai"
	"jobpulse-backend/pkg/mailprovider"
)

// ingestionUsecase implements IngestionUsecase
type ingestionUsecase struct {
	emailRepo repository.JobEmailRepository
	appRepo   repository.JobApplicationRepository
}

// NewIngestionUsecase creates a new instance of ingestionUsecase
func NewIngestionUsecase(emailRepo repository.JobEmailRepository, appRepo repository.JobApplicationRepository) IngestionUsecase {
	return &ingestionUsecase{
		emailRepo: emailRepo,
		appRepo:   appRepo,
	}
}

// normalizeText trims and converts empty strings to nil
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func (u *ingestionUsecase) IngestAnalyzedMail(ctx context.Context, userID, provider string, mail mailprovider.RawMail, analysis *ai.Analysis) (*IngestResult, error) {
	if !analysis.IsJobRelated {
		return &IngestResult{Stored: false}, nil
	}

	company := normalizeText(analysis.Company)
	position := normalizeText(analysis.Position)
	eventType := normalizeText(analysis.EventType)
	confidence := domain.Clamp01(analysis.Confidence)

	email, err := u.upsertEmail(userID, provider, mail, company, position, eventType, analysis.Status, confidence)
	if err != nil {
		return nil, err
	}

	// A manually placed email keeps its application; only refresh that
	// application's summary.
	if email.ApplicationID != nil {
		if err := u.RecomputeApplicationSummary(userID, *email.ApplicationID); err != nil {
			return nil, err
		}
		return &IngestResult{Stored: true, JobEmailID: email.ID, ApplicationID: *email.ApplicationID}, nil
	}

	app, err := u.appRepo.FindCandidate(userID, company, position)
	if err != nil {
		return nil, err
	}
	if app == nil {
		app = &domain.JobApplication{
			UserID:    userID,
			Company:   company,
			Position:  position,
			CreatedBy: domain.CreatedByAuto,
		}
		if err := u.appRepo.Create(app); err != nil {
			return nil, err
		}
	}

	if err := u.emailRepo.MoveToApplication(userID, email.ID, &app.ID); err != nil {
		return nil, err
	}
	if err := u.RecomputeApplicationSummary(userID, app.ID); err != nil {
		return nil, err
	}

	return &IngestResult{Stored: true, JobEmailID: email.ID, ApplicationID: app.ID}, nil
}

// upsertEmail creates or refreshes the job email row keyed by
// (user, provider, provider message id). The application assignment is
// never modified here.
func (u *ingestionUsecase) upsertEmail(userID, provider string, mail mailprovider.RawMail, company, position, eventType *string, status domain.Status, confidence float64) (*domain.JobEmail, error) {
	email, err := u.emailRepo.FindByProviderMessage(userID, provider, mail.ID)
	if err != nil {
		return nil, err
	}

	var receivedAt *time.Time
	if t, err := time.Parse(time.RFC3339, mail.Date); err == nil {
		receivedAt = &t
	}

	if email == nil {
		email = &domain.JobEmail{
			UserID:            userID,
			Provider:          provider,
			ProviderMessageID: mail.ID,
			Subject:           mail.Subject,
			Sender:            mail.From,
			Snippet:           mail.Snippet,
			ReceivedAt:        receivedAt,
			Company:           company,
			Position:          position,
			Status:            status,
			EventType:         eventType,
			Confidence:        confidence,
		}
		if err := u.emailRepo.Create(email); err != nil {
			return nil, err
		}
		return email, nil
	}

	email.Subject = mail.Subject
	email.Sender = mail.From
	email.Snippet = mail.Snippet
	email.ReceivedAt = receivedAt
	email.Company = company
	email.Position = position
	email.Status = status
	email.EventType = eventType
	email.Confidence = confidence
	if err := u.emailRepo.Save(email); err != nil {
		return nil, err
	}
	return email, nil
}

func (u *ingestionUsecase) RecomputeApplicationSummary(userID, applicationID string) error {
	app, err := u.appRepo.FindByID(userID, applicationID)
	if err != nil {
		return err
	}
	if app == nil {
		return nil
	}

	emails, err := u.emailRepo.ListByApplication(userID, applicationID)
	if err != nil {
		return err
	}

	// No members left: keep the application but reset the derived fields.
	if len(emails) == 0 {
		now := time.Now()
		app.Company = nil
		app.Position = nil
		app.Status = domain.StatusUnknown
		app.AppliedAt = nil
		app.LastActivityAt = &now
		return u.appRepo.Save(app)
	}

	var company, position *string
	for _, e := range emails {
		if company == nil && e.Company != nil {
			company = e.Company
		}
		if position == nil && e.Position != nil {
			position = e.Position
		}
	}

	statuses := make([]domain.Status, 0, len(emails))
	for _, e := range emails {
		statuses = append(statuses, e.Status)
	}

	var appliedAt *time.Time
	for _, e := range emails {
		if e.Status == domain.StatusApplied && e.ReceivedAt != nil {
			appliedAt = e.ReceivedAt
			break
		}
	}

	var lastActivityAt *time.Time
	for _, e := range emails {
		if e.ReceivedAt != nil && (lastActivityAt == nil || e.ReceivedAt.After(*lastActivityAt)) {
			lastActivityAt = e.ReceivedAt
		}
	}

	app.Company = company
	app.Position = position
	app.Status = domain.ComputeApplicationStatus(statuses)
	app.AppliedAt = appliedAt
	app.LastActivityAt = lastActivityAt
	return u.appRepo.Save(app)
}

func (u *ingestionUsecase) DeleteApplicationHard(userID, applicationID string) error {
	if err := u.emailRepo.DeleteByApplication(userID, applicationID); err != nil {
		return err
	}
	return u.appRepo.DeleteByID(userID, applicationID)
}

func (u *ingestionUsecase) SetApplicationArchived(userID, applicationID string, archived bool) error {
	app, err := u.appRepo.FindByID(userID, applicationID)
	if err != nil {
		return err
	}
	if app == nil {
		return ErrApplicationNotFound
	}

	app.Archived = archived
	if err := u.appRepo.Save(app); err != nil {
		return err
	}
	return u.emailRepo.SetArchivedByApplication(userID, applicationID, archived)
}
