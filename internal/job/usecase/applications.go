package usecase

import (
	"jobpulse-backend/internal/job/domain"
	"jobpulse-backend/internal/job/repository"
)

// applicationUsecase implements ApplicationUsecase
type applicationUsecase struct {
	emailRepo repository.JobEmailRepository
	appRepo   repository.JobApplicationRepository
	ingestion IngestionUsecase
}

// NewApplicationUsecase creates a new instance of applicationUsecase
func NewApplicationUsecase(emailRepo repository.JobEmailRepository, appRepo repository.JobApplicationRepository, ingestion IngestionUsecase) ApplicationUsecase {
	return &applicationUsecase{
		emailRepo: emailRepo,
		appRepo:   appRepo,
		ingestion: ingestion,
	}
}

func (u *applicationUsecase) ListApplications(userID string, includeArchived bool) ([]*domain.JobApplication, error) {
	return u.appRepo.ListByUser(userID, includeArchived)
}

func (u *applicationUsecase) GetApplication(userID, applicationID string) (*domain.JobApplication, error) {
	app, err := u.appRepo.FindByID(userID, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}

func (u *applicationUsecase) ListApplicationEmails(userID, applicationID string) ([]*domain.JobEmail, error) {
	app, err := u.appRepo.FindByID(userID, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	return u.emailRepo.ListByApplication(userID, applicationID)
}

func (u *applicationUsecase) ListUnassignedEmails(userID string) ([]*domain.JobEmail, error) {
	return u.emailRepo.ListUnassigned(userID)
}

// UpdateApplication applies user edits and marks the application as
// user-created.
func (u *applicationUsecase) UpdateApplication(userID, applicationID string, patch ApplicationPatch) (*domain.JobApplication, error) {
	app, err := u.appRepo.FindByID(userID, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}

	if patch.Company != nil {
		app.Company = normalizeText(patch.Company)
	}
	if patch.Position != nil {
		app.Position = normalizeText(patch.Position)
	}
	if patch.Status != nil {
		status := domain.Status(*patch.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		app.Status = status
	}
	if patch.Notes != nil {
		app.Notes = *patch.Notes
	}
	app.CreatedBy = domain.CreatedByUser

	if err := u.appRepo.Save(app); err != nil {
		return nil, err
	}
	return app, nil
}

func (u *applicationUsecase) MergeApplications(userID, targetID, sourceID string) (*domain.JobApplication, error) {
	if targetID == sourceID {
		return u.GetApplication(userID, targetID)
	}

	target, err := u.appRepo.FindByID(userID, targetID)
	if err != nil {
		return nil, err
	}
	source, err := u.appRepo.FindByID(userID, sourceID)
	if err != nil {
		return nil, err
	}
	if target == nil || source == nil {
		return nil, ErrApplicationNotFound
	}

	if err := u.emailRepo.ReassignAll(userID, sourceID, targetID); err != nil {
		return nil, err
	}
	if err := u.appRepo.DeleteByID(userID, sourceID); err != nil {
		return nil, err
	}
	if err := u.ingestion.RecomputeApplicationSummary(userID, targetID); err != nil {
		return nil, err
	}
	return u.GetApplication(userID, targetID)
}

func (u *applicationUsecase) ReassignEmail(userID, emailID string, applicationID *string) error {
	email, err := u.emailRepo.FindByID(userID, emailID)
	if err != nil {
		return err
	}
	if email == nil {
		return ErrEmailNotFound
	}

	if applicationID != nil {
		app, err := u.appRepo.FindByID(userID, *applicationID)
		if err != nil {
			return err
		}
		if app == nil {
			return ErrApplicationNotFound
		}
	}

	previous := email.ApplicationID
	if err := u.emailRepo.MoveToApplication(userID, emailID, applicationID); err != nil {
		return err
	}

	if previous != nil {
		if err := u.ingestion.RecomputeApplicationSummary(userID, *previous); err != nil {
			return err
		}
	}
	if applicationID != nil {
		if err := u.ingestion.RecomputeApplicationSummary(userID, *applicationID); err != nil {
			return err
		}
	}
	return nil
}

func (u *applicationUsecase) UpdateEmailFields(userID, emailID string, patch EmailPatch) (*domain.JobEmail, error) {
	email, err := u.emailRepo.FindByID(userID, emailID)
	if err != nil {
		return nil, err
	}
	if email == nil {
		return nil, ErrEmailNotFound
	}

	if patch.Company != nil {
		email.Company = normalizeText(patch.Company)
	}
	if patch.Position != nil {
		email.Position = normalizeText(patch.Position)
	}
	if patch.Status != nil {
		status := domain.Status(*patch.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		email.Status = status
	}

	if err := u.emailRepo.Save(email); err != nil {
		return nil, err
	}
	if email.ApplicationID != nil {
		if err := u.ingestion.RecomputeApplicationSummary(userID, *email.ApplicationID); err != nil {
			return nil, err
		}
	}
	return email, nil
}

func (u *applicationUsecase) SetEmailArchived(userID, emailID string, archived bool) error {
	email, err := u.emailRepo.FindByID(userID, emailID)
	if err != nil {
		return err
	}
	if email == nil {
		return ErrEmailNotFound
	}

	if err := u.emailRepo.SetArchived(userID, emailID, archived); err != nil {
		return err
	}
	if email.ApplicationID != nil {
		return u.ingestion.RecomputeApplicationSummary(userID, *email.ApplicationID)
	}
	return nil
}

func (u *applicationUsecase) DeleteEmailHard(userID, emailID string) error {
	email, err := u.emailRepo.FindByID(userID, emailID)
	if err != nil {
		return err
	}
	if email == nil {
		return ErrEmailNotFound
	}

	if err := u.emailRepo.DeleteByID(userID, emailID); err != nil {
		return err
	}
	if email.ApplicationID != nil {
		return u.ingestion.RecomputeApplicationSummary(userID, *email.ApplicationID)
	}
	return nil
}
