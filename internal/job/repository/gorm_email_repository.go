package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobpulse-backend/internal/job/domain"
	"jobpulse-backend/pkg/crypto"
)

// gormJobEmailRepository implements JobEmailRepository using GORM
type gormJobEmailRepository struct {
	db  *gorm.DB
	box *crypto.Box
}

// NewGormJobEmailRepository creates a new GORM-based JobEmailRepository
func NewGormJobEmailRepository(db *gorm.DB, box *crypto.Box) JobEmailRepository {
	return &gormJobEmailRepository{db: db, box: box}
}

func (r *gormJobEmailRepository) FindByProviderMessage(userID, provider, providerMessageID string) (*domain.JobEmail, error) {
	var email domain.JobEmail
	err := r.db.Where("user_id = ? AND provider = ? AND provider_message_id = ?",
		userID, provider, providerMessageID).First(&email).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.decrypt(&email)
}

func (r *gormJobEmailRepository) FindByID(userID, id string) (*domain.JobEmail, error) {
	var email domain.JobEmail
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&email).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.decrypt(&email)
}

func (r *gormJobEmailRepository) Create(email *domain.JobEmail) error {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	email.CreatedAt = time.Now()
	email.UpdatedAt = time.Now()

	stored := *email
	sealed, err := r.box.Encrypt(stored.Snippet)
	if err != nil {
		return err
	}
	stored.Snippet = sealed
	return r.db.Create(&stored).Error
}

func (r *gormJobEmailRepository) Save(email *domain.JobEmail) error {
	email.UpdatedAt = time.Now()

	stored := *email
	sealed, err := r.box.Encrypt(stored.Snippet)
	if err != nil {
		return err
	}
	stored.Snippet = sealed
	return r.db.Save(&stored).Error
}

func (r *gormJobEmailRepository) ListByApplication(userID, applicationID string) ([]*domain.JobEmail, error) {
	var emails []*domain.JobEmail
	err := r.db.Where("user_id = ? AND application_id = ? AND archived = false", userID, applicationID).
		Order("received_at DESC").Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return r.decryptAll(emails)
}

func (r *gormJobEmailRepository) ListUnassigned(userID string) ([]*domain.JobEmail, error) {
	var emails []*domain.JobEmail
	err := r.db.Where("user_id = ? AND application_id IS NULL AND archived = false", userID).
		Order("received_at DESC").Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return r.decryptAll(emails)
}

func (r *gormJobEmailRepository) MoveToApplication(userID, id string, applicationID *string) error {
	return r.db.Model(&domain.JobEmail{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{"application_id": applicationID, "updated_at": time.Now()}).Error
}

func (r *gormJobEmailRepository) ReassignAll(userID, fromApplicationID, toApplicationID string) error {
	return r.db.Model(&domain.JobEmail{}).
		Where("user_id = ? AND application_id = ?", userID, fromApplicationID).
		Updates(map[string]interface{}{"application_id": toApplicationID, "updated_at": time.Now()}).Error
}

func (r *gormJobEmailRepository) SetArchived(userID, id string, archived bool) error {
	return r.db.Model(&domain.JobEmail{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]interface{}{"archived": archived, "updated_at": time.Now()}).Error
}

func (r *gormJobEmailRepository) SetArchivedByApplication(userID, applicationID string, archived bool) error {
	return r.db.Model(&domain.JobEmail{}).
		Where("user_id = ? AND application_id = ?", userID, applicationID).
		Updates(map[string]interface{}{"archived": archived, "updated_at": time.Now()}).Error
}

func (r *gormJobEmailRepository) DeleteByID(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&domain.JobEmail{}).Error
}

func (r *gormJobEmailRepository) DeleteByApplication(userID, applicationID string) error {
	return r.db.Where("user_id = ? AND application_id = ?", userID, applicationID).Delete(&domain.JobEmail{}).Error
}

func (r *gormJobEmailRepository) decrypt(email *domain.JobEmail) (*domain.JobEmail, error) {
	plain, err := r.box.Decrypt(email.Snippet)
	if err != nil {
		return nil, err
	}
	email.Snippet = plain
	return email, nil
}

func (r *gormJobEmailRepository) decryptAll(emails []*domain.JobEmail) ([]*domain.JobEmail, error) {
	for _, e := range emails {
		if _, err := r.decrypt(e); err != nil {
			return nil, err
		}
	}
	return emails, nil
}
