package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobpulse-backend/internal/job/domain"
)

// gormJobApplicationRepository implements JobApplicationRepository using GORM
type gormJobApplicationRepository struct {
	db *gorm.DB
}

// NewGormJobApplicationRepository creates a new GORM-based JobApplicationRepository
func NewGormJobApplicationRepository(db *gorm.DB) JobApplicationRepository {
	return &gormJobApplicationRepository{db: db}
}

func (r *gormJobApplicationRepository) Create(app *domain.JobApplication) error {
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	if app.Status == "" {
		app.Status = domain.StatusUnknown
	}
	if app.CreatedBy == "" {
		app.CreatedBy = domain.CreatedByAuto
	}
	app.CreatedAt = time.Now()
	app.UpdatedAt = time.Now()
	return r.db.Create(app).Error
}

func (r *gormJobApplicationRepository) FindByID(userID, id string) (*domain.JobApplication, error) {
	var app domain.JobApplication
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&app).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

// FindCandidate matches company and position exactly, treating nil as its
// own bucket: an application with NULL company only matches a nil company.
func (r *gormJobApplicationRepository) FindCandidate(userID string, company, position *string) (*domain.JobApplication, error) {
	query := r.db.Where("user_id = ? AND archived = false", userID)
	if company == nil {
		query = query.Where("company IS NULL")
	} else {
		query = query.Where("company = ?", *company)
	}
	if position == nil {
		query = query.Where("position IS NULL")
	} else {
		query = query.Where("position = ?", *position)
	}

	var app domain.JobApplication
	err := query.Order("created_at ASC").First(&app).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *gormJobApplicationRepository) ListByUser(userID string, includeArchived bool) ([]*domain.JobApplication, error) {
	query := r.db.Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("archived = false")
	}

	var apps []*domain.JobApplication
	err := query.Order("CASE WHEN last_activity_at IS NULL THEN 1 ELSE 0 END, last_activity_at DESC, created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *gormJobApplicationRepository) Save(app *domain.JobApplication) error {
	app.UpdatedAt = time.Now()
	return r.db.Save(app).Error
}

func (r *gormJobApplicationRepository) DeleteByID(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&domain.JobApplication{}).Error
}
