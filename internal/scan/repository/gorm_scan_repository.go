package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobpulse-backend/internal/scan/domain"
)

// gormScanRepository implements ScanRepository using GORM
type gormScanRepository struct {
	db *gorm.DB
}

// NewGormScanRepository creates a new GORM-based ScanRepository
func NewGormScanRepository(db *gorm.DB) ScanRepository {
	return &gormScanRepository{db: db}
}

func (r *gormScanRepository) FindActiveScan(userID string) (*domain.Scan, error) {
	var scan domain.Scan
	err := r.db.Where("user_id = ? AND status IN ?", userID,
		[]domain.Status{domain.StatusCreated, domain.StatusRunning, domain.StatusPaused}).
		Order("created_at DESC").First(&scan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &scan, nil
}

func (r *gormScanRepository) GetByIDForUser(userID, scanID string) (*domain.Scan, error) {
	var scan domain.Scan
	err := r.db.Where("user_id = ? AND id = ?", userID, scanID).First(&scan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &scan, nil
}

func (r *gormScanRepository) Create(scan *domain.Scan) error {
	if scan.ID == "" {
		scan.ID = uuid.New().String()
	}
	scan.CreatedAt = time.Now()
	scan.UpdatedAt = time.Now()
	return r.db.Create(scan).Error
}

func (r *gormScanRepository) Update(userID, scanID string, patch ScanPatch) (*domain.Scan, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.MessageIDs != nil {
		updates["message_ids"] = *patch.MessageIDs
	}
	if patch.ProcessedCount != nil {
		updates["processed_count"] = *patch.ProcessedCount
	}
	if patch.ShouldContinue != nil {
		updates["should_continue"] = *patch.ShouldContinue
	}
	if patch.ErrorMessage != nil {
		updates["error_message"] = *patch.ErrorMessage
	}

	res := r.db.Model(&domain.Scan{}).Where("user_id = ? AND id = ?", userID, scanID).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrScanNotFound
	}
	return r.GetByIDForUser(userID, scanID)
}

func (r *gormScanRepository) Finalize(userID, scanID string, finalStatus domain.Status, errorMessage *string) (*domain.Scan, error) {
	current, err := r.GetByIDForUser(userID, scanID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrScanNotFound
	}

	updates := map[string]interface{}{
		"status":          finalStatus,
		"should_continue": false,
		"message_ids":     domain.StringArray{},
		"updated_at":      time.Now(),
	}
	if finalStatus == domain.StatusCompleted {
		updates["processed_count"] = current.TotalCount
	}
	if finalStatus == domain.StatusFailed {
		msg := "UNKNOWN_ERROR"
		if errorMessage != nil && *errorMessage != "" {
			msg = *errorMessage
		}
		updates["error_message"] = msg
	}

	if err := r.db.Model(&domain.Scan{}).Where("user_id = ? AND id = ?", userID, scanID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetByIDForUser(userID, scanID)
}
