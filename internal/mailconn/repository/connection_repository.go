package repository

import (
	"time"

	"gorm.io/gorm"

	"jobpulse-backend/internal/mailconn/domain"
	"jobpulse-backend/pkg/crypto"
)

// MailConnectionRepository defines data access for mail provider connections.
// Refresh tokens are encrypted at rest; implementations return them decrypted.
type MailConnectionRepository interface {
	// Get returns the user's connection, or (nil, nil) when none exists
	Get(userID string) (*domain.MailConnection, error)
	// Upsert creates or replaces the user's connection
	Upsert(conn *domain.MailConnection) error
	// Delete removes the user's connection
	Delete(userID string) error
}

// gormMailConnectionRepository implements MailConnectionRepository using GORM
type gormMailConnectionRepository struct {
	db  *gorm.DB
	box *crypto.Box
}

// NewGormMailConnectionRepository creates a new GORM-based MailConnectionRepository
func NewGormMailConnectionRepository(db *gorm.DB, box *crypto.Box) MailConnectionRepository {
	return &gormMailConnectionRepository{db: db, box: box}
}

func (r *gormMailConnectionRepository) Get(userID string) (*domain.MailConnection, error) {
	var conn domain.MailConnection
	err := r.db.Where("user_id = ?", userID).First(&conn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	plain, err := r.box.Decrypt(conn.RefreshToken)
	if err != nil {
		return nil, err
	}
	conn.RefreshToken = plain
	return &conn, nil
}

func (r *gormMailConnectionRepository) Upsert(conn *domain.MailConnection) error {
	sealed, err := r.box.Encrypt(conn.RefreshToken)
	if err != nil {
		return err
	}

	var existing domain.MailConnection
	err = r.db.Where("user_id = ?", conn.UserID).First(&existing).Error

	now := time.Now()
	if err == gorm.ErrRecordNotFound {
		stored := *conn
		stored.RefreshToken = sealed
		stored.CreatedAt = now
		stored.UpdatedAt = now
		return r.db.Create(&stored).Error
	} else if err != nil {
		return err
	}

	existing.Provider = conn.Provider
	existing.Email = conn.Email
	existing.RefreshToken = sealed
	existing.UpdatedAt = now
	return r.db.Save(&existing).Error
}

func (r *gormMailConnectionRepository) Delete(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&domain.MailConnection{}).Error
}
