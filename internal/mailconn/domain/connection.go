package domain

import "time"

// MailConnection stores a user's link to a mail provider. One connection per
// user; the refresh token is encrypted at rest.
type MailConnection struct {
	UserID       string    `json:"user_id" gorm:"primaryKey"`
	Provider     string    `json:"provider" gorm:"not null"`
	Email        string    `json:"email"`
	RefreshToken string    `json:"-" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (MailConnection) TableName() string {
	return "mail_connections"
}
