package domain

import "time"

// JobEmail is a single analyzed job-related message pulled from a mail
// provider. Company, position and status carry the model's extraction;
// nullable fields stay nil when the model could not determine a value.
type JobEmail struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	UserID            string     `json:"user_id" gorm:"uniqueIndex:idx_user_provider_message;not null"`
	Provider          string     `json:"provider" gorm:"uniqueIndex:idx_user_provider_message;not null"`
	ProviderMessageID string     `json:"provider_message_id" gorm:"uniqueIndex:idx_user_provider_message;not null"`
	ApplicationID     *string    `json:"application_id" gorm:"index"`
	Subject           string     `json:"subject" gorm:"type:text"`
	Sender            string     `json:"sender"`
	Snippet           string     `json:"snippet" gorm:"type:text"` // encrypted at rest
	ReceivedAt        *time.Time `json:"received_at"`
	Company           *string    `json:"company"`
	Position          *string    `json:"position"`
	Status            Status     `json:"status" gorm:"default:unknown"`
	EventType         *string    `json:"event_type"`
	Confidence        float64    `json:"confidence"`
	Archived          bool       `json:"archived" gorm:"default:false"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (JobEmail) TableName() string {
	return "job_emails"
}
