package domain

import "time"

const (
	CreatedByAuto = "auto"
	CreatedByUser = "user"
)

// JobApplication groups job emails that belong to the same application.
// Company, position, status, AppliedAt and LastActivityAt are summary
// fields recomputed from the member emails; Notes and Archived are
// user-managed and never touched by recomputation.
type JobApplication struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	UserID         string     `json:"user_id" gorm:"index;not null"`
	Company        *string    `json:"company"`
	Position       *string    `json:"position"`
	Status         Status     `json:"status" gorm:"default:unknown"`
	AppliedAt      *time.Time `json:"applied_at"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	Notes          string     `json:"notes" gorm:"type:text"`
	Archived       bool       `json:"archived" gorm:"default:false"`
	CreatedBy      string     `json:"created_by" gorm:"default:auto"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (JobApplication) TableName() string {
	return "job_applications"
}
