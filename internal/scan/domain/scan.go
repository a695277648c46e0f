package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringArray is a custom type to handle JSON array in GORM
type StringArray []string

// Value implements driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, a)
}

type Status string

const (
	StatusCreated   Status = "created"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the scan reached a final state. Terminal scans
// never transition again and keep should_continue false.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled || s == StatusFailed
}

// Scan is one mailbox scan run. The identifier list is captured once at
// creation and processed in order; ProcessedCount is a prefix cursor into it.
type Scan struct {
	ID             string      `json:"id" gorm:"primaryKey"`
	UserID         string      `json:"user_id" gorm:"index;not null"`
	Provider       string      `json:"provider" gorm:"not null"`
	Status         Status      `json:"status" gorm:"default:created"`
	MessageIDs     StringArray `json:"-" gorm:"type:jsonb"`
	ProcessedCount int         `json:"processed_count"`
	TotalCount     int         `json:"total_count"`
	ShouldContinue bool        `json:"should_continue"`
	ErrorMessage   *string     `json:"error_message"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Scan) TableName() string {
	return "scans"
}
