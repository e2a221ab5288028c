package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

type Job struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:varchar(80)" json:"category"`
	Budget      int64  `json:"budget"`

	Status JobStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`

	// array of file descriptors {id, name, url, size}, appended/removed imperatively
	Attachments datatypes.JSON `json:"attachments"`

	Deadline *time.Time `json:"deadline,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client       *User            `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Applications []JobApplication `gorm:"foreignKey:JobID" json:"applications,omitempty"`
}

func ValidJobStatus(s string) bool {
	switch JobStatus(s) {
	case JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}
