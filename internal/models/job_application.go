package models

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// JobApplication is unique per (job, freelancer). The freelancer may edit the
// cover letter only while pending; the client (or an admin) moves the status.
type JobApplication struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_job_freelancer" json:"job_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_job_freelancer" json:"freelancer_id"`

	CoverLetter  string `gorm:"type:text" json:"cover_letter"`
	ProposedRate int64  `json:"proposed_rate"`

	Status ApplicationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job        *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

func ValidApplicationStatus(s string) bool {
	switch ApplicationStatus(s) {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}
