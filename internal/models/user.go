package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone string    `gorm:"type:varchar(30)" json:"phone"`

	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	EmailVerified   bool `gorm:"default:false" json:"email_verified"`
	PhoneVerified   bool `gorm:"default:false" json:"phone_verified"`
	PaymentVerified bool `gorm:"default:false" json:"payment_verified"`

	// short code handed out to invite other users
	ReferralCode string `gorm:"type:varchar(12);uniqueIndex" json:"referral_code"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// HAS ONE profile (profiles.user_id -> users.id)
	Profile *Profile `gorm:"foreignKey:UserID;references:ID" json:"profile,omitempty"`
}
