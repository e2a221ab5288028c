package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile extends User with marketplace data and carries the denormalized
// Honey Drops balance. The balance is only ever mutated together with a
// HoneyTransaction row, inside the same DB transaction, so that
// balance == sum(transactions.amount) holds at all times.
type Profile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	HoneyDropsBalance int64 `gorm:"not null;default:0" json:"honey_drops_balance"`

	HourlyRate  int64  `json:"hourly_rate"`
	Bio         string `gorm:"type:text" json:"bio"`
	CompanyName string `gorm:"type:varchar(150)" json:"company_name"`
	CompanySite string `gorm:"type:varchar(200)" json:"company_site"`
	AvatarURL   string `gorm:"type:text" json:"avatar_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
