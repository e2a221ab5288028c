package models

import (
	"time"

	"github.com/google/uuid"
)

// Referral records one successful invite. The referrer earns the configured
// Honey Drops reward until the per-user referral limit is reached.
type Referral struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReferrerID uuid.UUID `gorm:"type:uuid;not null;index" json:"referrer_id"`
	ReferredID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"referred_id"`

	RewardAmount int64 `gorm:"not null" json:"reward_amount"` // 0 when the limit was already reached

	CreatedAt time.Time `json:"created_at"`

	Referrer *User `gorm:"foreignKey:ReferrerID" json:"-"`
	Referred *User `gorm:"foreignKey:ReferredID" json:"-"`
}
