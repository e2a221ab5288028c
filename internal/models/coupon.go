package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Coupon struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"code"` // stored upper-cased

	Discount  int64      `gorm:"not null" json:"discount"` // percent off a honey purchase
	MaxUses   int        `gorm:"not null" json:"max_uses"`
	UsedCount int        `gorm:"not null;default:0" json:"used_count"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeCouponCode upper-cases and trims a user-supplied code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValid re-derives validity on every check: the coupon must be active, not
// expired, and not used up.
func (cp *Coupon) IsValid(now time.Time) bool {
	if !cp.IsActive {
		return false
	}
	if cp.ExpiresAt != nil && cp.ExpiresAt.Before(now) {
		return false
	}
	if cp.UsedCount >= cp.MaxUses {
		return false
	}
	return true
}
