package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "WELCOME10", NormalizeCouponCode("  welcome10 "))
	assert.Equal(t, "", NormalizeCouponCode("   "))
}

func TestCouponIsValid(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name   string
		coupon Coupon
		want   bool
	}{
		{"active with headroom", Coupon{IsActive: true, MaxUses: 10, UsedCount: 3, ExpiresAt: &future}, true},
		{"no expiry set", Coupon{IsActive: true, MaxUses: 1, UsedCount: 0}, true},
		{"deactivated", Coupon{IsActive: false, MaxUses: 10, UsedCount: 0}, false},
		{"expired", Coupon{IsActive: true, MaxUses: 10, UsedCount: 0, ExpiresAt: &past}, false},
		{"used up", Coupon{IsActive: true, MaxUses: 5, UsedCount: 5}, false},
		{"over-used", Coupon{IsActive: true, MaxUses: 5, UsedCount: 7}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.coupon.IsValid(now))
		})
	}
}
