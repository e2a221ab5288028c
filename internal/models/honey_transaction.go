package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type HoneyTrxType string

const (
	HoneyTrxPurchase HoneyTrxType = "purchase" // drops bought, amount > 0
	HoneyTrxSpend    HoneyTrxType = "spend"    // drops spent, amount < 0
	HoneyTrxRefund   HoneyTrxType = "refund"   // drops returned, amount > 0
)

// HoneyTransaction is an append-only ledger row. Rows are never updated or
// deleted after creation.
type HoneyTransaction struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Amount      int64          `gorm:"not null" json:"amount"` // signed: credit > 0, debit < 0
	Type        HoneyTrxType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Description string         `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"` // e.g. original transaction id on a refund
	CreatedAt   time.Time      `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
