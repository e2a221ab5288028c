package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusSent      ContractStatus = "sent"
	ContractStatusSigned    ContractStatus = "signed" // legacy rows; treated like active
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
)

type SignatureParty string

const (
	PartyClient     SignatureParty = "client"
	PartyFreelancer SignatureParty = "freelancer"
)

var (
	ErrNotAParty     = errors.New("signer is not a party on this contract")
	ErrAlreadySigned = errors.New("party has already signed this contract")
)

// Contract binds one Job, one Client and (once assigned) one Freelancer.
// Lifecycle: draft -> sent -> active -> completed. The transition to active
// is never called directly; it falls out of recording the second signature.
type Contract struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContractNumber string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"contract_number"` // CONTRACT-2026-0001

	JobID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"job_id"`
	ClientID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	FreelancerID *uuid.UUID `gorm:"type:uuid;index" json:"freelancer_id,omitempty"`

	Title        string     `gorm:"not null" json:"title"`
	Content      string     `gorm:"type:text" json:"content"`
	Terms        string     `gorm:"type:text" json:"terms"`
	PaymentTerms string     `gorm:"type:text" json:"payment_terms"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	TotalAmount  int64      `json:"total_amount"`

	Status ContractStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`

	ClientSignatureDate     *time.Time `json:"client_signature_date,omitempty"`
	ClientSignatureData     string     `gorm:"type:text" json:"client_signature_data,omitempty"`
	FreelancerSignatureDate *time.Time `json:"freelancer_signature_date,omitempty"`
	FreelancerSignatureData string     `gorm:"type:text" json:"freelancer_signature_data,omitempty"`

	// mirror of the escrow payment rows, kept for API compatibility on reads
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job        *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Client     *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

// PartyOf returns which signature slot userID occupies, or "" if none.
func (ct *Contract) PartyOf(userID uuid.UUID) SignatureParty {
	if ct.ClientID == userID {
		return PartyClient
	}
	if ct.FreelancerID != nil && *ct.FreelancerID == userID {
		return PartyFreelancer
	}
	return ""
}

// Editable reports whether the contract body may still be changed.
// Once either both-signed state is reached (or the contract completed),
// edits are rejected; draft and sent stay editable.
func (ct *Contract) Editable() bool {
	return ct.Status == ContractStatusDraft || ct.Status == ContractStatusSent
}

// ApplySignature records a signature for the given party. A party may sign at
// most once; the second attempt is rejected without touching the stored
// signature. When both slots are filled the status flips to active,
// regardless of signing order.
func (ct *Contract) ApplySignature(party SignatureParty, data string, at time.Time) error {
	switch party {
	case PartyClient:
		if ct.ClientSignatureDate != nil {
			return ErrAlreadySigned
		}
		ct.ClientSignatureDate = &at
		ct.ClientSignatureData = data
	case PartyFreelancer:
		if ct.FreelancerSignatureDate != nil {
			return ErrAlreadySigned
		}
		ct.FreelancerSignatureDate = &at
		ct.FreelancerSignatureData = data
	default:
		return ErrNotAParty
	}

	if ct.ClientSignatureDate != nil && ct.FreelancerSignatureDate != nil {
		ct.Status = ContractStatusActive
	}
	return nil
}

// FullySigned treats the legacy "signed" value the same as "active".
func (ct *Contract) FullySigned() bool {
	return ct.Status == ContractStatusActive || ct.Status == ContractStatusSigned
}

// FormatContractNumber renders a sequential human-readable contract number.
func FormatContractNumber(year int, seq int64) string {
	return fmt.Sprintf("CONTRACT-%d-%04d", year, seq)
}
