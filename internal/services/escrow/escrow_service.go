package escrow

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hivework/platform_be_hivework/internal/models"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrNotContractOwner = errors.New("only the contract client can manage escrow payments")
	ErrNoContractAmount = errors.New("contract has no total amount set")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
)

// Service tracks escrow payments against contracts. Payments live in their
// own table keyed by a unique payment id; the contract's metadata JSON is
// kept as a read-only mirror of the rows so contract reads still expose the
// payments array.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Create appends a pending escrow payment to a contract. Client-only; the
// contract must exist and carry a positive total amount.
func (s *Service) Create(contractID, callerID uuid.UUID, amount int64, description string) (*models.EscrowPayment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var payment models.EscrowPayment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var ct models.Contract
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ct, "id = ?", contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return err
		}
		if ct.ClientID != callerID {
			return ErrNotContractOwner
		}
		if ct.TotalAmount <= 0 {
			return ErrNoContractAmount
		}

		payment = models.EscrowPayment{
			ID:          uuid.New(),
			ContractID:  ct.ID,
			Amount:      amount,
			Status:      models.EscrowStatusPending,
			Type:        "escrow",
			Description: description,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return s.syncMetadata(tx, &ct)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Release flips a payment to completed and stamps completed_at. Releasing an
// already-completed payment re-stamps it; other payments on the contract are
// untouched.
func (s *Service) Release(contractID, callerID, paymentID uuid.UUID) (*models.EscrowPayment, error) {
	var payment models.EscrowPayment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var ct models.Contract
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ct, "id = ?", contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return err
		}
		if ct.ClientID != callerID {
			return ErrNotContractOwner
		}

		if err := tx.First(&payment, "id = ? AND contract_id = ?", paymentID, ct.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}

		payment.Release(time.Now())
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}
		return s.syncMetadata(tx, &ct)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// List returns all payments of a contract, oldest first.
func (s *Service) List(contractID uuid.UUID) ([]models.EscrowPayment, error) {
	var payments []models.EscrowPayment
	err := s.DB.Where("contract_id = ?", contractID).Order("created_at ASC").Find(&payments).Error
	return payments, err
}

// syncMetadata rewrites the payments mirror inside the contract metadata
// blob from the rows, so the mirror can never diverge from the table.
func (s *Service) syncMetadata(tx *gorm.DB, ct *models.Contract) error {
	var payments []models.EscrowPayment
	if err := tx.Where("contract_id = ?", ct.ID).Order("created_at ASC").Find(&payments).Error; err != nil {
		return err
	}

	meta := map[string]interface{}{}
	if len(ct.Metadata) > 0 {
		_ = json.Unmarshal(ct.Metadata, &meta)
	}
	meta["payments"] = payments

	blob, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return tx.Model(&models.Contract{}).Where("id = ?", ct.ID).Update("metadata", blob).Error
}
