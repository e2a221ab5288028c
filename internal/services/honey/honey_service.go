package honey

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/models"
)

var (
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient honey drops balance")
)

// Service maintains the Honey Drops ledger: an append-only transaction log
// plus the denormalized balance on the profile. Both writes always happen in
// the same DB transaction so the balance never drifts from the ledger sum.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// ValidateAmount rejects zero and negative requests before any DB work.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Balance reads the denormalized balance from the profile.
func (s *Service) Balance(userID uuid.UUID) (int64, error) {
	var profile models.Profile
	if err := s.DB.Select("honey_drops_balance").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return 0, err
	}
	return profile.HoneyDropsBalance, nil
}

// Purchase credits bought drops.
func (s *Service) Purchase(userID uuid.UUID, amount int64, description string, metadata datatypes.JSON) (*models.HoneyTransaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	var trx *models.HoneyTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		trx, err = s.CreditTx(tx, userID, amount, models.HoneyTrxPurchase, description, metadata)
		return err
	})
	return trx, err
}

// Spend debits drops; spending more than the current balance is a hard
// rejection with no mutation to balance or log.
func (s *Service) Spend(userID uuid.UUID, amount int64, description string, metadata datatypes.JSON) (*models.HoneyTransaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	var trx *models.HoneyTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		trx, err = s.DebitTx(tx, userID, amount, description, metadata)
		return err
	})
	return trx, err
}

// Refund credits drops back, optionally cross-referencing the original
// transaction id in metadata.
func (s *Service) Refund(userID uuid.UUID, amount int64, description string, metadata datatypes.JSON) (*models.HoneyTransaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	var trx *models.HoneyTransaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		trx, err = s.CreditTx(tx, userID, amount, models.HoneyTrxRefund, description, metadata)
		return err
	})
	return trx, err
}

// CreditTx adds drops and writes the ledger row. Callers already inside a
// transaction use this directly.
func (s *Service) CreditTx(tx *gorm.DB, userID uuid.UUID, amount int64, trxType models.HoneyTrxType, description string, metadata datatypes.JSON) (*models.HoneyTransaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	result := tx.Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("honey_drops_balance", gorm.Expr("honey_drops_balance + ?", amount))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("profile not found for user %s", userID)
	}

	trx := models.HoneyTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Type:        trxType,
		Description: description,
		Metadata:    metadata,
	}
	if err := tx.Create(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

// DebitTx deducts drops and writes a negative ledger row. The balance check
// lives in the UPDATE predicate, so a lost race rejects instead of going
// negative.
func (s *Service) DebitTx(tx *gorm.DB, userID uuid.UUID, amount int64, description string, metadata datatypes.JSON) (*models.HoneyTransaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	result := tx.Model(&models.Profile{}).
		Where("user_id = ? AND honey_drops_balance >= ?", userID, amount).
		Update("honey_drops_balance", gorm.Expr("honey_drops_balance - ?", amount))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Profile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("profile not found for user %s", userID)
		}
		return nil, ErrInsufficientBalance
	}

	trx := models.HoneyTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      -amount,
		Type:        models.HoneyTrxSpend,
		Description: description,
		Metadata:    metadata,
	}
	if err := tx.Create(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}
