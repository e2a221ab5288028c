package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hivework/platform_be_hivework/internal/config"
	"github.com/hivework/platform_be_hivework/internal/models"
	"github.com/hivework/platform_be_hivework/internal/services/honey"
)

type HoneyHandler struct {
	DB    *gorm.DB
	Honey *honey.Service
	Cfg   config.Config
}

func NewHoneyHandler(db *gorm.DB, honeyService *honey.Service, cfg config.Config) *HoneyHandler {
	return &HoneyHandler{DB: db, Honey: honeyService, Cfg: cfg}
}

// Balance returns the caller's denormalized Honey Drops balance.
func (h *HoneyHandler) Balance(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	balance, err := h.Honey.Balance(userUUID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Profile not found"})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"balance": balance}})
}

// Transactions lists the caller's ledger, newest first, with optional
// ?type= and ?limit= filters.
func (h *HoneyHandler) Transactions(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	limit := 50
	if l, err := strconv.Atoi(c.Query("limit", "50")); err == nil && l > 0 && l <= 200 {
		limit = l
	}

	q := h.DB.Where("user_id = ?", userUUID).Order("created_at DESC").Limit(limit)
	if trxType := c.Query("type"); trxType != "" {
		q = q.Where("type = ?", trxType)
	}

	var transactions []models.HoneyTransaction
	if err := q.Find(&transactions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch transactions"})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"transactions": transactions}})
}

type HoneyOpRequest struct {
	Amount                int64  `json:"amount"`
	Description           string `json:"description"`
	PaymentID             string `json:"paymentId"`
	CouponCode            string `json:"couponCode"`
	OriginalTransactionID string `json:"originalTransactionId"`
}

// Purchase credits bought drops. An optional coupon code applies a percentage
// discount to the charged price; validity is re-derived on every redemption.
func (h *HoneyHandler) Purchase(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req HoneyOpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	// reject a bad amount before any coupon state is touched
	if err := honey.ValidateAmount(req.Amount); err != nil {
		return h.honeyError(c, err, "Failed to purchase honey drops")
	}

	meta := map[string]interface{}{}
	if req.PaymentID != "" {
		meta["payment_id"] = req.PaymentID
	}

	// coupon burn and ledger credit share one transaction: a failed purchase
	// never consumes a coupon use
	var trx *models.HoneyTransaction
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if req.CouponCode != "" {
			discount, err := redeemCoupon(tx, req.CouponCode)
			if err != nil {
				return err
			}
			meta["coupon_code"] = models.NormalizeCouponCode(req.CouponCode)
			meta["discount_percent"] = discount
		}

		var err error
		trx, err = h.Honey.CreditTx(tx, userUUID, req.Amount, models.HoneyTrxPurchase, req.Description, marshalMeta(meta))
		return err
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		return h.honeyError(c, err, "Failed to purchase honey drops")
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"transaction": trx}})
}

// Spend debits drops; insufficient balance is a hard rejection.
func (h *HoneyHandler) Spend(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req HoneyOpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	trx, err := h.Honey.Spend(userUUID, req.Amount, req.Description, nil)
	if err != nil {
		return h.honeyError(c, err, "Failed to spend honey drops")
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"transaction": trx}})
}

// Refund credits drops back to the caller. Self-service refunds are capped;
// anything larger needs the admin role.
func (h *HoneyHandler) Refund(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req HoneyOpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	if req.Amount > h.Cfg.RefundSelfCap && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Refunds above the self-service cap require an admin"})
	}

	meta := map[string]interface{}{}
	if req.OriginalTransactionID != "" {
		meta["original_transaction_id"] = req.OriginalTransactionID
	}

	trx, err := h.Honey.Refund(userUUID, req.Amount, req.Description, marshalMeta(meta))
	if err != nil {
		return h.honeyError(c, err, "Failed to refund honey drops")
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"transaction": trx}})
}

func (h *HoneyHandler) honeyError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, honey.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Amount must be greater than zero"})
	case errors.Is(err, honey.ErrInsufficientBalance):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Insufficient honey drops balance"})
	}
	log.Println("Honey ledger error:", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": fallback})
}

// redeemCoupon validates and burns one use of a coupon inside the caller's
// transaction, returning the discount percentage.
func redeemCoupon(tx *gorm.DB, code string) (int64, error) {
	normalized := models.NormalizeCouponCode(code)

	var cp models.Coupon
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", normalized).First(&cp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fiber.NewError(fiber.StatusBadRequest, "Coupon not found")
		}
		return 0, err
	}
	if !cp.IsValid(time.Now()) {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Coupon is not valid")
	}
	if err := tx.Model(&cp).Update("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		return 0, err
	}
	return cp.Discount, nil
}

func marshalMeta(meta map[string]interface{}) datatypes.JSON {
	if len(meta) == 0 {
		return nil
	}
	blob, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(blob)
}
