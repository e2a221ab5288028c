package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/models"
)

type CouponHandler struct {
	DB *gorm.DB
}

func NewCouponHandler(db *gorm.DB) *CouponHandler {
	return &CouponHandler{DB: db}
}

// Validate checks a code without redeeming it. Validity is re-derived on
// every call, never cached.
func (h *CouponHandler) Validate(c *fiber.Ctx) error {
	code := models.NormalizeCouponCode(c.Params("code"))
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Code is required"})
	}

	var cp models.Coupon
	if err := h.DB.Where("code = ?", code).First(&cp).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Coupon not found"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"code":     cp.Code,
			"discount": cp.Discount,
			"valid":    cp.IsValid(time.Now()),
		},
	})
}

type CouponRequest struct {
	Code      string `json:"code"`
	Discount  int64  `json:"discount"`
	MaxUses   int    `json:"max_uses"`
	ExpiresAt string `json:"expires_at"` // ISO date
	IsActive  *bool  `json:"is_active"`
}

// Create registers a coupon. Admin only (enforced by route middleware).
func (h *CouponHandler) Create(c *fiber.Ctx) error {
	var req CouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	code := models.NormalizeCouponCode(req.Code)
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Code is required"})
	}
	if req.Discount <= 0 || req.Discount > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Discount must be between 1 and 100"})
	}
	if req.MaxUses <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Max uses must be positive"})
	}

	cp := models.Coupon{
		Code:     code,
		Discount: req.Discount,
		MaxUses:  req.MaxUses,
		IsActive: true,
	}
	if req.ExpiresAt != "" {
		if d, err := time.Parse("2006-01-02", req.ExpiresAt); err == nil {
			cp.ExpiresAt = &d
		}
	}
	if req.IsActive != nil {
		cp.IsActive = *req.IsActive
	}

	if err := h.DB.Create(&cp).Error; err != nil {
		log.Println("Error creating coupon:", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Failed to create coupon (duplicate code?)"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": cp})
}

// List returns all coupons. Admin only.
func (h *CouponHandler) List(c *fiber.Ctx) error {
	var coupons []models.Coupon
	if err := h.DB.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch coupons"})
	}
	return c.JSON(fiber.Map{"success": true, "data": coupons})
}

// Deactivate flips is_active off. Admin only.
func (h *CouponHandler) Deactivate(c *fiber.Ctx) error {
	code := models.NormalizeCouponCode(c.Params("code"))

	result := h.DB.Model(&models.Coupon{}).Where("code = ?", code).Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to deactivate coupon"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Coupon not found"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Coupon deactivated"})
}
