package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/models"
)

type ProfileHandler struct {
	DB *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{DB: db}
}

// Me returns the caller's user record with the profile attached.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var user models.User
	if err := h.DB.Preload("Profile").First(&user, "id = ?", userUUID).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true, "data": user})
}

type UpdateProfileRequest struct {
	HourlyRate  *int64  `json:"hourly_rate"`
	Bio         *string `json:"bio"`
	CompanyName *string `json:"company_name"`
	CompanySite *string `json:"company_site"`
}

// Update edits the caller's own profile. The honey drops balance is never
// writable here; only the ledger moves it.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	var profile models.Profile
	if err := h.DB.Where("user_id = ?", userUUID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Profile not found"})
	}

	if req.HourlyRate != nil {
		profile.HourlyRate = *req.HourlyRate
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.CompanyName != nil {
		profile.CompanyName = *req.CompanyName
	}
	if req.CompanySite != nil {
		profile.CompanySite = *req.CompanySite
	}

	if err := h.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}
