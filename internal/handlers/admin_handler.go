package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/models"
)

type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// ListUsers pages through all accounts. Supports ?role= and ?q= filters.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 25)
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	q := h.DB.Model(&models.User{}).Preload("Profile")
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("email ILIKE ? OR name ILIKE ?", like, like)
	}

	var total int64
	q.Count(&total)

	var users []models.User
	if err := q.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch users"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"users":    users,
			"total":    total,
			"page":     page,
			"per_page": perPage,
		},
	})
}

// SetUserActive flips an account's is_active flag. Deactivated users fail
// login, and the active-user middleware cuts off their outstanding tokens.
func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	targetUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil || req.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "is_active is required"})
	}

	adminUUID, _ := getUserUUID(c)
	if targetUUID == adminUUID && !*req.IsActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You cannot deactivate your own account"})
	}

	result := h.DB.Model(&models.User{}).Where("id = ?", targetUUID).
		Update("is_active", *req.IsActive)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update user"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "User updated"})
}

// GetUser returns one account with its profile for the admin dashboard.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	targetUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid user ID"})
	}

	var user models.User
	if err := h.DB.Preload("Profile").First(&user, "id = ?", targetUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}
