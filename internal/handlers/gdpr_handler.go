package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/models"
)

type GDPRHandler struct {
	DB *gorm.DB
}

func NewGDPRHandler(db *gorm.DB) *GDPRHandler {
	return &GDPRHandler{DB: db}
}

// ExportData returns every row belonging to the caller as one JSON document.
func (h *GDPRHandler) ExportData(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var user models.User
	if err := h.DB.Preload("Profile").First(&user, "id = ?", userUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
	}

	// a failed section must fail the whole export, never silently come back empty
	var jobs []models.Job
	var applications []models.JobApplication
	var contracts []models.Contract
	var transactions []models.HoneyTransaction
	var messages []models.Message
	var referrals []models.Referral

	queries := []*gorm.DB{
		h.DB.Where("client_id = ?", userUUID).Find(&jobs),
		h.DB.Where("freelancer_id = ?", userUUID).Find(&applications),
		h.DB.Where("client_id = ? OR freelancer_id = ?", userUUID, userUUID).Find(&contracts),
		h.DB.Where("user_id = ?", userUUID).Order("created_at ASC").Find(&transactions),
		h.DB.Where("sender_id = ? OR recipient_id = ?", userUUID, userUUID).
			Order("created_at ASC").Find(&messages),
		h.DB.Where("referrer_id = ? OR referred_id = ?", userUUID, userUUID).Find(&referrals),
	}
	for _, q := range queries {
		if q.Error != nil {
			log.Println("Error exporting user data:", q.Error)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to export data"})
		}
	}

	export := fiber.Map{
		"exported_at":        time.Now().UTC(),
		"user":               user,
		"jobs":               jobs,
		"applications":       applications,
		"contracts":          contracts,
		"honey_transactions": transactions,
		"messages":           messages,
		"referrals":          referrals,
	}

	c.Set("Content-Disposition", `attachment; filename="hivework-export.json"`)
	return c.JSON(fiber.Map{"success": true, "data": export})
}

// DeleteAccount hard-deletes the caller and every dependent row in one
// transaction. Contracts the user is party to go too, escrow rows first.
func (h *GDPRHandler) DeleteAccount(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var contractIDs []string
		if err := tx.Model(&models.Contract{}).
			Where("client_id = ? OR freelancer_id = ?", userUUID, userUUID).
			Pluck("id", &contractIDs).Error; err != nil {
			return err
		}
		if len(contractIDs) > 0 {
			if err := tx.Where("contract_id IN ?", contractIDs).Delete(&models.EscrowPayment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", contractIDs).Delete(&models.Contract{}).Error; err != nil {
				return err
			}
		}

		var jobIDs []string
		if err := tx.Model(&models.Job{}).Where("client_id = ?", userUUID).
			Pluck("id", &jobIDs).Error; err != nil {
			return err
		}
		if len(jobIDs) > 0 {
			if err := tx.Where("job_id IN ?", jobIDs).Delete(&models.JobApplication{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", jobIDs).Delete(&models.Job{}).Error; err != nil {
				return err
			}
		}

		steps := []*gorm.DB{
			tx.Where("freelancer_id = ?", userUUID).Delete(&models.JobApplication{}),
			tx.Where("sender_id = ? OR recipient_id = ?", userUUID, userUUID).Delete(&models.Message{}),
			tx.Where("user_id = ?", userUUID).Delete(&models.HoneyTransaction{}),
			tx.Where("referrer_id = ? OR referred_id = ?", userUUID, userUUID).Delete(&models.Referral{}),
			tx.Where("user_id = ?", userUUID).Delete(&models.Profile{}),
			tx.Where("id = ?", userUUID).Delete(&models.User{}),
		}
		for _, step := range steps {
			if step.Error != nil {
				return step.Error
			}
		}
		return nil
	})
	if err != nil {
		log.Println("Error deleting account:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to delete account"})
	}

	c.ClearCookie("hw_token")
	return c.JSON(fiber.Map{"success": true, "message": "Account and all associated data deleted"})
}
