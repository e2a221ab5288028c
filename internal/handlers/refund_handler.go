package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/config"
	"github.com/hivework/platform_be_hivework/internal/models"
	"github.com/hivework/platform_be_hivework/internal/services/honey"
)

type RefundHandler struct {
	DB    *gorm.DB
	Honey *honey.Service
	Cfg   config.Config
}

func NewRefundHandler(db *gorm.DB, honeyService *honey.Service, cfg config.Config) *RefundHandler {
	return &RefundHandler{DB: db, Honey: honeyService, Cfg: cfg}
}

type ApplicationRefundRequest struct {
	JobID               string `json:"jobId"`
	SelectedApplicantID string `json:"selectedApplicantId"`
}

// RefundApplicationDrops returns the application fee to every applicant on a
// job except the one who was selected. One applicant's failed refund does not
// abort the batch; the response reports who actually got refunded.
func (h *RefundHandler) RefundApplicationDrops(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req ApplicationRefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	jobUUID, err := uuid.Parse(req.JobID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid job ID"})
	}
	selectedUUID, err := uuid.Parse(req.SelectedApplicantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid applicant ID"})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Job not found"})
	}
	if job.ClientID != userUUID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only the job owner can trigger application refunds"})
	}

	var applications []models.JobApplication
	if err := h.DB.Where("job_id = ? AND freelancer_id <> ?", jobUUID, selectedUUID).
		Find(&applications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch applications"})
	}

	refundAmount := h.Cfg.ApplicationFee
	refundedUsers := make([]uuid.UUID, 0, len(applications))

	for _, app := range applications {
		_, err := h.Honey.Refund(app.FreelancerID, refundAmount,
			"Application fee refund for job "+job.Title, nil)
		if err != nil {
			// isolate per-user failures, keep going
			log.Printf("Failed to refund applicant %s on job %s: %v", app.FreelancerID, job.ID, err)
			continue
		}
		refundedUsers = append(refundedUsers, app.FreelancerID)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"refundedCount": len(refundedUsers),
			"refundAmount":  refundAmount,
			"refundedUsers": refundedUsers,
		},
	})
}
