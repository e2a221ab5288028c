package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/config"
	"github.com/hivework/platform_be_hivework/internal/models"
	"github.com/hivework/platform_be_hivework/internal/services/honey"
)

type ApplicationHandler struct {
	DB    *gorm.DB
	Honey *honey.Service
	Cfg   config.Config
}

func NewApplicationHandler(db *gorm.DB, honeyService *honey.Service, cfg config.Config) *ApplicationHandler {
	return &ApplicationHandler{DB: db, Honey: honeyService, Cfg: cfg}
}

type ApplyRequest struct {
	CoverLetter  string `json:"cover_letter"`
	ProposedRate int64  `json:"proposed_rate"`
}

// Apply submits an application to an open job. Applying costs the configured
// Honey Drops fee; fee debit and application insert share one transaction, so
// a duplicate application never charges.
func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	jobUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid job ID"})
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Job not found"})
	}
	if job.Status != models.JobStatusOpen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Job is not open for applications"})
	}
	if job.ClientID == userUUID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "You cannot apply to your own job"})
	}

	app := models.JobApplication{
		JobID:        jobUUID,
		FreelancerID: userUUID,
		CoverLetter:  strings.TrimSpace(req.CoverLetter),
		ProposedRate: req.ProposedRate,
		Status:       models.ApplicationPending,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusBadRequest, "You have already applied to this job")
			}
			return err
		}
		if h.Cfg.ApplicationFee > 0 {
			_, err := h.Honey.DebitTx(tx, userUUID, h.Cfg.ApplicationFee,
				"Application fee for job "+job.Title, nil)
			if errors.Is(err, honey.ErrInsufficientBalance) {
				return fiber.NewError(fiber.StatusBadRequest, "Not enough honey drops to apply")
			}
			return err
		}
		return nil
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		log.Println("Error creating application:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to apply"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": app})
}

// ListForJob returns a job's applications to its owner or an admin.
func (h *ApplicationHandler) ListForJob(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	jobUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid job ID"})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Job not found"})
	}
	if job.ClientID != userUUID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	var apps []models.JobApplication
	if err := h.DB.Preload("Freelancer").Where("job_id = ?", jobUUID).
		Order("created_at ASC").Find(&apps).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch applications"})
	}
	return c.JSON(fiber.Map{"success": true, "data": apps})
}

// ListMine returns the calling freelancer's applications.
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var apps []models.JobApplication
	if err := h.DB.Preload("Job").Where("freelancer_id = ?", userUUID).
		Order("created_at DESC").Find(&apps).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch applications"})
	}
	return c.JSON(fiber.Map{"success": true, "data": apps})
}

// Update lets the freelancer edit their cover letter, but only while pending.
func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	appUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid application ID"})
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	var app models.JobApplication
	if err := h.DB.First(&app, "id = ?", appUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Application not found"})
	}
	if app.FreelancerID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}
	if app.Status != models.ApplicationPending {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Only pending applications can be edited"})
	}

	if req.CoverLetter != "" {
		app.CoverLetter = req.CoverLetter
	}
	if req.ProposedRate > 0 {
		app.ProposedRate = req.ProposedRate
	}

	if err := h.DB.Save(&app).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update application"})
	}
	return c.JSON(fiber.Map{"success": true, "data": app})
}

type ApplicationStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus lets the job owner (or an admin) move an application between
// pending/accepted/rejected. No forward-only order is enforced.
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	appUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid application ID"})
	}

	var req ApplicationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	if !models.ValidApplicationStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid status"})
	}

	var app models.JobApplication
	if err := h.DB.Preload("Job").First(&app, "id = ?", appUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Application not found"})
	}
	if app.Job == nil || (app.Job.ClientID != userUUID && !isAdmin(c)) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	app.Status = models.ApplicationStatus(req.Status)
	if err := h.DB.Save(&app).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update status"})
	}
	return c.JSON(fiber.Map{"success": true, "data": app})
}
