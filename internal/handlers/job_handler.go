package handlers

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/models"
)

type JobHandler struct {
	DB *gorm.DB
}

func NewJobHandler(db *gorm.DB) *JobHandler {
	return &JobHandler{DB: db}
}

type JobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Budget      int64  `json:"budget"`
	Status      string `json:"status"`
	Deadline    string `json:"deadline"` // ISO date
}

// Attachment is the file descriptor stored in the job's attachments array.
// Upload/storage itself happens elsewhere; the job only tracks metadata.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// Create posts a new open job for the calling client.
func (h *JobHandler) Create(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req JobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Title is required"})
	}

	job := models.Job{
		ClientID:    userUUID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Budget:      req.Budget,
		Status:      models.JobStatusOpen,
		Attachments: datatypes.JSON([]byte("[]")),
	}
	if req.Deadline != "" {
		if d, err := time.Parse("2006-01-02", req.Deadline); err == nil {
			job.Deadline = &d
		}
	}

	if err := h.DB.Create(&job).Error; err != nil {
		log.Println("Error creating job:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create job"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": job})
}

// ListPublic returns open jobs, newest first.
func (h *JobHandler) ListPublic(c *fiber.Ctx) error {
	var jobs []models.Job
	q := h.DB.Where("status = ?", models.JobStatusOpen).Order("created_at DESC").Limit(100)
	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch jobs"})
	}
	return c.JSON(fiber.Map{"success": true, "data": jobs})
}

// ListMine returns the calling client's jobs with applications preloaded.
func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var jobs []models.Job
	if err := h.DB.Preload("Applications").Where("client_id = ?", userUUID).
		Order("created_at DESC").Find(&jobs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch jobs"})
	}
	return c.JSON(fiber.Map{"success": true, "data": jobs})
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	jobUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid job ID"})
	}

	var job models.Job
	if err := h.DB.Preload("Client").First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Job not found"})
	}
	return c.JSON(fiber.Map{"success": true, "data": job})
}

// Update edits a job. Owner or admin; status strings are checked but no
// forward-only order is enforced.
func (h *JobHandler) Update(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	jobUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid job ID"})
	}

	var req JobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Job not found"})
	}
	if job.ClientID != userUUID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	if req.Title != "" {
		job.Title = req.Title
	}
	if req.Description != "" {
		job.Description = req.Description
	}
	if req.Category != "" {
		job.Category = req.Category
	}
	if req.Budget > 0 {
		job.Budget = req.Budget
	}
	if req.Status != "" {
		if !models.ValidJobStatus(req.Status) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid status"})
		}
		job.Status = models.JobStatus(req.Status)
	}
	if req.Deadline != "" {
		if d, err := time.Parse("2006-01-02", req.Deadline); err == nil {
			job.Deadline = &d
		}
	}

	if err := h.DB.Save(&job).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update job"})
	}
	return c.JSON(fiber.Map{"success": true, "data": job})
}

func (h *JobHandler) Delete(c *fiber.Ctx) error {
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

	if err := h.DB.Delete(&job).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to delete job"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Job deleted"})
}

type AttachmentRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// AddAttachment appends a file descriptor to the job's attachments array.
func (h *JobHandler) AddAttachment(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	jobUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid job ID"})
	}

	var req AttachmentRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Name and URL are required"})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Job not found"})
	}
	if job.ClientID != userUUID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	var attachments []Attachment
	if len(job.Attachments) > 0 {
		_ = json.Unmarshal(job.Attachments, &attachments)
	}
	attachments = append(attachments, Attachment{
		ID:   uuid.New().String(),
		Name: req.Name,
		URL:  req.URL,
		Size: req.Size,
	})

	blob, _ := json.Marshal(attachments)
	job.Attachments = blob
	if err := h.DB.Save(&job).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to add attachment"})
	}
	return c.JSON(fiber.Map{"success": true, "data": job})
}

// RemoveAttachment drops one descriptor by id.
func (h *JobHandler) RemoveAttachment(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	jobUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid job ID"})
	}
	attachmentID := c.Params("attachmentId")

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Job not found"})
	}
	if job.ClientID != userUUID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	var attachments []Attachment
	if len(job.Attachments) > 0 {
		_ = json.Unmarshal(job.Attachments, &attachments)
	}

	kept := attachments[:0]
	found := false
	for _, a := range attachments {
		if a.ID == attachmentID {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Attachment not found"})
	}

	blob, _ := json.Marshal(kept)
	job.Attachments = blob
	if err := h.DB.Save(&job).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to remove attachment"})
	}
	return c.JSON(fiber.Map{"success": true, "data": job})
}
