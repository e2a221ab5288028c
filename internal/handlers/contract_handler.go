package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hivework/platform_be_hivework/internal/models"
)

type ContractHandler struct {
	DB *gorm.DB
}

func NewContractHandler(db *gorm.DB) *ContractHandler {
	return &ContractHandler{DB: db}
}

type CreateContractRequest struct {
	JobID        string `json:"jobId"`
	FreelancerID string `json:"freelancerId"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Terms        string `json:"terms"`
	PaymentTerms string `json:"paymentTerms"`
	Deadline     string `json:"deadline"` // ISO date
	TotalAmount  int64  `json:"totalAmount"`
}

const contractNumberAttempts = 5

// nextContractNumber derives CONTRACT-<year>-NNNN from the current row count.
// The unique index on contract_number plus caller-side retry makes the
// count-then-format race safe.
func nextContractNumber(tx *gorm.DB, now time.Time) (string, error) {
	var count int64
	if err := tx.Model(&models.Contract{}).Count(&count).Error; err != nil {
		return "", err
	}
	return models.FormatContractNumber(now.Year(), count+1), nil
}

// Create opens a draft contract on a job. Clients may only contract their own
// jobs; admins may contract any.
func (h *ContractHandler) Create(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req CreateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Title is required"})
	}
	jobUUID, err := uuid.Parse(req.JobID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid job ID"})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Job not found"})
	}

	if job.ClientID != userUUID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only the job owner can create a contract"})
	}

	var freelancerID *uuid.UUID
	if req.FreelancerID != "" {
		fid, err := uuid.Parse(req.FreelancerID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid freelancer ID"})
		}
		freelancerID = &fid
	}

	var deadline *time.Time
	if req.Deadline != "" {
		if d, err := time.Parse("2006-01-02", req.Deadline); err == nil {
			deadline = &d
		}
	}

	ct := models.Contract{
		JobID:        job.ID,
		ClientID:     job.ClientID,
		FreelancerID: freelancerID,
		Title:        req.Title,
		Content:      req.Content,
		Terms:        req.Terms,
		PaymentTerms: req.PaymentTerms,
		Deadline:     deadline,
		TotalAmount:  req.TotalAmount,
		Status:       models.ContractStatusDraft,
	}

	// retry on a contract-number collision from a concurrent create
	for attempt := 0; attempt < contractNumberAttempts; attempt++ {
		err = h.DB.Transaction(func(tx *gorm.DB) error {
			number, err := nextContractNumber(tx, time.Now())
			if err != nil {
				return err
			}
			ct.ContractNumber = number
			return tx.Create(&ct).Error
		})
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		ct.ID = uuid.Nil
	}
	if err != nil {
		log.Println("Error creating contract:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create contract"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": ct})
}

// List returns the contracts the caller is a party of; admins see everything.
func (h *ContractHandler) List(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	q := h.DB.Preload("Client").Preload("Freelancer").Order("created_at DESC")
	if !isAdmin(c) {
		q = q.Where("client_id = ? OR freelancer_id = ?", userUUID, userUUID)
	}

	var contracts []models.Contract
	if err := q.Find(&contracts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch contracts"})
	}

	return c.JSON(fiber.Map{"success": true, "data": contracts})
}

// Get returns one contract to its client, freelancer or an admin.
func (h *ContractHandler) Get(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	ctUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid contract ID"})
	}

	var ct models.Contract
	if err := h.DB.Preload("Client").Preload("Freelancer").Preload("Job").First(&ct, "id = ?", ctUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Contract not found"})
	}

	if ct.PartyOf(userUUID) == "" && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	return c.JSON(fiber.Map{"success": true, "data": ct})
}

type UpdateContractRequest struct {
	FreelancerID *string `json:"freelancerId"`
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	Terms        *string `json:"terms"`
	PaymentTerms *string `json:"paymentTerms"`
	Deadline     *string `json:"deadline"`
	TotalAmount  *int64  `json:"totalAmount"`
}

// Update edits contract fields. Client or admin only, and rejected outright
// once the contract is signed; draft and sent stay editable.
func (h *ContractHandler) Update(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	ctUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid contract ID"})
	}

	var req UpdateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	var ct models.Contract
	if err := h.DB.First(&ct, "id = ?", ctUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Contract not found"})
	}

	if ct.ClientID != userUUID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only the client or an admin can update a contract"})
	}

	if !ct.Editable() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Contract can no longer be edited once signed"})
	}

	if req.FreelancerID != nil {
		fid, err := uuid.Parse(*req.FreelancerID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid freelancer ID"})
		}
		ct.FreelancerID = &fid
	}
	if req.Title != nil {
		ct.Title = *req.Title
	}
	if req.Content != nil {
		ct.Content = *req.Content
	}
	if req.Terms != nil {
		ct.Terms = *req.Terms
	}
	if req.PaymentTerms != nil {
		ct.PaymentTerms = *req.PaymentTerms
	}
	if req.Deadline != nil {
		if d, err := time.Parse("2006-01-02", *req.Deadline); err == nil {
			ct.Deadline = &d
		}
	}
	if req.TotalAmount != nil {
		ct.TotalAmount = *req.TotalAmount
	}

	if err := h.DB.Save(&ct).Error; err != nil {
		log.Println("Error updating contract:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update contract"})
	}

	return c.JSON(fiber.Map{"success": true, "data": ct})
}

// Send moves a draft to sent. Client only, draft only.
func (h *ContractHandler) Send(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	ctUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid contract ID"})
	}

	var ct models.Contract
	if err := h.DB.First(&ct, "id = ?", ctUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Contract not found"})
	}

	if ct.ClientID != userUUID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Only the client can send a contract"})
	}
	if ct.Status != models.ContractStatusDraft {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Only draft contracts can be sent"})
	}

	ct.Status = models.ContractStatusSent
	if err := h.DB.Save(&ct).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to send contract"})
	}

	return c.JSON(fiber.Map{"success": true, "data": ct})
}

type SignContractRequest struct {
	SignatureData string `json:"signatureData"`
}

// Sign records the caller's signature. The actor must be exactly the client
// or the freelancer on the contract, each may sign at most once, and the
// contract becomes active the moment both slots are filled, regardless of
// signing order.
func (h *ContractHandler) Sign(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	ctUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid contract ID"})
	}

	var req SignContractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	if strings.TrimSpace(req.SignatureData) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Signature data is required"})
	}

	var ct models.Contract
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ct, "id = ?", ctUUID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Contract not found")
			}
			return err
		}

		party := ct.PartyOf(userUUID)
		if party == "" {
			return fiber.NewError(fiber.StatusForbidden, "Only a contract party can sign")
		}

		if err := ct.ApplySignature(party, req.SignatureData, time.Now()); err != nil {
			if errors.Is(err, models.ErrAlreadySigned) {
				return fiber.NewError(fiber.StatusBadRequest, "You have already signed this contract")
			}
			return err
		}

		return tx.Save(&ct).Error
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		log.Println("Error signing contract:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to sign contract"})
	}

	return c.JSON(fiber.Map{"success": true, "data": ct})
}
