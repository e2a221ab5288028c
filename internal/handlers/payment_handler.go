package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/services/escrow"
)

type PaymentHandler struct {
	DB     *gorm.DB
	Escrow *escrow.Service
}

func NewPaymentHandler(db *gorm.DB, escrowService *escrow.Service) *PaymentHandler {
	return &PaymentHandler{DB: db, Escrow: escrowService}
}

type CreateEscrowRequest struct {
	ContractID  string `json:"contractId"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type ReleaseEscrowRequest struct {
	ContractID string `json:"contractId"`
	PaymentID  string `json:"paymentId"`
}

func escrowErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, escrow.ErrContractNotFound):
		return fiber.StatusNotFound, "Contract not found"
	case errors.Is(err, escrow.ErrPaymentNotFound):
		return fiber.StatusNotFound, "Payment not found"
	case errors.Is(err, escrow.ErrNotContractOwner):
		return fiber.StatusForbidden, "Only the contract client can manage escrow payments"
	case errors.Is(err, escrow.ErrNoContractAmount):
		return fiber.StatusBadRequest, "Contract has no total amount set"
	case errors.Is(err, escrow.ErrInvalidAmount):
		return fiber.StatusBadRequest, "Amount must be greater than zero"
	}
	return fiber.StatusInternalServerError, "Escrow operation failed"
}

// CreateEscrow funds a new pending payment on a contract.
func (h *PaymentHandler) CreateEscrow(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req CreateEscrowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	contractUUID, err := uuid.Parse(req.ContractID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid contract ID"})
	}

	payment, err := h.Escrow.Create(contractUUID, userUUID, req.Amount, req.Description)
	if err != nil {
		code, msg := escrowErrorStatus(err)
		if code == fiber.StatusInternalServerError {
			log.Println("Error creating escrow payment:", err)
		}
		return c.Status(code).JSON(fiber.Map{"success": false, "message": msg})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"payment": payment}})
}

// ReleaseEscrow completes a pending payment.
func (h *PaymentHandler) ReleaseEscrow(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req ReleaseEscrowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	contractUUID, err := uuid.Parse(req.ContractID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid contract ID"})
	}
	paymentUUID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid payment ID"})
	}

	payment, err := h.Escrow.Release(contractUUID, userUUID, paymentUUID)
	if err != nil {
		code, msg := escrowErrorStatus(err)
		if code == fiber.StatusInternalServerError {
			log.Println("Error releasing escrow payment:", err)
		}
		return c.Status(code).JSON(fiber.Map{"success": false, "message": msg})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"payment": payment}})
}

// ListEscrow returns the payments of one contract (parties and admins).
func (h *PaymentHandler) ListEscrow(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	contractUUID, err := uuid.Parse(c.Params("contractId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid contract ID"})
	}

	var ct struct {
		ClientID     uuid.UUID
		FreelancerID *uuid.UUID
	}
	if err := h.DB.Table("contracts").Select("client_id", "freelancer_id").
		Where("id = ?", contractUUID).Take(&ct).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Contract not found"})
	}

	isParty := ct.ClientID == userUUID || (ct.FreelancerID != nil && *ct.FreelancerID == userUUID)
	if !isParty && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	payments, err := h.Escrow.List(contractUUID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch payments"})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"payments": payments}})
}
