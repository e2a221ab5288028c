package handlers

import (
	"log"
	"math/rand"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/config"
	"github.com/hivework/platform_be_hivework/internal/models"
	"github.com/hivework/platform_be_hivework/internal/services/honey"
	"github.com/hivework/platform_be_hivework/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	Honey     *honey.Service
	Cfg       config.Config
	JWTSecret string
	Expires   int
}

type RegisterReq struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Role         string `json:"role"` // client / freelancer (admin is never self-served)
	ReferralCode string `json:"referral_code"`
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

const referralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateReferralCode() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = referralAlphabet[rand.Intn(len(referralAlphabet))]
	}
	return string(b)
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)
	password := strings.TrimSpace(req.Password)

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != string(models.RoleFreelancer) {
		role = string(models.RoleClient)
	}

	errs := FieldErrors{}
	if name == "" {
		errs.Add("name", "Name is required")
	}
	if email == "" {
		errs.Add("email", "Email is required")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "Email format is invalid")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) < 6 {
		errs.Add("password", "Password must be at least 6 characters")
	}
	if phone != "" && len(phone) < 8 {
		errs.Add("phone", "Phone number is invalid")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var existing models.User
	if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		errs.Add("email", "Email is already registered")
		return validationFail(c, errs)
	} else if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Server error",
		})
	}

	// resolve the referrer before opening the tx; a bad code is not fatal
	var referrer *models.User
	if code := strings.ToUpper(strings.TrimSpace(req.ReferralCode)); code != "" {
		var ref models.User
		if err := h.DB.Where("referral_code = ?", code).First(&ref).Error; err == nil {
			referrer = &ref
		}
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to process password",
		})
	}

	u := models.User{
		Name:         name,
		Email:        email,
		Password:     pw,
		Role:         models.Role(role),
		IsActive:     true,
		Phone:        phone,
		ReferralCode: generateReferralCode(),
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Profile{UserID: u.ID}).Error; err != nil {
			return err
		}

		if referrer == nil {
			return nil
		}

		// reward the referrer until the configured limit; past it the
		// referral is still recorded with a zero reward
		var rewarded int64
		if err := tx.Model(&models.Referral{}).
			Where("referrer_id = ? AND reward_amount > 0", referrer.ID).
			Count(&rewarded).Error; err != nil {
			return err
		}

		reward := h.Cfg.ReferralReward
		if rewarded >= int64(h.Cfg.ReferralLimit) {
			reward = 0
		}

		ref := models.Referral{
			ReferrerID:   referrer.ID,
			ReferredID:   u.ID,
			RewardAmount: reward,
		}
		if err := tx.Create(&ref).Error; err != nil {
			return err
		}

		if reward > 0 {
			_, err := h.Honey.CreditTx(tx, referrer.ID, reward, models.HoneyTrxRefund,
				"Referral reward for inviting "+u.Email, nil)
			return err
		}
		return nil
	})
	if err != nil {
		log.Println("Error registering user:", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Failed to register",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create token",
		})
	}

	h.setAuthCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registered",
		"data": fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":            u.ID,
				"name":          u.Name,
				"email":         u.Email,
				"phone":         u.Phone,
				"role":          u.Role,
				"referral_code": u.ReferralCode,
			},
		},
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid body",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "Email is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var u models.User
	if err := h.DB.Where("email = ?", email).First(&u).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Wrong email or password",
		})
	}

	if !u.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Account is disabled",
		})
	}

	if !utils.CheckPassword(u.Password, password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Wrong email or password",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create token",
		})
	}

	h.setAuthCookie(c, token)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in",
		"data": fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    u.ID,
				"name":  u.Name,
				"email": u.Email,
				"role":  u.Role,
			},
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "hw_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "hw_token",
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
}
