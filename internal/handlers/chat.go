package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/models"
	"github.com/hivework/platform_be_hivework/internal/realtime"
	"github.com/hivework/platform_be_hivework/internal/utils"
)

type ChatHandler struct {
	DB        *gorm.DB
	Hub       *realtime.Hub
	JWTSecret string
}

func NewChatHandler(db *gorm.DB, hub *realtime.Hub, jwtSecret string) *ChatHandler {
	return &ChatHandler{DB: db, Hub: hub, JWTSecret: jwtSecret}
}

type SendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text"`
}

// SendMessage stores a direct message under the derived conversation key and
// pushes it to both participants over the hub.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Text is required"})
	}

	recipientUUID, err := uuid.Parse(req.RecipientID)
	if err != nil || recipientUUID == userUUID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid recipient"})
	}

	var recipient models.User
	if err := h.DB.First(&recipient, "id = ?", recipientUUID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Recipient not found"})
	}

	msg := models.Message{
		ConversationKey: models.ConversationKey(userUUID, recipientUUID),
		SenderID:        userUUID,
		RecipientID:     recipientUUID,
		Type:            "text",
		Text:            req.Text,
	}
	if err := h.DB.Create(&msg).Error; err != nil {
		log.Println("Error creating message:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to send message"})
	}

	h.Hub.SendToConversation(userUUID, recipientUUID, fiber.Map{
		"type":    "new_message",
		"message": msg,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": msg})
}

// GetConversations returns the caller's threads, newest activity first: one
// entry per conversation key with its latest message and unread count.
func (h *ChatHandler) GetConversations(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	var messages []models.Message
	if err := h.DB.Where("sender_id = ? OR recipient_id = ?", userUUID, userUUID).
		Order("created_at DESC").Limit(500).Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch conversations"})
	}

	type conversation struct {
		Key         string         `json:"key"`
		PartnerID   uuid.UUID      `json:"partner_id"`
		LastMessage models.Message `json:"last_message"`
		Unread      int            `json:"unread"`
	}

	byKey := map[string]*conversation{}
	order := []string{}
	for _, m := range messages {
		conv, ok := byKey[m.ConversationKey]
		if !ok {
			conv = &conversation{
				Key:         m.ConversationKey,
				PartnerID:   models.ConversationPartner(m.ConversationKey, userUUID),
				LastMessage: m, // messages arrive newest first
			}
			byKey[m.ConversationKey] = conv
			order = append(order, m.ConversationKey)
		}
		if m.RecipientID == userUUID && !m.IsRead {
			conv.Unread++
		}
	}

	out := make([]conversation, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

// GetMessages lists the history of one conversation key. The caller must be
// encoded in the key.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	key := c.Params("key")
	if models.ConversationPartner(key, userUUID) == uuid.Nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	var messages []models.Message
	if err := h.DB.Preload("Sender").Where("conversation_key = ?", key).
		Order("created_at ASC").Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch messages"})
	}

	return c.JSON(fiber.Map{"success": true, "data": messages})
}

// MarkAsRead stamps every unread message addressed to the caller in a thread.
func (h *ChatHandler) MarkAsRead(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	key := c.Params("key")
	if models.ConversationPartner(key, userUUID) == uuid.Nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Access denied"})
	}

	now := time.Now()
	if err := h.DB.Model(&models.Message{}).
		Where("conversation_key = ? AND recipient_id = ? AND is_read = false", key, userUUID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to mark as read"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Marked as read"})
}

// WebSocketHandler upgrades a chat connection. Auth comes from the ?token
// query param since websocket handshakes skip the JWT middleware.
func (h *ChatHandler) WebSocketHandler(conn *websocket.Conn) {
	tokenStr := conn.Query("token")
	claims, err := utils.ParseJWT(h.JWTSecret, tokenStr)
	if err != nil {
		conn.Close()
		return
	}
	userUUID, err := uuid.Parse(claims.UserID)
	if err != nil {
		conn.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Conn:   realtime.NewWebSocketConn(conn),
		Send:   make(chan []byte, 64),
	}
	h.Hub.RegisterClient(client)

	// writer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for payload := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	// reader: the HTTP API writes messages, the socket only keeps the
	// connection alive and detects disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.Hub.UnregisterClient(client)
	<-done
	conn.Close()
}
