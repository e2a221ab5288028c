package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConversationKey derives the deterministic id grouping messages between two
// users: the sorted participant ids joined with ":". There is no conversation
// table; the key alone identifies the thread.
func ConversationKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if x > y {
		x, y = y, x
	}
	return x + ":" + y
}

// ConversationPartner returns the other participant encoded in a key, or
// uuid.Nil if userID is not part of it.
func ConversationPartner(key string, userID uuid.UUID) uuid.UUID {
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return uuid.Nil
	}
	left, err1 := uuid.Parse(parts[0])
	right, err2 := uuid.Parse(parts[1])
	if err1 != nil || err2 != nil {
		return uuid.Nil
	}
	switch userID {
	case left:
		return right
	case right:
		return left
	}
	return uuid.Nil
}

type Message struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConversationKey string    `gorm:"type:varchar(80);index;not null" json:"conversation_key"`
	SenderID        uuid.UUID `gorm:"type:uuid;index;not null" json:"sender_id"`
	RecipientID     uuid.UUID `gorm:"type:uuid;index;not null" json:"recipient_id"`

	Type string `gorm:"type:varchar(20);default:'text'" json:"type"` // text, system
	Text string `gorm:"type:text" json:"text"`

	IsRead    bool       `gorm:"default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
