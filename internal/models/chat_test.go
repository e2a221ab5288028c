package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConversationKeyIsOrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	assert.Equal(t, ConversationKey(a, b), ConversationKey(b, a))
	assert.NotEqual(t, ConversationKey(a, b), ConversationKey(a, uuid.New()))
}

func TestConversationPartner(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	key := ConversationKey(a, b)

	assert.Equal(t, b, ConversationPartner(key, a))
	assert.Equal(t, a, ConversationPartner(key, b))
	assert.Equal(t, uuid.Nil, ConversationPartner(key, uuid.New()))
}

func TestConversationPartnerRejectsMalformedKeys(t *testing.T) {
	a := uuid.New()

	assert.Equal(t, uuid.Nil, ConversationPartner("", a))
	assert.Equal(t, uuid.Nil, ConversationPartner("not-a-key", a))
	assert.Equal(t, uuid.Nil, ConversationPartner("x:y", a))
	assert.Equal(t, uuid.Nil, ConversationPartner(a.String(), a))
}
