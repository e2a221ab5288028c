package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscrowRelease(t *testing.T) {
	p := EscrowPayment{Amount: 500, Status: EscrowStatusPending}
	at := time.Now()

	p.Release(at)

	assert.Equal(t, EscrowStatusCompleted, p.Status)
	require.NotNil(t, p.CompletedAt)
	assert.True(t, p.CompletedAt.Equal(at))
}

func TestEscrowReleaseIsIdempotent(t *testing.T) {
	p := EscrowPayment{Amount: 500, Status: EscrowStatusPending}
	first := time.Now()
	p.Release(first)

	later := first.Add(time.Hour)
	p.Release(later)

	// a repeat release only re-stamps, the payment stays completed
	assert.Equal(t, EscrowStatusCompleted, p.Status)
	assert.True(t, p.CompletedAt.Equal(later))
}
