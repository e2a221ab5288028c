package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContract() *Contract {
	clientID := uuid.New()
	freelancerID := uuid.New()
	return &Contract{
		ID:           uuid.New(),
		ClientID:     clientID,
		FreelancerID: &freelancerID,
		Status:       ContractStatusSent,
	}
}

func TestPartyOf(t *testing.T) {
	ct := newTestContract()

	assert.Equal(t, PartyClient, ct.PartyOf(ct.ClientID))
	assert.Equal(t, PartyFreelancer, ct.PartyOf(*ct.FreelancerID))
	assert.Equal(t, SignatureParty(""), ct.PartyOf(uuid.New()))
}

func TestPartyOfWithoutFreelancer(t *testing.T) {
	ct := newTestContract()
	ct.FreelancerID = nil

	assert.Equal(t, PartyClient, ct.PartyOf(ct.ClientID))
	assert.Equal(t, SignatureParty(""), ct.PartyOf(uuid.New()))
}

func TestApplySignatureSingleParty(t *testing.T) {
	ct := newTestContract()
	now := time.Now()

	require.NoError(t, ct.ApplySignature(PartyClient, "sig-data", now))

	require.NotNil(t, ct.ClientSignatureDate)
	assert.Equal(t, "sig-data", ct.ClientSignatureData)
	assert.Nil(t, ct.FreelancerSignatureDate)
	// one signature is not enough to activate
	assert.Equal(t, ContractStatusSent, ct.Status)
}

func TestApplySignatureRejectsSecondAttempt(t *testing.T) {
	ct := newTestContract()
	first := time.Now()

	require.NoError(t, ct.ApplySignature(PartyClient, "first", first))

	err := ct.ApplySignature(PartyClient, "second", first.Add(time.Hour))
	require.ErrorIs(t, err, ErrAlreadySigned)

	// stored signature untouched
	assert.Equal(t, "first", ct.ClientSignatureData)
	assert.True(t, ct.ClientSignatureDate.Equal(first))
}

func TestApplySignatureActivatesRegardlessOfOrder(t *testing.T) {
	orders := map[string][2]SignatureParty{
		"client first":     {PartyClient, PartyFreelancer},
		"freelancer first": {PartyFreelancer, PartyClient},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			ct := newTestContract()
			now := time.Now()

			require.NoError(t, ct.ApplySignature(order[0], "a", now))
			assert.NotEqual(t, ContractStatusActive, ct.Status)

			require.NoError(t, ct.ApplySignature(order[1], "b", now.Add(time.Minute)))
			assert.Equal(t, ContractStatusActive, ct.Status)
			assert.True(t, ct.FullySigned())
		})
	}
}

func TestApplySignatureUnknownParty(t *testing.T) {
	ct := newTestContract()
	err := ct.ApplySignature(SignatureParty("auditor"), "x", time.Now())
	require.ErrorIs(t, err, ErrNotAParty)
}

func TestEditable(t *testing.T) {
	cases := map[ContractStatus]bool{
		ContractStatusDraft:     true,
		ContractStatusSent:      true,
		ContractStatusSigned:    false,
		ContractStatusActive:    false,
		ContractStatusCompleted: false,
	}
	for status, want := range cases {
		ct := &Contract{Status: status}
		assert.Equal(t, want, ct.Editable(), "status %s", status)
	}
}

func TestFullySignedTreatsLegacySigned(t *testing.T) {
	assert.True(t, (&Contract{Status: ContractStatusSigned}).FullySigned())
	assert.True(t, (&Contract{Status: ContractStatusActive}).FullySigned())
	assert.False(t, (&Contract{Status: ContractStatusSent}).FullySigned())
}

func TestFormatContractNumber(t *testing.T) {
	assert.Equal(t, "CONTRACT-2026-0001", FormatContractNumber(2026, 1))
	assert.Equal(t, "CONTRACT-2026-0042", FormatContractNumber(2026, 42))
	// sequence wider than the pad just grows
	assert.Equal(t, "CONTRACT-2026-12345", FormatContractNumber(2026, 12345))
}
