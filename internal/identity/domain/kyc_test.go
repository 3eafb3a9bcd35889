package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKYCApprove(t *testing.T) {
	now := time.Now()
	kyc := NewKYC(1, "Ama Mensah", "GHANA_CARD", "GHA-000000001-2", "Accra", "Greater Accra")

	require.NoError(t, kyc.Approve(9, now))
	assert.Equal(t, KYCApproved, kyc.Status)
	require.NotNil(t, kyc.ReviewedBy)
	assert.Equal(t, uint(9), *kyc.ReviewedBy)
	require.NotNil(t, kyc.ReviewedAt)

	// 已审核的记录不能再次审核
	assert.ErrorIs(t, kyc.Approve(9, now), ErrKYCNotPending)
	assert.ErrorIs(t, kyc.Reject(9, "dup", now), ErrKYCNotPending)
}

func TestKYCRejectRequiresReason(t *testing.T) {
	now := time.Now()
	kyc := NewKYC(1, "Ama Mensah", "PASSPORT", "G1234567", "Kumasi", "Ashanti")

	assert.ErrorIs(t, kyc.Reject(9, "", now), ErrReasonRequired)
	assert.Equal(t, KYCPending, kyc.Status)

	require.NoError(t, kyc.Reject(9, "document unreadable", now))
	assert.Equal(t, KYCRejected, kyc.Status)
	assert.Equal(t, "document unreadable", kyc.RejectionReason)
}

func TestKYCResubmit(t *testing.T) {
	now := time.Now()
	kyc := NewKYC(1, "Kofi Boateng", "GHANA_CARD", "GHA-000000002-3", "Tamale", "Northern")

	// 待审核与已通过的记录都不允许重新提交
	assert.ErrorIs(t, kyc.Resubmit("Kofi Boateng", "PASSPORT", "G7654321", "Tamale", "Northern"), ErrKYCAlreadySubmitted)

	require.NoError(t, kyc.Reject(9, "blurry photo", now))
	require.NoError(t, kyc.Resubmit("Kofi Boateng", "PASSPORT", "G7654321", "Tamale", "Northern"))

	assert.Equal(t, KYCPending, kyc.Status)
	assert.Equal(t, "PASSPORT", kyc.DocumentType)
	assert.Empty(t, kyc.RejectionReason)
	assert.Nil(t, kyc.ReviewedBy)
	assert.Nil(t, kyc.ReviewedAt)

	require.NoError(t, kyc.Approve(9, now))
	assert.ErrorIs(t, kyc.Resubmit("x", "y", "z", "a", "b"), ErrKYCAlreadySubmitted)
}
