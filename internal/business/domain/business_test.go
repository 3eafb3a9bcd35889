package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusiness(t *testing.T) {
	b, err := NewBusiness(1, "Kente Textiles Ltd", "Handwoven kente", "Manufacturing", "GROWTH", "Ashanti")
	require.NoError(t, err)
	assert.Equal(t, BusinessPending, b.Status)
	assert.True(t, b.FundsRaised.IsZero())

	_, err = NewBusiness(0, "No Owner", "", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidBusiness)
	_, err = NewBusiness(1, "", "", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidBusiness)
}

func TestBusinessReviewLifecycle(t *testing.T) {
	now := time.Now()
	b, err := NewBusiness(1, "Kente Textiles Ltd", "", "Manufacturing", "GROWTH", "Ashanti")
	require.NoError(t, err)

	require.NoError(t, b.Approve(9, now))
	assert.Equal(t, BusinessApproved, b.Status)
	require.NotNil(t, b.ReviewedBy)
	assert.Equal(t, uint(9), *b.ReviewedBy)

	// 已审核的档案不能再审
	assert.ErrorIs(t, b.Approve(9, now), ErrBusinessNotPending)
	assert.ErrorIs(t, b.Reject(9, "dup", now), ErrBusinessNotPending)
}

func TestBusinessRejectRequiresReason(t *testing.T) {
	now := time.Now()
	b, err := NewBusiness(1, "Volta Agro Ventures", "", "Agriculture", "SEED", "Volta")
	require.NoError(t, err)

	assert.ErrorIs(t, b.Reject(9, "", now), ErrBusinessReasonRequired)
	require.NoError(t, b.Reject(9, "missing registration documents", now))
	assert.Equal(t, BusinessRejected, b.Status)
	assert.Equal(t, "missing registration documents", b.RejectionReason)
}

func TestBusinessUpdateResetsReview(t *testing.T) {
	now := time.Now()
	b, err := NewBusiness(1, "Volta Agro Ventures", "", "Agriculture", "SEED", "Volta")
	require.NoError(t, err)
	require.NoError(t, b.Reject(9, "incomplete profile", now))

	// 修改档案后回到待审核并清除驳回痕迹
	require.NoError(t, b.ApplyUpdate("Volta Agro Ventures", "Cocoa processing", "Agriculture", "GROWTH", "Volta"))
	assert.Equal(t, BusinessPending, b.Status)
	assert.Empty(t, b.RejectionReason)
	assert.Nil(t, b.ReviewedBy)
	assert.Nil(t, b.ReviewedAt)

	assert.ErrorIs(t, b.ApplyUpdate("", "", "", "", ""), ErrInvalidBusiness)
}

func TestBusinessOwnership(t *testing.T) {
	b, err := NewBusiness(7, "Accra Mobility", "", "Transport", "SEED", "Greater Accra")
	require.NoError(t, err)
	assert.True(t, b.IsOwnedBy(7))
	assert.False(t, b.IsOwnedBy(8))
}
