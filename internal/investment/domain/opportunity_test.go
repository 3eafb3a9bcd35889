package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func openOpportunity(t *testing.T) *Opportunity {
	t.Helper()
	now := time.Now()
	o, err := NewOpportunity(
		1, "Cocoa Export Expansion", "",
		d("1000"), d("100"), d("800"), d("0.15"),
		180, now.Add(-time.Hour), now.Add(30*24*time.Hour),
	)
	require.NoError(t, err)
	return o
}

func TestNewOpportunityValidation(t *testing.T) {
	now := time.Now()
	start, end := now, now.Add(time.Hour)

	cases := []struct {
		name              string
		target, min, max  string
		rate              string
		days              int
		start, end        time.Time
	}{
		{"min above max", "1000", "500", "100", "0.15", 180, start, end},
		{"max above target", "1000", "100", "2000", "0.15", 180, start, end},
		{"zero min", "1000", "0", "800", "0.15", 180, start, end},
		{"zero rate", "1000", "100", "800", "0", 180, start, end},
		{"zero duration", "1000", "100", "800", "0.15", 0, start, end},
		{"end before start", "1000", "100", "800", "0.15", 180, end, start},
		{"end equals start", "1000", "100", "800", "0.15", 180, start, start},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOpportunity(1, "Bad Terms", "", d(tc.target), d(tc.min), d(tc.max), d(tc.rate), tc.days, tc.start, tc.end)
			assert.ErrorIs(t, err, ErrInvalidOpportunity)
		})
	}
}

func TestCanAcceptBounds(t *testing.T) {
	o := openOpportunity(t)
	now := time.Now()

	assert.ErrorIs(t, o.CanAccept(d("50"), now), ErrAmountBelowMinimum)
	assert.ErrorIs(t, o.CanAccept(d("900"), now), ErrAmountAboveMaximum)
	assert.NoError(t, o.CanAccept(d("100"), now))
	assert.NoError(t, o.CanAccept(d("800"), now))
}

func TestCanAcceptWindow(t *testing.T) {
	o := openOpportunity(t)

	assert.ErrorIs(t, o.CanAccept(d("100"), o.StartDate.Add(-time.Minute)), ErrOpportunityNotOpen)
	assert.ErrorIs(t, o.CanAccept(d("100"), o.EndDate.Add(time.Minute)), ErrOpportunityNotOpen)
	assert.NoError(t, o.CanAccept(d("100"), o.StartDate.Add(time.Minute)))
}

func TestCanAcceptCapacity(t *testing.T) {
	o := openOpportunity(t)
	now := time.Now()

	o.Accept(d("800"))
	assert.Equal(t, OpportunityOpen, o.Status)

	// 剩余额度 200，投 300 必须整单拒绝而不是按余额截断
	assert.ErrorIs(t, o.CanAccept(d("300"), now), ErrCapacityExceeded)
	assert.NoError(t, o.CanAccept(d("200"), now))
}

func TestAcceptClosesAtTarget(t *testing.T) {
	o := openOpportunity(t)
	now := time.Now()

	o.Accept(d("800"))
	o.Accept(d("200"))
	assert.Equal(t, OpportunityClosed, o.Status)
	assert.True(t, o.CurrentAmount.Equal(d("1000")))

	assert.ErrorIs(t, o.CanAccept(d("100"), now), ErrOpportunityNotOpen)
}

func TestRelease(t *testing.T) {
	o := openOpportunity(t)
	o.Accept(d("500"))
	o.Release(d("200"))
	assert.True(t, o.CurrentAmount.Equal(d("300")))
}

func TestExpireIfPast(t *testing.T) {
	o := openOpportunity(t)

	assert.False(t, o.ExpireIfPast(time.Now()))
	assert.Equal(t, OpportunityOpen, o.Status)

	assert.True(t, o.ExpireIfPast(o.EndDate.Add(time.Minute)))
	assert.Equal(t, OpportunityExpired, o.Status)

	// 已过期的记录不重复标记
	assert.False(t, o.ExpireIfPast(o.EndDate.Add(time.Hour)))
}

func TestExpectedReturn(t *testing.T) {
	o := openOpportunity(t)

	// 500 * (1 + 0.15 * 180/365) = 536.99
	assert.True(t, o.ExpectedReturn(d("500")).Equal(d("536.99")),
		"got %s", o.ExpectedReturn(d("500")))

	o.DurationDays = 365
	// 整年：500 * 1.15
	assert.True(t, o.ExpectedReturn(d("500")).Equal(d("575")))
}

func TestInvestmentTransitions(t *testing.T) {
	now := time.Now()
	inv := NewInvestment(1, 2, d("500"), d("575"), now.Add(24*time.Hour))

	assert.False(t, inv.IsMature(now))
	assert.True(t, inv.IsMature(now.Add(25*time.Hour)))

	require.NoError(t, inv.Cancel())
	assert.Equal(t, InvestmentCancelled, inv.Status)
	assert.ErrorIs(t, inv.Cancel(), ErrInvestmentNotActive)
	assert.ErrorIs(t, inv.Mature(), ErrInvestmentNotActive)

	inv2 := NewInvestment(1, 2, d("500"), d("575"), now)
	require.NoError(t, inv2.Mature())
	assert.Equal(t, InvestmentMatured, inv2.Status)
}
