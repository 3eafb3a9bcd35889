package application

import (
	"context"
	"testing"
	"time"

	auditdomain "github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/internal/investment/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpportunityService(gateway *fakeBusinessGateway) (*OpportunityCommandService, *fakeRecorder) {
	recorder := &fakeRecorder{}
	svc := NewOpportunityCommandService(newFakeOpportunityRepo(), gateway, recorder, nil)
	return svc, recorder
}

func createOpportunityCommand(businessID, ownerID uint) CreateOpportunityCommand {
	now := time.Now()
	return CreateOpportunityCommand{
		BusinessID:       businessID,
		OwnerID:          ownerID,
		Title:            "Cocoa Export Expansion",
		TargetAmount:     d("1000"),
		MinInvestment:    d("100"),
		MaxInvestment:    d("800"),
		AnnualReturnRate: d("0.15"),
		DurationDays:     180,
		StartDate:        now.Add(-time.Hour),
		EndDate:          now.Add(30 * 24 * time.Hour),
	}
}

func TestCreateOpportunity(t *testing.T) {
	svc, recorder := newOpportunityService(&fakeBusinessGateway{approved: true, ownerID: 1, funds: decimal.Zero})

	opp, err := svc.Create(context.Background(), createOpportunityCommand(1, 1))
	require.NoError(t, err)
	assert.Equal(t, domain.OpportunityOpen, opp.Status)

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, auditdomain.ActionOpportunityCreated, recorder.entries[0].Action)
}

func TestCreateOpportunityForbiddenForNonOwner(t *testing.T) {
	svc, _ := newOpportunityService(&fakeBusinessGateway{approved: true, ownerID: 1, funds: decimal.Zero})

	_, err := svc.Create(context.Background(), createOpportunityCommand(1, 2))
	assert.ErrorIs(t, err, domain.ErrNotBusinessOwner)
}

// 企业尚未过审时，非企业主也必须先被归属校验挡下
func TestCreateOpportunityNonOwnerOfPendingBusiness(t *testing.T) {
	svc, _ := newOpportunityService(&fakeBusinessGateway{approved: false, ownerID: 1, funds: decimal.Zero})

	_, err := svc.Create(context.Background(), createOpportunityCommand(1, 2))
	assert.ErrorIs(t, err, domain.ErrNotBusinessOwner)
}

func TestCreateOpportunityRequiresApprovedBusiness(t *testing.T) {
	svc, _ := newOpportunityService(&fakeBusinessGateway{approved: false, ownerID: 1, funds: decimal.Zero})

	_, err := svc.Create(context.Background(), createOpportunityCommand(1, 1))
	assert.ErrorIs(t, err, domain.ErrBusinessNotApproved)
}
