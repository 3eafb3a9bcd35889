package application

import (
	"context"
	"time"

	auditdomain "github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/internal/investment/domain"
	"github.com/investghanahub/backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// CreateOpportunityCommand 创建融资机会命令
type CreateOpportunityCommand struct {
	BusinessID       uint
	OwnerID          uint
	Title            string
	Description      string
	TargetAmount     decimal.Decimal
	MinInvestment    decimal.Decimal
	MaxInvestment    decimal.Decimal
	AnnualReturnRate decimal.Decimal
	DurationDays     int
	StartDate        time.Time
	EndDate          time.Time
}

// OpportunityCommandService 融资机会命令服务
type OpportunityCommandService struct {
	opportunities domain.OpportunityRepository
	business      domain.BusinessGateway
	recorder      auditdomain.Recorder
	publisher     domain.EventPublisher
}

// NewOpportunityCommandService 创建融资机会命令服务实例
func NewOpportunityCommandService(
	opportunities domain.OpportunityRepository,
	business domain.BusinessGateway,
	recorder auditdomain.Recorder,
	publisher domain.EventPublisher,
) *OpportunityCommandService {
	return &OpportunityCommandService{
		opportunities: opportunities,
		business:      business,
		recorder:      recorder,
		publisher:     publisher,
	}
}

// Create 创建融资机会：调用者必须是企业主，且企业已审核通过。
// 归属校验先于审核状态校验，非企业主一律返回无权限。
func (s *OpportunityCommandService) Create(ctx context.Context, cmd CreateOpportunityCommand) (*domain.Opportunity, error) {
	approved, ownerID, err := s.business.BusinessApproved(ctx, cmd.BusinessID)
	if err != nil {
		return nil, err
	}
	if ownerID != 0 && ownerID != cmd.OwnerID {
		return nil, domain.ErrNotBusinessOwner
	}
	if !approved {
		return nil, domain.ErrBusinessNotApproved
	}

	opportunity, err := domain.NewOpportunity(
		cmd.BusinessID, cmd.Title, cmd.Description,
		cmd.TargetAmount, cmd.MinInvestment, cmd.MaxInvestment,
		cmd.AnnualReturnRate, cmd.DurationDays,
		cmd.StartDate, cmd.EndDate,
	)
	if err != nil {
		return nil, err
	}

	err = s.opportunities.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.opportunities.Save(txCtx, opportunity); err != nil {
			return err
		}
		s.recorder.Record(txCtx, &auditdomain.AuditLog{
			ActorID:    cmd.OwnerID,
			Action:     auditdomain.ActionOpportunityCreated,
			EntityType: "OPPORTUNITY",
			EntityID:   opportunity.ID,
			Detail:     opportunity.Title,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := domain.OpportunityCreatedEvent{
			OpportunityID: opportunity.ID,
			BusinessID:    opportunity.BusinessID,
			TargetAmount:  opportunity.TargetAmount,
			Timestamp:     time.Now(),
		}
		if err := s.publisher.Publish(ctx, domain.OpportunityCreatedEventType, "", event); err != nil {
			logger.Warn(ctx, "failed to publish opportunity event", "opportunity_id", opportunity.ID, "error", err)
		}
	}

	return opportunity, nil
}
