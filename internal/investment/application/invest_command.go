package application

import (
	"context"
	"strconv"
	"time"

	auditdomain "github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/internal/investment/domain"
	"github.com/investghanahub/backend/pkg/logger"
	"github.com/investghanahub/backend/pkg/metrics"
	"github.com/investghanahub/backend/pkg/utils"
	"github.com/shopspring/decimal"
)

// InvestCommand 投资命令
type InvestCommand struct {
	InvestorID    uint
	OpportunityID uint
	Amount        decimal.Decimal
}

// CancelInvestmentCommand 撤销投资命令
type CancelInvestmentCommand struct {
	InvestorID   uint
	InvestmentID uint
}

// InvestCommandService 投资命令服务
type InvestCommandService struct {
	opportunities domain.OpportunityRepository
	investments   domain.InvestmentRepository
	transactions  domain.TransactionRepository
	business      domain.BusinessGateway
	kyc           domain.KYCGateway
	recorder      auditdomain.Recorder
	publisher     domain.EventPublisher
	metrics       *metrics.Metrics
}

// NewInvestCommandService 创建投资命令服务实例
func NewInvestCommandService(
	opportunities domain.OpportunityRepository,
	investments domain.InvestmentRepository,
	transactions domain.TransactionRepository,
	business domain.BusinessGateway,
	kyc domain.KYCGateway,
	recorder auditdomain.Recorder,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *InvestCommandService {
	return &InvestCommandService{
		opportunities: opportunities,
		investments:   investments,
		transactions:  transactions,
		business:      business,
		kyc:           kyc,
		recorder:      recorder,
		publisher:     publisher,
		metrics:       m,
	}
}

// Invest 对融资机会发起投资。
// 机会行在事务内加锁读取，额度校验与写入串行执行，募集总额不会超过目标。
func (s *InvestCommandService) Invest(ctx context.Context, cmd InvestCommand) (*domain.Investment, error) {
	approved, err := s.kyc.KYCApproved(ctx, cmd.InvestorID)
	if err != nil {
		return nil, err
	}
	if !approved {
		s.countRejection("kyc_required")
		return nil, domain.ErrInvestorKYCRequired
	}

	var (
		investment  *domain.Investment
		opportunity *domain.Opportunity
		expired     bool
	)
	err = s.opportunities.WithTx(ctx, func(txCtx context.Context) error {
		opp, err := s.opportunities.GetForUpdate(txCtx, cmd.OpportunityID)
		if err != nil {
			return err
		}
		if opp == nil {
			return domain.ErrOpportunityNotFound
		}

		now := time.Now()
		if opp.ExpireIfPast(now) {
			// 正常提交事务让 EXPIRED 落库，拒绝在事务外返回
			expired = true
			return s.opportunities.Save(txCtx, opp)
		}
		if err := opp.CanAccept(cmd.Amount, now); err != nil {
			return err
		}

		investment = domain.NewInvestment(
			cmd.InvestorID, opp.ID,
			cmd.Amount, opp.ExpectedReturn(cmd.Amount),
			opp.MaturityDate(now),
		)
		if err := s.investments.Save(txCtx, investment); err != nil {
			return err
		}

		opp.Accept(cmd.Amount)
		if err := s.opportunities.Save(txCtx, opp); err != nil {
			return err
		}
		if err := s.business.AddFunds(txCtx, opp.BusinessID, cmd.Amount); err != nil {
			return err
		}

		if err := s.transactions.Save(txCtx, &domain.Transaction{
			UserID:       cmd.InvestorID,
			InvestmentID: &investment.ID,
			Type:         domain.TxInvestment,
			Amount:       cmd.Amount,
			Reference:    strconv.FormatInt(utils.GenID(), 10),
		}); err != nil {
			return err
		}

		s.recorder.Record(txCtx, &auditdomain.AuditLog{
			ActorID:    cmd.InvestorID,
			Action:     auditdomain.ActionInvestmentAccepted,
			EntityType: "INVESTMENT",
			EntityID:   investment.ID,
			Detail:     cmd.Amount.String(),
		})

		opportunity = opp
		return nil
	})
	if err != nil {
		s.countInvestRejection(err)
		return nil, err
	}
	if expired {
		s.countRejection("not_open")
		return nil, domain.ErrOpportunityNotOpen
	}

	if s.metrics != nil {
		s.metrics.InvestmentsTotal.Inc()
		amount, _ := cmd.Amount.Float64()
		s.metrics.InvestmentAmount.Observe(amount)
	}

	s.publishEvent(ctx, domain.InvestmentAcceptedEventType, strconv.FormatUint(uint64(cmd.OpportunityID), 10), domain.InvestmentAcceptedEvent{
		InvestmentID:  investment.ID,
		InvestorID:    cmd.InvestorID,
		OpportunityID: opportunity.ID,
		Amount:        cmd.Amount,
		TargetAmount:  opportunity.TargetAmount,
		Timestamp:     time.Now(),
	})

	return investment, nil
}

// Cancel 撤销投资：仅限本人、投资仍为 ACTIVE 且机会仍为 OPEN
func (s *InvestCommandService) Cancel(ctx context.Context, cmd CancelInvestmentCommand) (*domain.Investment, error) {
	var (
		investment  *domain.Investment
		opportunity *domain.Opportunity
	)
	err := s.opportunities.WithTx(ctx, func(txCtx context.Context) error {
		inv, err := s.investments.GetByID(txCtx, cmd.InvestmentID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInvestmentNotFound
		}
		if inv.InvestorID != cmd.InvestorID {
			return domain.ErrNotInvestor
		}

		opp, err := s.opportunities.GetForUpdate(txCtx, inv.OpportunityID)
		if err != nil {
			return err
		}
		if opp == nil {
			return domain.ErrOpportunityNotFound
		}
		if opp.Status != domain.OpportunityOpen {
			return domain.ErrOpportunityNotOpen
		}

		if err := inv.Cancel(); err != nil {
			return err
		}
		// 条件更新挡住并发撤销或结算后的二次冲正
		if err := s.investments.SaveTransition(txCtx, inv, domain.InvestmentActive); err != nil {
			return err
		}

		opp.Release(inv.Amount)
		if err := s.opportunities.Save(txCtx, opp); err != nil {
			return err
		}
		if err := s.business.AddFunds(txCtx, opp.BusinessID, inv.Amount.Neg()); err != nil {
			return err
		}

		if err := s.transactions.Save(txCtx, &domain.Transaction{
			UserID:       cmd.InvestorID,
			InvestmentID: &inv.ID,
			Type:         domain.TxReversal,
			Amount:       inv.Amount.Neg(),
			Reference:    strconv.FormatInt(utils.GenID(), 10),
		}); err != nil {
			return err
		}

		s.recorder.Record(txCtx, &auditdomain.AuditLog{
			ActorID:    cmd.InvestorID,
			Action:     auditdomain.ActionInvestmentCancelled,
			EntityType: "INVESTMENT",
			EntityID:   inv.ID,
			Detail:     inv.Amount.String(),
		})

		investment = inv
		opportunity = opp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, domain.InvestmentCancelledEventType, "", domain.InvestmentCancelledEvent{
		InvestmentID:  investment.ID,
		InvestorID:    investment.InvestorID,
		OpportunityID: opportunity.ID,
		Amount:        investment.Amount,
		Timestamp:     time.Now(),
	})

	return investment, nil
}

func (s *InvestCommandService) countInvestRejection(err error) {
	switch err {
	case domain.ErrCapacityExceeded:
		s.countRejection("capacity_exceeded")
	case domain.ErrAmountBelowMinimum, domain.ErrAmountAboveMaximum:
		s.countRejection("amount_bounds")
	case domain.ErrOpportunityNotOpen:
		s.countRejection("not_open")
	}
}

func (s *InvestCommandService) countRejection(reason string) {
	if s.metrics != nil {
		s.metrics.InvestmentsRejected.WithLabelValues(reason).Inc()
	}
}

func (s *InvestCommandService) publishEvent(ctx context.Context, topic, key string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, key, payload); err != nil {
		logger.Warn(ctx, "failed to publish investment event", "topic", topic, "error", err)
	}
}
