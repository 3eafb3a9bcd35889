package application

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/investghanahub/backend/internal/investment/domain"
	"github.com/investghanahub/backend/pkg/metrics"
	"github.com/investghanahub/backend/pkg/utils"
)

const sweepBatchSize = 100

// MaturityJob 负责定期结算到期投资并关闭过期的融资机会。
type MaturityJob struct {
	opportunities domain.OpportunityRepository
	investments   domain.InvestmentRepository
	transactions  domain.TransactionRepository
	publisher     domain.EventPublisher
	logger        *slog.Logger
	interval      time.Duration
	metrics       *metrics.Metrics
}

func NewMaturityJob(
	opportunities domain.OpportunityRepository,
	investments domain.InvestmentRepository,
	transactions domain.TransactionRepository,
	publisher domain.EventPublisher,
	logger *slog.Logger,
	interval time.Duration,
	m *metrics.Metrics,
) *MaturityJob {
	return &MaturityJob{
		opportunities: opportunities,
		investments:   investments,
		transactions:  transactions,
		publisher:     publisher,
		logger:        logger,
		interval:      interval,
		metrics:       m,
	}
}

func (j *MaturityJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("Maturity Job started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.run(ctx)
		}
	}
}

func (j *MaturityJob) run(ctx context.Context) {
	now := time.Now()
	j.expireOpportunities(ctx, now)
	j.matureInvestments(ctx, now)
	j.refreshOpenGauge(ctx)
}

// refreshOpenGauge 每轮扫描后校准在募机会数指标
func (j *MaturityJob) refreshOpenGauge(ctx context.Context) {
	if j.metrics == nil {
		return
	}
	_, total, err := j.opportunities.List(ctx, domain.OpportunityOpen, 0, 1, 0)
	if err != nil {
		j.logger.Warn("failed to count open opportunities", "error", err)
		return
	}
	j.metrics.OpportunitiesOpen.Set(float64(total))
}

func (j *MaturityJob) expireOpportunities(ctx context.Context, now time.Time) {
	for {
		opportunities, err := j.opportunities.ListOpenPastEnd(ctx, now, sweepBatchSize)
		if err != nil {
			j.logger.Error("failed to list expired opportunities", "error", err)
			return
		}
		if len(opportunities) == 0 {
			return
		}
		for _, opp := range opportunities {
			if !opp.ExpireIfPast(now) {
				continue
			}
			if err := j.opportunities.Save(ctx, opp); err != nil {
				j.logger.Error("failed to expire opportunity", "opportunity_id", opp.ID, "error", err)
			}
		}
		if len(opportunities) < sweepBatchSize {
			return
		}
	}
}

func (j *MaturityJob) matureInvestments(ctx context.Context, now time.Time) {
	for {
		investments, err := j.investments.ListMatured(ctx, now, sweepBatchSize)
		if err != nil {
			j.logger.Error("failed to list matured investments", "error", err)
			return
		}
		if len(investments) == 0 {
			return
		}
		for _, inv := range investments {
			if err := j.settle(ctx, inv); err != nil {
				j.logger.Error("failed to settle investment", "investment_id", inv.ID, "error", err)
			}
		}
		if len(investments) < sweepBatchSize {
			return
		}
	}
}

// settle 在单个事务内标记到期并写入回款流水
func (j *MaturityJob) settle(ctx context.Context, inv *domain.Investment) error {
	err := j.opportunities.WithTx(ctx, func(txCtx context.Context) error {
		if err := inv.Mature(); err != nil {
			return err
		}
		// 条件更新：投资在扫描后被撤销时放弃结算
		if err := j.investments.SaveTransition(txCtx, inv, domain.InvestmentActive); err != nil {
			return err
		}
		return j.transactions.Save(txCtx, &domain.Transaction{
			UserID:       inv.InvestorID,
			InvestmentID: &inv.ID,
			Type:         domain.TxReturn,
			Amount:       inv.ExpectedReturn,
			Reference:    strconv.FormatInt(utils.GenID(), 10),
		})
	})
	if err != nil {
		return err
	}

	if j.publisher != nil {
		event := domain.InvestmentMaturedEvent{
			InvestmentID:   inv.ID,
			InvestorID:     inv.InvestorID,
			ExpectedReturn: inv.ExpectedReturn,
			Timestamp:      time.Now(),
		}
		if err := j.publisher.Publish(ctx, domain.InvestmentMaturedEventType, "", event); err != nil {
			j.logger.Warn("failed to publish maturity event", "investment_id", inv.ID, "error", err)
		}
	}
	return nil
}
