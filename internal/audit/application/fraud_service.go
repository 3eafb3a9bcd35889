package application

import (
	"context"
	"fmt"
	"time"

	"github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/pkg/logger"
	"github.com/investghanahub/backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

// 评分规则参数。分数达到阈值才生成警报。
const (
	fraudScoreThreshold  = 0.6
	largeShareOfTarget   = 0.5 // 单笔超过目标额一半
	velocityWindow       = 24 * time.Hour
	velocityCountTrigger = 5 // 24 小时内第 6 笔开始加分
)

// ScoreInvestmentCommand 投资风险评分输入
type ScoreInvestmentCommand struct {
	InvestmentID  uint
	InvestorID    uint
	OpportunityID uint
	Amount        decimal.Decimal
	TargetAmount  decimal.Decimal
	OccurredAt    time.Time
}

// FraudService 风险评分服务，仅提示，不阻断任何交易
type FraudService struct {
	alerts   domain.FraudAlertRepository
	activity domain.ActivityGateway
	recorder domain.Recorder
	metrics  *metrics.Metrics
}

func NewFraudService(alerts domain.FraudAlertRepository, activity domain.ActivityGateway, recorder domain.Recorder, m *metrics.Metrics) *FraudService {
	return &FraudService{alerts: alerts, activity: activity, recorder: recorder, metrics: m}
}

// ScoreInvestment 按启发式规则评分，达到阈值时生成 PENDING 警报
func (s *FraudService) ScoreInvestment(ctx context.Context, cmd ScoreInvestmentCommand) error {
	score := 0.0
	reasons := ""

	if cmd.TargetAmount.IsPositive() {
		share, _ := cmd.Amount.Div(cmd.TargetAmount).Float64()
		if share >= largeShareOfTarget {
			score += 0.5
			reasons = appendReason(reasons, fmt.Sprintf("single investment is %.0f%% of target", share*100))
		}
	}

	count, err := s.activity.RecentInvestmentCount(ctx, cmd.InvestorID, cmd.OccurredAt.Add(-velocityWindow))
	if err != nil {
		return err
	}
	if count > velocityCountTrigger {
		score += 0.4
		reasons = appendReason(reasons, fmt.Sprintf("%d investments within 24h", count))
	}

	if score < fraudScoreThreshold {
		return nil
	}

	alert := &domain.FraudAlert{
		UserID:    cmd.InvestorID,
		RiskScore: score,
		Reason:    reasons,
		Status:    domain.FraudAlertPending,
	}
	if err := s.alerts.Save(ctx, alert); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.FraudAlertsTotal.Inc()
	}
	logger.Warn(ctx, "fraud alert raised",
		"user_id", cmd.InvestorID,
		"investment_id", cmd.InvestmentID,
		"risk_score", score,
		"reason", reasons,
	)
	return nil
}

// Resolve 处理警报，仅允许 PENDING -> RESOLVED
func (s *FraudService) Resolve(ctx context.Context, adminID, alertID uint) (*domain.FraudAlert, error) {
	alert, err := s.alerts.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, domain.ErrAlertNotFound
	}
	if err := alert.Resolve(); err != nil {
		return nil, err
	}
	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.Record(ctx, &domain.AuditLog{
			ActorID:    alert.UserID,
			AdminID:    &adminID,
			Action:     domain.ActionFraudAlertResolved,
			EntityType: "FRAUD_ALERT",
			EntityID:   alert.ID,
		})
	}
	return alert, nil
}

func appendReason(existing, reason string) string {
	if existing == "" {
		return reason
	}
	return existing + "; " + reason
}
