package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OpportunityCreatedEventType  = "opportunity.created"
	InvestmentAcceptedEventType  = "investment.accepted"
	InvestmentCancelledEventType = "investment.cancelled"
	InvestmentMaturedEventType   = "investment.matured"
)

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// OpportunityCreatedEvent 融资机会创建事件
type OpportunityCreatedEvent struct {
	OpportunityID uint            `json:"opportunity_id"`
	BusinessID    uint            `json:"business_id"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// InvestmentAcceptedEvent 投资成交事件，风控消费者据此评分
type InvestmentAcceptedEvent struct {
	InvestmentID  uint            `json:"investment_id"`
	InvestorID    uint            `json:"investor_id"`
	OpportunityID uint            `json:"opportunity_id"`
	Amount        decimal.Decimal `json:"amount"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// InvestmentCancelledEvent 投资撤销事件
type InvestmentCancelledEvent struct {
	InvestmentID  uint            `json:"investment_id"`
	InvestorID    uint            `json:"investor_id"`
	OpportunityID uint            `json:"opportunity_id"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// InvestmentMaturedEvent 投资到期事件
type InvestmentMaturedEvent struct {
	InvestmentID   uint            `json:"investment_id"`
	InvestorID     uint            `json:"investor_id"`
	ExpectedReturn decimal.Decimal `json:"expected_return"`
	Timestamp      time.Time       `json:"timestamp"`
}
