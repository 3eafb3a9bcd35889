package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/investghanahub/backend/internal/audit/application"
	"github.com/investghanahub/backend/pkg/logger"
	"github.com/investghanahub/backend/pkg/mq"
	"github.com/shopspring/decimal"
)

// investmentAccepted 是 investment.accepted 主题的消费端契约
type investmentAccepted struct {
	InvestmentID  uint            `json:"investment_id"`
	InvestorID    uint            `json:"investor_id"`
	OpportunityID uint            `json:"opportunity_id"`
	Amount        decimal.Decimal `json:"amount"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// FraudConsumer 订阅投资成交事件并异步评分。
// 评分失败的消息进入死信队列，绝不回滚触发它的交易。
type FraudConsumer struct {
	consumer *mq.KafkaConsumer
	fraud    *application.FraudService
	dlq      *mq.DeadLetterQueue
}

func NewFraudConsumer(consumer *mq.KafkaConsumer, fraud *application.FraudService, dlq *mq.DeadLetterQueue) *FraudConsumer {
	return &FraudConsumer{consumer: consumer, fraud: fraud, dlq: dlq}
}

// Start 消费循环，ctx 取消后退出
func (c *FraudConsumer) Start(ctx context.Context) error {
	logger.Info(ctx, "fraud consumer started")
	for {
		msg, err := c.consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			logger.Error(ctx, "failed to read message", "error", err)
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *FraudConsumer) handle(ctx context.Context, msg *mq.Message) {
	var event investmentAccepted
	if err := msg.UnmarshalPayload(&event); err != nil {
		logger.Error(ctx, "failed to decode investment event", "offset", msg.Offset, "error", err)
		c.deadLetter(ctx, msg, "decode failure", err)
		return
	}

	err := c.fraud.ScoreInvestment(ctx, application.ScoreInvestmentCommand{
		InvestmentID:  event.InvestmentID,
		InvestorID:    event.InvestorID,
		OpportunityID: event.OpportunityID,
		Amount:        event.Amount,
		TargetAmount:  event.TargetAmount,
		OccurredAt:    event.Timestamp,
	})
	if err != nil {
		logger.Error(ctx, "failed to score investment", "investment_id", event.InvestmentID, "error", err)
		c.deadLetter(ctx, msg, "scoring failure", err)
	}
}

func (c *FraudConsumer) deadLetter(ctx context.Context, msg *mq.Message, reason string, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Send(ctx, msg, reason, cause); err != nil {
		logger.Error(ctx, "failed to send message to dead letter queue", "offset", msg.Offset, "error", err)
	}
}
