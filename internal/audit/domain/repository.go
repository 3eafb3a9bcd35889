package domain

import (
	"context"
	"time"
)

type AuditLogRepository interface {
	Save(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, filter AuditLogFilter, limit, offset int) ([]*AuditLog, int64, error)
}

// AuditLogFilter 审计查询条件，零值字段忽略
type AuditLogFilter struct {
	ActorID    uint
	EntityType string
	EntityID   uint
	Action     string
}

type FraudAlertRepository interface {
	Save(ctx context.Context, alert *FraudAlert) error
	Get(ctx context.Context, id uint) (*FraudAlert, error)
	Update(ctx context.Context, alert *FraudAlert) error
	ListByStatus(ctx context.Context, status FraudAlertStatus, limit, offset int) ([]*FraudAlert, int64, error)
}

// ActivityGateway 查询用户近期投资活跃度，用于速度类风控规则
type ActivityGateway interface {
	RecentInvestmentCount(ctx context.Context, userID uint, since time.Time) (int64, error)
}
