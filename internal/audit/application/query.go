package application

import (
	"context"

	"github.com/investghanahub/backend/internal/audit/domain"
)

// AuditQueryService 审计查询服务
type AuditQueryService struct {
	logs   domain.AuditLogRepository
	alerts domain.FraudAlertRepository
}

func NewAuditQueryService(logs domain.AuditLogRepository, alerts domain.FraudAlertRepository) *AuditQueryService {
	return &AuditQueryService{logs: logs, alerts: alerts}
}

// ListLogs 按条件分页列出审计记录
func (s *AuditQueryService) ListLogs(ctx context.Context, filter domain.AuditLogFilter, limit, offset int) ([]*domain.AuditLog, int64, error) {
	return s.logs.List(ctx, filter, limit, offset)
}

// ListAlerts 按状态分页列出风险警报
func (s *AuditQueryService) ListAlerts(ctx context.Context, status domain.FraudAlertStatus, limit, offset int) ([]*domain.FraudAlert, int64, error) {
	return s.alerts.ListByStatus(ctx, status, limit, offset)
}
