package application

import (
	"context"

	"github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/pkg/logger"
)

// RecorderService 审计写入服务。
// 调用方上下文携带事务时审计行与业务写入同一事务提交；
// 写入失败只记日志，不影响调用方。
type RecorderService struct {
	logs domain.AuditLogRepository
}

func NewRecorderService(logs domain.AuditLogRepository) *RecorderService {
	return &RecorderService{logs: logs}
}

// Record 追加一条审计记录
func (s *RecorderService) Record(ctx context.Context, entry *domain.AuditLog) {
	if err := s.logs.Save(ctx, entry); err != nil {
		logger.Error(ctx, "failed to record audit entry",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}
