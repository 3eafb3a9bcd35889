package mysql

import (
	"context"

	"github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/pkg/contextx"
	"gorm.io/gorm"
)

// auditLogRepository 审计记录仓储实现，只追加
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository 创建审计记录仓储
func NewAuditLogRepository(db *gorm.DB) domain.AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := contextx.Tx(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *auditLogRepository) Save(ctx context.Context, entry *domain.AuditLog) error {
	return r.getDB(ctx).WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) List(ctx context.Context, filter domain.AuditLogFilter, limit, offset int) ([]*domain.AuditLog, int64, error) {
	query := r.getDB(ctx).WithContext(ctx).Model(&domain.AuditLog{})
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*domain.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
