package mysql

import (
	"context"
	"errors"

	"github.com/investghanahub/backend/internal/audit/domain"
	"gorm.io/gorm"
)

// fraudAlertRepository 风险警报仓储实现
type fraudAlertRepository struct {
	db *gorm.DB
}

// NewFraudAlertRepository 创建风险警报仓储
func NewFraudAlertRepository(db *gorm.DB) domain.FraudAlertRepository {
	return &fraudAlertRepository{db: db}
}

func (r *fraudAlertRepository) Save(ctx context.Context, alert *domain.FraudAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *fraudAlertRepository) Get(ctx context.Context, id uint) (*domain.FraudAlert, error) {
	var alert domain.FraudAlert
	if err := r.db.WithContext(ctx).First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (r *fraudAlertRepository) Update(ctx context.Context, alert *domain.FraudAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

func (r *fraudAlertRepository) ListByStatus(ctx context.Context, status domain.FraudAlertStatus, limit, offset int) ([]*domain.FraudAlert, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.FraudAlert{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []*domain.FraudAlert
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}
