package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/investghanahub/backend/internal/investment/domain"
	"github.com/investghanahub/backend/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// opportunityRepository 融资机会仓储实现
type opportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository 创建融资机会仓储
func NewOpportunityRepository(db *gorm.DB) domain.OpportunityRepository {
	return &opportunityRepository{db: db}
}

func (r *opportunityRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := contextx.Tx(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *opportunityRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if contextx.Tx(ctx) != nil {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
}

func (r *opportunityRepository) Save(ctx context.Context, opportunity *domain.Opportunity) error {
	return r.getDB(ctx).WithContext(ctx).Save(opportunity).Error
}

func (r *opportunityRepository) GetByID(ctx context.Context, id uint) (*domain.Opportunity, error) {
	var opportunity domain.Opportunity
	if err := r.getDB(ctx).WithContext(ctx).First(&opportunity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &opportunity, nil
}

// GetForUpdate 行锁读取，额度校验必须在持锁事务内完成
func (r *opportunityRepository) GetForUpdate(ctx context.Context, id uint) (*domain.Opportunity, error) {
	var opportunity domain.Opportunity
	err := r.getDB(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&opportunity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &opportunity, nil
}

func (r *opportunityRepository) List(ctx context.Context, status domain.OpportunityStatus, businessID uint, limit, offset int) ([]*domain.Opportunity, int64, error) {
	query := r.getDB(ctx).WithContext(ctx).Model(&domain.Opportunity{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if businessID != 0 {
		query = query.Where("business_id = ?", businessID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var opportunities []*domain.Opportunity
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&opportunities).Error; err != nil {
		return nil, 0, err
	}
	return opportunities, total, nil
}

func (r *opportunityRepository) ListOpenPastEnd(ctx context.Context, now time.Time, limit int) ([]*domain.Opportunity, error) {
	var opportunities []*domain.Opportunity
	err := r.getDB(ctx).WithContext(ctx).
		Where("status = ? AND end_date < ?", domain.OpportunityOpen, now).
		Limit(limit).
		Find(&opportunities).Error
	if err != nil {
		return nil, err
	}
	return opportunities, nil
}
