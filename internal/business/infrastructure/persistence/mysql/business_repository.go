package mysql

import (
	"context"
	"errors"

	"github.com/investghanahub/backend/internal/business/domain"
	"github.com/investghanahub/backend/pkg/contextx"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// businessRepository 企业仓储实现
type businessRepository struct {
	db *gorm.DB
}

// NewBusinessRepository 创建企业仓储
func NewBusinessRepository(db *gorm.DB) domain.BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := contextx.Tx(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *businessRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if contextx.Tx(ctx) != nil {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
}

func (r *businessRepository) Save(ctx context.Context, business *domain.Business) error {
	return r.getDB(ctx).WithContext(ctx).Save(business).Error
}

func (r *businessRepository) GetByID(ctx context.Context, id uint) (*domain.Business, error) {
	var business domain.Business
	if err := r.getDB(ctx).WithContext(ctx).First(&business, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &business, nil
}

// SaveReview 带状态守卫的审核写入：仅当记录仍为 PENDING 时生效
func (r *businessRepository) SaveReview(ctx context.Context, business *domain.Business) error {
	result := r.getDB(ctx).WithContext(ctx).Model(&domain.Business{}).
		Where("id = ? AND status = ?", business.ID, domain.BusinessPending).
		Updates(map[string]any{
			"status":           business.Status,
			"rejection_reason": business.RejectionReason,
			"reviewed_by":      business.ReviewedBy,
			"reviewed_at":      business.ReviewedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBusinessNotPending
	}
	return nil
}

// AddFunds 在数据库侧原子累加已募集资金
func (r *businessRepository) AddFunds(ctx context.Context, id uint, amount decimal.Decimal) error {
	result := r.getDB(ctx).WithContext(ctx).Model(&domain.Business{}).
		Where("id = ?", id).
		Update("funds_raised", gorm.Expr("funds_raised + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBusinessNotFound
	}
	return nil
}

func (r *businessRepository) List(ctx context.Context, filter domain.BusinessFilter, limit, offset int) ([]*domain.Business, int64, error) {
	query := r.getDB(ctx).WithContext(ctx).Model(&domain.Business{})
	if filter.OwnerID != 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Industry != "" {
		query = query.Where("industry = ?", filter.Industry)
	}
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.IsFeatured != nil {
		query = query.Where("is_featured = ?", *filter.IsFeatured)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var businesses []*domain.Business
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&businesses).Error; err != nil {
		return nil, 0, err
	}
	return businesses, total, nil
}
