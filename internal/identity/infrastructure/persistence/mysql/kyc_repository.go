package mysql

import (
	"context"
	"errors"

	"github.com/investghanahub/backend/internal/identity/domain"
	"github.com/investghanahub/backend/pkg/contextx"
	"gorm.io/gorm"
)

// kycRepository 认证记录仓储实现
type kycRepository struct {
	db *gorm.DB
}

// NewKYCRepository 创建认证记录仓储
func NewKYCRepository(db *gorm.DB) domain.KYCRepository {
	return &kycRepository{db: db}
}

func (r *kycRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := contextx.Tx(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *kycRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if contextx.Tx(ctx) != nil {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(contextx.WithTx(ctx, tx))
	})
}

func (r *kycRepository) Save(ctx context.Context, kyc *domain.KYC) error {
	return r.getDB(ctx).WithContext(ctx).Save(kyc).Error
}

func (r *kycRepository) GetByUserID(ctx context.Context, userID uint) (*domain.KYC, error) {
	var kyc domain.KYC
	if err := r.getDB(ctx).WithContext(ctx).Where("user_id = ?", userID).First(&kyc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &kyc, nil
}

// SaveReview 带状态守卫的审核写入：仅当记录仍为 PENDING 时生效
func (r *kycRepository) SaveReview(ctx context.Context, kyc *domain.KYC) error {
	result := r.getDB(ctx).WithContext(ctx).Model(&domain.KYC{}).
		Where("id = ? AND status = ?", kyc.ID, domain.KYCPending).
		Updates(map[string]any{
			"status":           kyc.Status,
			"rejection_reason": kyc.RejectionReason,
			"reviewed_by":      kyc.ReviewedBy,
			"reviewed_at":      kyc.ReviewedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrKYCNotPending
	}
	return nil
}

func (r *kycRepository) ListByStatus(ctx context.Context, status domain.KYCStatus, limit, offset int) ([]*domain.KYC, int64, error) {
	query := r.getDB(ctx).WithContext(ctx).Model(&domain.KYC{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*domain.KYC
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
