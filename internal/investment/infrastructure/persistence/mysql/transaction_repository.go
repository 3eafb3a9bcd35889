package mysql

import (
	"context"

	"github.com/investghanahub/backend/internal/investment/domain"
	"github.com/investghanahub/backend/pkg/contextx"
	"gorm.io/gorm"
)

// transactionRepository 流水仓储实现，只追加
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建流水仓储
func NewTransactionRepository(db *gorm.DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := contextx.Tx(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *transactionRepository) Save(ctx context.Context, tx *domain.Transaction) error {
	return r.getDB(ctx).WithContext(ctx).Create(tx).Error
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*domain.Transaction, int64, error) {
	query := r.getDB(ctx).WithContext(ctx).Model(&domain.Transaction{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []*domain.Transaction
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}
