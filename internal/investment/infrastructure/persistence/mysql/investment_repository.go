package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/investghanahub/backend/internal/investment/domain"
	"github.com/investghanahub/backend/pkg/contextx"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// investmentRepository 投资记录仓储实现
type investmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository 创建投资记录仓储
func NewInvestmentRepository(db *gorm.DB) domain.InvestmentRepository {
	return &investmentRepository{db: db}
}

func (r *investmentRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := contextx.Tx(ctx); tx != nil {
		return tx
	}
	return r.db
}

func (r *investmentRepository) Save(ctx context.Context, investment *domain.Investment) error {
	return r.getDB(ctx).WithContext(ctx).Save(investment).Error
}

// SaveTransition 条件更新，数据库中状态已不是 from 时返回 ErrInvestmentNotActive
func (r *investmentRepository) SaveTransition(ctx context.Context, investment *domain.Investment, from domain.InvestmentStatus) error {
	result := r.getDB(ctx).WithContext(ctx).Model(&domain.Investment{}).
		Where("id = ? AND status = ?", investment.ID, from).
		Update("status", investment.Status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrInvestmentNotActive
	}
	return nil
}

func (r *investmentRepository) GetByID(ctx context.Context, id uint) (*domain.Investment, error) {
	var investment domain.Investment
	if err := r.getDB(ctx).WithContext(ctx).First(&investment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &investment, nil
}

func (r *investmentRepository) ListByInvestor(ctx context.Context, investorID uint, limit, offset int) ([]*domain.Investment, int64, error) {
	query := r.getDB(ctx).WithContext(ctx).Model(&domain.Investment{}).
		Where("investor_id = ?", investorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var investments []*domain.Investment
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&investments).Error; err != nil {
		return nil, 0, err
	}
	return investments, total, nil
}

func (r *investmentRepository) ListMatured(ctx context.Context, now time.Time, limit int) ([]*domain.Investment, error) {
	var investments []*domain.Investment
	err := r.getDB(ctx).WithContext(ctx).
		Where("status = ? AND maturity_date <= ?", domain.InvestmentActive, now).
		Limit(limit).
		Find(&investments).Error
	if err != nil {
		return nil, err
	}
	return investments, nil
}

func (r *investmentRepository) CountByInvestorSince(ctx context.Context, investorID uint, since time.Time) (int64, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).Model(&domain.Investment{}).
		Where("investor_id = ? AND created_at >= ?", investorID, since).
		Count(&count).Error
	return count, err
}

// SummarizeActive 数据库侧汇总，避免翻页累加
func (r *investmentRepository) SummarizeActive(ctx context.Context, investorID uint) (*domain.PortfolioSummary, error) {
	var row struct {
		TotalInvested       decimal.Decimal
		TotalExpectedReturn decimal.Decimal
		ActiveCount         int64
	}
	err := r.getDB(ctx).WithContext(ctx).Model(&domain.Investment{}).
		Select("COALESCE(SUM(amount), 0) AS total_invested, COALESCE(SUM(expected_return), 0) AS total_expected_return, COUNT(*) AS active_count").
		Where("investor_id = ? AND status = ?", investorID, domain.InvestmentActive).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domain.PortfolioSummary{
		TotalInvested:       row.TotalInvested,
		TotalExpectedReturn: row.TotalExpectedReturn,
		ActiveCount:         row.ActiveCount,
	}, nil
}
