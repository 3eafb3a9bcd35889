package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OpportunityRepository 融资机会仓储接口
type OpportunityRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Save(ctx context.Context, opportunity *Opportunity) error
	GetByID(ctx context.Context, id uint) (*Opportunity, error)
	// GetForUpdate 在当前事务内以行锁读取，用于投资额度的串行校验。
	GetForUpdate(ctx context.Context, id uint) (*Opportunity, error)
	List(ctx context.Context, status OpportunityStatus, businessID uint, limit, offset int) ([]*Opportunity, int64, error)
	// ListOpenPastEnd 返回已过截止日期但仍为 OPEN 的机会，供到期任务扫描。
	ListOpenPastEnd(ctx context.Context, now time.Time, limit int) ([]*Opportunity, error)
}

// InvestmentRepository 投资记录仓储接口
type InvestmentRepository interface {
	Save(ctx context.Context, investment *Investment) error
	// SaveTransition 条件更新状态，仅当数据库中仍为 from 状态时生效，
	// 否则返回 ErrInvestmentNotActive，保证并发撤销/结算只有一个成功。
	SaveTransition(ctx context.Context, investment *Investment, from InvestmentStatus) error
	GetByID(ctx context.Context, id uint) (*Investment, error)
	ListByInvestor(ctx context.Context, investorID uint, limit, offset int) ([]*Investment, int64, error)
	// ListMatured 返回已过到期日的 ACTIVE 投资，供到期任务扫描。
	ListMatured(ctx context.Context, now time.Time, limit int) ([]*Investment, error)
	CountByInvestorSince(ctx context.Context, investorID uint, since time.Time) (int64, error)
	// SummarizeActive 在数据库侧汇总某投资人所有 ACTIVE 投资。
	SummarizeActive(ctx context.Context, investorID uint) (*PortfolioSummary, error)
}

// TransactionRepository 流水仓储接口，只追加
type TransactionRepository interface {
	Save(ctx context.Context, tx *Transaction) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*Transaction, int64, error)
}

// PortfolioSummary 投资人持仓汇总
type PortfolioSummary struct {
	TotalInvested       decimal.Decimal `json:"total_invested"`
	TotalExpectedReturn decimal.Decimal `json:"total_expected_return"`
	ActiveCount         int64           `json:"active_count"`
}

// BusinessGateway 企业模块网关
type BusinessGateway interface {
	BusinessApproved(ctx context.Context, id uint) (bool, uint, error)
	AddFunds(ctx context.Context, id uint, amount decimal.Decimal) error
}

// KYCGateway 实名认证网关
type KYCGateway interface {
	KYCApproved(ctx context.Context, userID uint) (bool, error)
}
