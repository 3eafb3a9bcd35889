package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// BusinessFilter 企业列表过滤条件
type BusinessFilter struct {
	OwnerID    uint
	Industry   string
	Stage      string
	Status     BusinessStatus
	IsFeatured *bool
}

// BusinessRepository 企业仓储接口
type BusinessRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Save(ctx context.Context, business *Business) error
	GetByID(ctx context.Context, id uint) (*Business, error)
	// SaveReview 带状态守卫的审核写入，记录不再是 PENDING 时返回 ErrBusinessNotPending。
	SaveReview(ctx context.Context, business *Business) error
	// AddFunds 原子累加已募集资金。
	AddFunds(ctx context.Context, id uint, amount decimal.Decimal) error
	List(ctx context.Context, filter BusinessFilter, limit, offset int) ([]*Business, int64, error)
}

// KYCGateway 校验企业主是否已通过实名认证
type KYCGateway interface {
	KYCApproved(ctx context.Context, userID uint) (bool, error)
}
