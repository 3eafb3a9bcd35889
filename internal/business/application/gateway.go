package application

import (
	"context"

	"github.com/investghanahub/backend/internal/business/domain"
	"github.com/shopspring/decimal"
)

// BusinessGateway 供其他模块调用的企业侧接口实现
type BusinessGateway struct {
	businesses domain.BusinessRepository
}

func NewBusinessGateway(businesses domain.BusinessRepository) *BusinessGateway {
	return &BusinessGateway{businesses: businesses}
}

// BusinessApproved 判断企业是否已审核通过。
// 只要企业存在就返回其归属人，调用方可以先校验归属再校验审核状态。
func (g *BusinessGateway) BusinessApproved(ctx context.Context, id uint) (bool, uint, error) {
	business, err := g.businesses.GetByID(ctx, id)
	if err != nil {
		return false, 0, err
	}
	if business == nil {
		return false, 0, nil
	}
	return business.Status == domain.BusinessApproved, business.OwnerID, nil
}

// AddFunds 投资成交后累加企业已募集资金，与投资事务共用同一连接
func (g *BusinessGateway) AddFunds(ctx context.Context, id uint, amount decimal.Decimal) error {
	return g.businesses.AddFunds(ctx, id, amount)
}
