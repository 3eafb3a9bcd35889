package application

import (
	"context"
	"time"

	"github.com/investghanahub/backend/internal/investment/domain"
)

// InvestmentQueryService 投资查询服务
type InvestmentQueryService struct {
	opportunities domain.OpportunityRepository
	investments   domain.InvestmentRepository
	transactions  domain.TransactionRepository
}

func NewInvestmentQueryService(
	opportunities domain.OpportunityRepository,
	investments domain.InvestmentRepository,
	transactions domain.TransactionRepository,
) *InvestmentQueryService {
	return &InvestmentQueryService{
		opportunities: opportunities,
		investments:   investments,
		transactions:  transactions,
	}
}

// GetOpportunity 获取融资机会
func (s *InvestmentQueryService) GetOpportunity(ctx context.Context, id uint) (*domain.Opportunity, error) {
	opportunity, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if opportunity == nil {
		return nil, domain.ErrOpportunityNotFound
	}
	return opportunity, nil
}

// ListOpportunities 按状态分页列出融资机会
func (s *InvestmentQueryService) ListOpportunities(ctx context.Context, status domain.OpportunityStatus, businessID uint, limit, offset int) ([]*domain.Opportunity, int64, error) {
	return s.opportunities.List(ctx, status, businessID, limit, offset)
}

// Portfolio 投资人持仓：投资明细与全量汇总
func (s *InvestmentQueryService) Portfolio(ctx context.Context, investorID uint, limit, offset int) ([]*domain.Investment, int64, *domain.PortfolioSummary, error) {
	investments, total, err := s.investments.ListByInvestor(ctx, investorID, limit, offset)
	if err != nil {
		return nil, 0, nil, err
	}
	summary, err := s.investments.SummarizeActive(ctx, investorID)
	if err != nil {
		return nil, 0, nil, err
	}
	return investments, total, summary, nil
}

// GetInvestment 获取投资记录
func (s *InvestmentQueryService) GetInvestment(ctx context.Context, id uint) (*domain.Investment, error) {
	investment, err := s.investments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if investment == nil {
		return nil, domain.ErrInvestmentNotFound
	}
	return investment, nil
}

// ListTransactions 按用户分页列出资金流水
func (s *InvestmentQueryService) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]*domain.Transaction, int64, error) {
	return s.transactions.ListByUser(ctx, userID, limit, offset)
}

// RecentInvestmentCount 统计某投资人在指定时刻之后的投资笔数，供风控评估交易频率
func (s *InvestmentQueryService) RecentInvestmentCount(ctx context.Context, userID uint, since time.Time) (int64, error) {
	return s.investments.CountByInvestorSince(ctx, userID, since)
}
