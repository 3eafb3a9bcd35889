package application

import (
	"context"

	"github.com/investghanahub/backend/internal/business/domain"
)

// BusinessQueryService 企业查询服务
type BusinessQueryService struct {
	businesses domain.BusinessRepository
}

func NewBusinessQueryService(businesses domain.BusinessRepository) *BusinessQueryService {
	return &BusinessQueryService{businesses: businesses}
}

// Get 获取企业档案
func (s *BusinessQueryService) Get(ctx context.Context, id uint) (*domain.Business, error) {
	business, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domain.ErrBusinessNotFound
	}
	return business, nil
}

// List 按过滤条件分页列出企业
func (s *BusinessQueryService) List(ctx context.Context, filter domain.BusinessFilter, limit, offset int) ([]*domain.Business, int64, error) {
	return s.businesses.List(ctx, filter, limit, offset)
}

