package application

import (
	"context"

	"github.com/investghanahub/backend/internal/identity/domain"
)

// IdentityQueryService 身份与认证查询服务
type IdentityQueryService struct {
	users domain.UserRepository
	kycs  domain.KYCRepository
}

func NewIdentityQueryService(users domain.UserRepository, kycs domain.KYCRepository) *IdentityQueryService {
	return &IdentityQueryService{users: users, kycs: kycs}
}

// GetUser 获取用户
func (s *IdentityQueryService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// GetKYC 获取用户的认证记录
func (s *IdentityQueryService) GetKYC(ctx context.Context, userID uint) (*domain.KYC, error) {
	kyc, err := s.kycs.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if kyc == nil {
		return nil, domain.ErrKYCNotFound
	}
	return kyc, nil
}

// ListKYCByStatus 按状态分页列出认证记录（管理端）
func (s *IdentityQueryService) ListKYCByStatus(ctx context.Context, status domain.KYCStatus, limit, offset int) ([]*domain.KYC, int64, error) {
	return s.kycs.ListByStatus(ctx, status, limit, offset)
}

// KYCApproved 判断用户是否已通过实名认证，作为业务与投资操作的前置门槛
func (s *IdentityQueryService) KYCApproved(ctx context.Context, userID uint) (bool, error) {
	kyc, err := s.kycs.GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return kyc != nil && kyc.Status == domain.KYCApproved, nil
}
