package application

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/investghanahub/backend/internal/identity/domain"
	"github.com/investghanahub/backend/pkg/logger"
	"github.com/investghanahub/backend/pkg/middleware"
	"github.com/investghanahub/backend/pkg/utils"
)

// RegisterCommand 注册命令
type RegisterCommand struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Role     domain.UserRole
}

// LoginCommand 登录命令
type LoginCommand struct {
	Email    string
	Password string
}

// AuthCommandService 认证命令服务
type AuthCommandService struct {
	users     domain.UserRepository
	sessions  domain.SessionRepository
	publisher domain.EventPublisher
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthCommandService 创建认证命令服务实例
func NewAuthCommandService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	publisher domain.EventPublisher,
	jwtSecret string,
	tokenTTL time.Duration,
) *AuthCommandService {
	return &AuthCommandService{
		users:     users,
		sessions:  sessions,
		publisher: publisher,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register 处理用户注册，角色注册后不可变更
func (s *AuthCommandService) Register(ctx context.Context, cmd RegisterCommand) (uint, error) {
	if !domain.ValidRegistrationRole(cmd.Role) {
		return 0, domain.ErrInvalidRole
	}

	var user *domain.User
	err := s.users.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.users.GetByEmail(txCtx, cmd.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailTaken
		}

		user = domain.NewUser(cmd.Email, utils.SHA256Hash(cmd.Password), cmd.FullName, cmd.Role)
		user.Phone = cmd.Phone
		return s.users.Save(txCtx, user)
	})
	if err != nil {
		return 0, err
	}

	if s.publisher != nil {
		event := domain.UserRegisteredEvent{
			UserID:    user.ID,
			Email:     user.Email,
			Role:      user.Role,
			Timestamp: time.Now(),
		}
		if err := s.publisher.Publish(ctx, domain.UserRegisteredEventType, cmd.Email, event); err != nil {
			logger.Warn(ctx, "failed to publish registration event", "user_id", user.ID, "error", err)
		}
	}

	return user.ID, nil
}

// Login 处理用户登录，签发 JWT 并写入会话
func (s *AuthCommandService) Login(ctx context.Context, cmd LoginCommand) (string, int64, error) {
	user, err := s.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return "", 0, err
	}
	if user == nil || user.PasswordHash != utils.SHA256Hash(cmd.Password) {
		return "", 0, domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := middleware.AuthClaims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", 0, err
	}

	session := &domain.AuthSession{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", 0, err
	}

	return token, expiresAt.Unix(), nil
}

// Logout 删除会话
func (s *AuthCommandService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
