package http

import (
	"github.com/gin-gonic/gin"
	"github.com/investghanahub/backend/internal/identity/domain"
)

// SessionVerifier 将会话仓储适配为认证中间件的会话校验器，
// 使注销后的 token 立即失效而无需等待 JWT 过期。
type SessionVerifier struct {
	sessions domain.SessionRepository
}

func NewSessionVerifier(sessions domain.SessionRepository) *SessionVerifier {
	return &SessionVerifier{sessions: sessions}
}

func (v *SessionVerifier) SessionActive(c *gin.Context, token string) bool {
	session, err := v.sessions.Get(c.Request.Context(), token)
	if err != nil || session == nil {
		return false
	}
	return !session.IsExpired()
}
