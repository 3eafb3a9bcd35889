package domain

import (
	"context"
	"time"
)

const (
	UserRegisteredEventType = "user.registered"
	KYCSubmittedEventType   = "kyc.submitted"
	KYCReviewedEventType    = "kyc.reviewed"
)

// EventPublisher 集成事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// UserRegisteredEvent 用户注册事件
type UserRegisteredEvent struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// KYCSubmittedEvent 认证提交事件
type KYCSubmittedEvent struct {
	UserID    uint      `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// KYCReviewedEvent 认证审核事件
type KYCReviewedEvent struct {
	UserID    uint      `json:"user_id"`
	AdminID   uint      `json:"admin_id"`
	Status    KYCStatus `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
