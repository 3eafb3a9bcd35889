package domain

import (
	"context"
	"time"
)

const (
	BusinessCreatedEventType  = "business.created"
	BusinessApprovedEventType = "business.approved"
	BusinessRejectedEventType = "business.rejected"
)

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// BusinessCreatedEvent 企业创建事件
type BusinessCreatedEvent struct {
	BusinessID uint      `json:"business_id"`
	OwnerID    uint      `json:"owner_id"`
	Name       string    `json:"name"`
	Timestamp  time.Time `json:"timestamp"`
}

// BusinessReviewedEvent 企业审核事件，按审核结论发布到对应主题
type BusinessReviewedEvent struct {
	BusinessID uint           `json:"business_id"`
	AdminID    uint           `json:"admin_id"`
	Status     BusinessStatus `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
