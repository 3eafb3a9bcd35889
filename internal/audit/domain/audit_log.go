package domain

import (
	"context"

	"gorm.io/gorm"
)

// 审计动作
const (
	ActionKYCSubmitted        = "KYC_SUBMITTED"
	ActionKYCApproved         = "KYC_APPROVED"
	ActionKYCRejected         = "KYC_REJECTED"
	ActionBusinessCreated     = "BUSINESS_CREATED"
	ActionBusinessUpdated     = "BUSINESS_UPDATED"
	ActionBusinessApproved    = "BUSINESS_APPROVED"
	ActionBusinessRejected    = "BUSINESS_REJECTED"
	ActionOpportunityCreated  = "OPPORTUNITY_CREATED"
	ActionInvestmentAccepted  = "INVESTMENT_ACCEPTED"
	ActionInvestmentCancelled = "INVESTMENT_CANCELLED"
	ActionFraudAlertResolved  = "FRAUD_ALERT_RESOLVED"
)

// AuditLog 不可变的操作审计记录，只追加
type AuditLog struct {
	gorm.Model
	ActorID    uint   `gorm:"column:actor_id;index;not null" json:"actor_id"`
	AdminID    *uint  `gorm:"column:admin_id;index" json:"admin_id,omitempty"`
	Action     string `gorm:"column:action;type:varchar(40);index;not null" json:"action"`
	EntityType string `gorm:"column:entity_type;type:varchar(30);not null" json:"entity_type"`
	EntityID   uint   `gorm:"column:entity_id;index;not null" json:"entity_id"`
	Detail     string `gorm:"column:detail;type:text" json:"detail,omitempty"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// Recorder 审计记录器，由各业务服务调用
type Recorder interface {
	// Record 追加一条审计记录；在事务上下文中调用时随事务一同提交
	Record(ctx context.Context, entry *AuditLog)
}
