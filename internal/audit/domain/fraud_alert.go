package domain

import (
	"errors"

	"gorm.io/gorm"
)

// FraudAlertStatus 风险警报状态
type FraudAlertStatus string

const (
	FraudAlertPending  FraudAlertStatus = "PENDING"
	FraudAlertResolved FraudAlertStatus = "RESOLVED"
)

var (
	ErrAlertNotFound   = errors.New("fraud alert not found")
	ErrAlertNotPending = errors.New("fraud alert is not pending")
)

// FraudAlert 独立的风险提示记录，不影响任何业务状态
type FraudAlert struct {
	gorm.Model
	UserID    uint             `gorm:"column:user_id;index;not null" json:"user_id"`
	RiskScore float64          `gorm:"column:risk_score;not null" json:"risk_score"`
	Reason    string           `gorm:"column:reason;type:varchar(255);not null" json:"reason"`
	Status    FraudAlertStatus `gorm:"column:status;type:varchar(20);not null;default:'PENDING'" json:"status"`
}

func (FraudAlert) TableName() string { return "fraud_alerts" }

// Resolve 标记已处理，仅允许 PENDING -> RESOLVED
func (a *FraudAlert) Resolve() error {
	if a.Status != FraudAlertPending {
		return ErrAlertNotPending
	}
	a.Status = FraudAlertResolved
	return nil
}
