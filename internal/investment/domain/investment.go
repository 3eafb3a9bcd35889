package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvestmentStatus 投资状态
type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "ACTIVE"
	InvestmentMatured   InvestmentStatus = "MATURED"
	InvestmentCancelled InvestmentStatus = "CANCELLED"
)

var (
	ErrInvestmentNotFound  = errors.New("investment not found")
	ErrInvestmentNotActive = errors.New("investment is not active")
	ErrNotInvestor         = errors.New("caller does not own this investment")
)

// Investment 投资记录
type Investment struct {
	gorm.Model
	InvestorID     uint             `gorm:"column:investor_id;index;not null"`
	OpportunityID  uint             `gorm:"column:opportunity_id;index;not null"`
	Amount         decimal.Decimal  `gorm:"column:amount;type:decimal(18,2);not null"`
	ExpectedReturn decimal.Decimal  `gorm:"column:expected_return;type:decimal(18,2);not null"`
	MaturityDate   time.Time        `gorm:"column:maturity_date;index;not null"`
	Status         InvestmentStatus `gorm:"column:status;type:varchar(16);index;default:'ACTIVE'"`
}

func (Investment) TableName() string {
	return "investments"
}

// NewInvestment 创建生效的投资记录
func NewInvestment(investorID, opportunityID uint, amount, expectedReturn decimal.Decimal, maturity time.Time) *Investment {
	return &Investment{
		InvestorID:     investorID,
		OpportunityID:  opportunityID,
		Amount:         amount,
		ExpectedReturn: expectedReturn,
		MaturityDate:   maturity,
		Status:         InvestmentActive,
	}
}

// Cancel 撤销投资，仅允许 ACTIVE 状态
func (i *Investment) Cancel() error {
	if i.Status != InvestmentActive {
		return ErrInvestmentNotActive
	}
	i.Status = InvestmentCancelled
	return nil
}

// Mature 到期结算，仅允许 ACTIVE 状态
func (i *Investment) Mature() error {
	if i.Status != InvestmentActive {
		return ErrInvestmentNotActive
	}
	i.Status = InvestmentMatured
	return nil
}

// IsMature 判断是否已过到期日
func (i *Investment) IsMature(now time.Time) bool {
	return i.Status == InvestmentActive && !now.Before(i.MaturityDate)
}
