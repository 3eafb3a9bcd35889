package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OpportunityStatus 融资机会状态
type OpportunityStatus string

const (
	OpportunityOpen    OpportunityStatus = "OPEN"
	OpportunityClosed  OpportunityStatus = "CLOSED"
	OpportunityExpired OpportunityStatus = "EXPIRED"
)

var (
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrOpportunityNotOpen  = errors.New("opportunity is not open for investment")
	ErrInvalidOpportunity  = errors.New("invalid opportunity terms")
	ErrAmountBelowMinimum  = errors.New("amount is below the minimum investment")
	ErrAmountAboveMaximum  = errors.New("amount is above the maximum investment")
	ErrCapacityExceeded    = errors.New("amount exceeds remaining capacity")
	ErrInvestorKYCRequired = errors.New("investor must complete identity verification first")
	ErrBusinessNotApproved = errors.New("business is not approved for fundraising")
	ErrNotBusinessOwner    = errors.New("caller does not own this business")
)

var daysPerYear = decimal.NewFromInt(365)

// Opportunity 融资机会聚合根
type Opportunity struct {
	gorm.Model
	BusinessID       uint              `gorm:"column:business_id;index;not null"`
	Title            string            `gorm:"column:title;type:varchar(128);not null"`
	Description      string            `gorm:"column:description;type:text"`
	TargetAmount     decimal.Decimal   `gorm:"column:target_amount;type:decimal(18,2);not null"`
	MinInvestment    decimal.Decimal   `gorm:"column:min_investment;type:decimal(18,2);not null"`
	MaxInvestment    decimal.Decimal   `gorm:"column:max_investment;type:decimal(18,2);not null"`
	CurrentAmount    decimal.Decimal   `gorm:"column:current_amount;type:decimal(18,2);not null;default:0"`
	AnnualReturnRate decimal.Decimal   `gorm:"column:annual_return_rate;type:decimal(8,4);not null"`
	DurationDays     int               `gorm:"column:duration_days;not null"`
	StartDate        time.Time         `gorm:"column:start_date;not null"`
	EndDate          time.Time         `gorm:"column:end_date;index;not null"`
	Status           OpportunityStatus `gorm:"column:status;type:varchar(16);index;default:'OPEN'"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// NewOpportunity 创建融资机会并校验条款
func NewOpportunity(businessID uint, title, description string, target, min, max, rate decimal.Decimal, durationDays int, start, end time.Time) (*Opportunity, error) {
	o := &Opportunity{
		BusinessID:       businessID,
		Title:            title,
		Description:      description,
		TargetAmount:     target,
		MinInvestment:    min,
		MaxInvestment:    max,
		CurrentAmount:    decimal.Zero,
		AnnualReturnRate: rate,
		DurationDays:     durationDays,
		StartDate:        start,
		EndDate:          end,
		Status:           OpportunityOpen,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate 校验条款：0 < min <= max <= target，期限为正，结束晚于开始
func (o *Opportunity) Validate() error {
	if o.BusinessID == 0 || o.Title == "" {
		return ErrInvalidOpportunity
	}
	if o.MinInvestment.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidOpportunity
	}
	if o.MinInvestment.GreaterThan(o.MaxInvestment) || o.MaxInvestment.GreaterThan(o.TargetAmount) {
		return ErrInvalidOpportunity
	}
	if o.AnnualReturnRate.LessThanOrEqual(decimal.Zero) || o.DurationDays <= 0 {
		return ErrInvalidOpportunity
	}
	if !o.EndDate.After(o.StartDate) {
		return ErrInvalidOpportunity
	}
	return nil
}

// CanAccept 判断当前时刻能否接受一笔投资
func (o *Opportunity) CanAccept(amount decimal.Decimal, now time.Time) error {
	if o.Status != OpportunityOpen {
		return ErrOpportunityNotOpen
	}
	if now.Before(o.StartDate) || now.After(o.EndDate) {
		return ErrOpportunityNotOpen
	}
	if amount.LessThan(o.MinInvestment) {
		return ErrAmountBelowMinimum
	}
	if amount.GreaterThan(o.MaxInvestment) {
		return ErrAmountAboveMaximum
	}
	if o.CurrentAmount.Add(amount).GreaterThan(o.TargetAmount) {
		return ErrCapacityExceeded
	}
	return nil
}

// Accept 接受一笔投资，募满即关闭。调用前必须先通过 CanAccept。
func (o *Opportunity) Accept(amount decimal.Decimal) {
	o.CurrentAmount = o.CurrentAmount.Add(amount)
	if o.CurrentAmount.GreaterThanOrEqual(o.TargetAmount) {
		o.Status = OpportunityClosed
	}
}

// Release 撤销一笔投资对应的额度
func (o *Opportunity) Release(amount decimal.Decimal) {
	o.CurrentAmount = o.CurrentAmount.Sub(amount)
	if o.CurrentAmount.IsNegative() {
		o.CurrentAmount = decimal.Zero
	}
}

// ExpireIfPast 截止日期已过则就地标记为过期
func (o *Opportunity) ExpireIfPast(now time.Time) bool {
	if o.Status == OpportunityOpen && now.After(o.EndDate) {
		o.Status = OpportunityExpired
		return true
	}
	return false
}

// ExpectedReturn 按简单年化计算到期本息：amount * (1 + rate * days/365)
func (o *Opportunity) ExpectedReturn(amount decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(
		o.AnnualReturnRate.Mul(decimal.NewFromInt(int64(o.DurationDays))).Div(daysPerYear),
	)
	return amount.Mul(factor).Round(2)
}

// MaturityDate 投资到期日
func (o *Opportunity) MaturityDate(now time.Time) time.Time {
	return now.AddDate(0, 0, o.DurationDays)
}
