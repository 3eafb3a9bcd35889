package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BusinessStatus 企业审核状态
type BusinessStatus string

const (
	BusinessPending  BusinessStatus = "PENDING"
	BusinessApproved BusinessStatus = "APPROVED"
	BusinessRejected BusinessStatus = "REJECTED"
)

var (
	ErrBusinessNotFound       = errors.New("business not found")
	ErrNotOwner               = errors.New("caller does not own this business")
	ErrBusinessNotPending     = errors.New("business is not pending review")
	ErrBusinessImmutable      = errors.New("approved business cannot be modified")
	ErrOwnerKYCRequired       = errors.New("owner must complete identity verification first")
	ErrBusinessReasonRequired = errors.New("rejection reason is required")
	ErrInvalidBusiness        = errors.New("invalid business profile")
)

// Business 企业档案聚合根
type Business struct {
	gorm.Model
	OwnerID         uint            `gorm:"column:owner_id;index;not null"`
	Name            string          `gorm:"column:name;type:varchar(128);not null"`
	Description     string          `gorm:"column:description;type:text"`
	Industry        string          `gorm:"column:industry;type:varchar(64);index"`
	Stage           string          `gorm:"column:stage;type:varchar(32);index"`
	Region          string          `gorm:"column:region;type:varchar(64)"`
	FundsRaised     decimal.Decimal `gorm:"column:funds_raised;type:decimal(18,2);not null;default:0"`
	IsFeatured      bool            `gorm:"column:is_featured;index;default:false"`
	Status          BusinessStatus  `gorm:"column:status;type:varchar(16);index;default:'PENDING'"`
	RejectionReason string          `gorm:"column:rejection_reason;type:varchar(512)"`
	ReviewedBy      *uint           `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time      `gorm:"column:reviewed_at"`
}

func (Business) TableName() string {
	return "businesses"
}

// NewBusiness 创建待审核的企业档案
func NewBusiness(ownerID uint, name, description, industry, stage, region string) (*Business, error) {
	if ownerID == 0 || name == "" {
		return nil, ErrInvalidBusiness
	}
	return &Business{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Industry:    industry,
		Stage:       stage,
		Region:      region,
		FundsRaised: decimal.Zero,
		Status:      BusinessPending,
	}, nil
}

// ApplyUpdate 企业主修改档案，修改后回到待审核并清除驳回原因；已通过审核的档案不可再修改
func (b *Business) ApplyUpdate(name, description, industry, stage, region string) error {
	if b.Status == BusinessApproved {
		return ErrBusinessImmutable
	}
	if name == "" {
		return ErrInvalidBusiness
	}
	b.Name = name
	b.Description = description
	b.Industry = industry
	b.Stage = stage
	b.Region = region
	b.Status = BusinessPending
	b.RejectionReason = ""
	b.ReviewedBy = nil
	b.ReviewedAt = nil
	return nil
}

// Approve 审核通过，仅允许 PENDING 状态
func (b *Business) Approve(adminID uint, now time.Time) error {
	if b.Status != BusinessPending {
		return ErrBusinessNotPending
	}
	b.Status = BusinessApproved
	b.RejectionReason = ""
	b.ReviewedBy = &adminID
	b.ReviewedAt = &now
	return nil
}

// Reject 审核驳回，必须给出原因
func (b *Business) Reject(adminID uint, reason string, now time.Time) error {
	if b.Status != BusinessPending {
		return ErrBusinessNotPending
	}
	if reason == "" {
		return ErrBusinessReasonRequired
	}
	b.Status = BusinessRejected
	b.RejectionReason = reason
	b.ReviewedBy = &adminID
	b.ReviewedAt = &now
	return nil
}

// IsOwnedBy 判断归属
func (b *Business) IsOwnedBy(userID uint) bool {
	return b.OwnerID == userID
}
