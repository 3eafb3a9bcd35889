package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// KYCStatus 实名认证状态
type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCApproved KYCStatus = "APPROVED"
	KYCRejected KYCStatus = "REJECTED"
)

var (
	ErrKYCNotFound         = errors.New("kyc record not found")
	ErrKYCAlreadySubmitted = errors.New("kyc already submitted")
	ErrKYCNotPending       = errors.New("kyc record is not pending review")
	ErrKYCNotApproved      = errors.New("kyc not approved")
	ErrReasonRequired      = errors.New("rejection reason is required")
)

// KYC 每个用户至多一条实名认证记录
type KYC struct {
	gorm.Model
	UserID          uint       `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	FullName        string     `gorm:"column:full_name;type:varchar(120);not null" json:"full_name"`
	DocumentType    string     `gorm:"column:document_type;type:varchar(30);not null" json:"document_type"`
	DocumentNumber  string     `gorm:"column:document_number;type:varchar(64);not null" json:"document_number"`
	Address         string     `gorm:"column:address;type:varchar(255)" json:"address"`
	Region          string     `gorm:"column:region;type:varchar(64)" json:"region"`
	Status          KYCStatus  `gorm:"column:status;type:varchar(20);not null;default:'PENDING'" json:"status"`
	RejectionReason string     `gorm:"column:rejection_reason;type:varchar(255)" json:"rejection_reason,omitempty"`
	ReviewedBy      *uint      `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
}

func (KYC) TableName() string { return "kyc_records" }

// NewKYC 创建待审核的认证记录
func NewKYC(userID uint, fullName, docType, docNumber, address, region string) *KYC {
	return &KYC{
		UserID:         userID,
		FullName:       fullName,
		DocumentType:   docType,
		DocumentNumber: docNumber,
		Address:        address,
		Region:         region,
		Status:         KYCPending,
	}
}

// Approve 审核通过，仅允许 PENDING -> APPROVED
func (k *KYC) Approve(adminID uint, now time.Time) error {
	if k.Status != KYCPending {
		return ErrKYCNotPending
	}
	k.Status = KYCApproved
	k.RejectionReason = ""
	k.ReviewedBy = &adminID
	k.ReviewedAt = &now
	return nil
}

// Reject 审核驳回，仅允许 PENDING -> REJECTED，且必须给出原因
func (k *KYC) Reject(adminID uint, reason string, now time.Time) error {
	if k.Status != KYCPending {
		return ErrKYCNotPending
	}
	if reason == "" {
		return ErrReasonRequired
	}
	k.Status = KYCRejected
	k.RejectionReason = reason
	k.ReviewedBy = &adminID
	k.ReviewedAt = &now
	return nil
}

// Resubmit 驳回后重新提交，记录回到 PENDING
func (k *KYC) Resubmit(fullName, docType, docNumber, address, region string) error {
	if k.Status != KYCRejected {
		return ErrKYCAlreadySubmitted
	}
	k.FullName = fullName
	k.DocumentType = docType
	k.DocumentNumber = docNumber
	k.Address = address
	k.Region = region
	k.Status = KYCPending
	k.RejectionReason = ""
	k.ReviewedBy = nil
	k.ReviewedAt = nil
	return nil
}
