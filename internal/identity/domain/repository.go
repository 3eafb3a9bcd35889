package domain

import "context"

type UserRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Save(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint) (*User, error)
}

type KYCRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Save(ctx context.Context, kyc *KYC) error
	GetByUserID(ctx context.Context, userID uint) (*KYC, error)
	// SaveReview 仅当记录仍为 PENDING 时写入审核结果，否则返回 ErrKYCNotPending
	SaveReview(ctx context.Context, kyc *KYC) error
	ListByStatus(ctx context.Context, status KYCStatus, limit, offset int) ([]*KYC, int64, error)
}
