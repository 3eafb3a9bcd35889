package application

import (
	"context"
	"time"

	auditdomain "github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/internal/identity/domain"
	"github.com/investghanahub/backend/pkg/logger"
	"github.com/investghanahub/backend/pkg/metrics"
)

// SubmitKYCCommand 提交认证命令
type SubmitKYCCommand struct {
	UserID         uint
	FullName       string
	DocumentType   string
	DocumentNumber string
	Address        string
	Region         string
}

// ReviewKYCCommand 审核认证命令
type ReviewKYCCommand struct {
	AdminID uint
	UserID  uint
	Approve bool
	Reason  string
}

// KYCCommandService 认证命令服务
type KYCCommandService struct {
	kycs      domain.KYCRepository
	users     domain.UserRepository
	recorder  auditdomain.Recorder
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewKYCCommandService 创建认证命令服务实例
func NewKYCCommandService(
	kycs domain.KYCRepository,
	users domain.UserRepository,
	recorder auditdomain.Recorder,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *KYCCommandService {
	return &KYCCommandService{
		kycs:      kycs,
		users:     users,
		recorder:  recorder,
		publisher: publisher,
		metrics:   m,
	}
}

// Submit 提交认证：无记录时新建；被驳回的记录覆盖为重新待审
func (s *KYCCommandService) Submit(ctx context.Context, cmd SubmitKYCCommand) (*domain.KYC, error) {
	user, err := s.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	var kyc *domain.KYC
	err = s.kycs.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.kycs.GetByUserID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}

		switch {
		case existing == nil:
			kyc = domain.NewKYC(cmd.UserID, cmd.FullName, cmd.DocumentType, cmd.DocumentNumber, cmd.Address, cmd.Region)
		case existing.Status == domain.KYCRejected:
			if err := existing.Resubmit(cmd.FullName, cmd.DocumentType, cmd.DocumentNumber, cmd.Address, cmd.Region); err != nil {
				return err
			}
			kyc = existing
		default:
			return domain.ErrKYCAlreadySubmitted
		}

		if err := s.kycs.Save(txCtx, kyc); err != nil {
			return err
		}

		s.recorder.Record(txCtx, &auditdomain.AuditLog{
			ActorID:    cmd.UserID,
			Action:     auditdomain.ActionKYCSubmitted,
			EntityType: "KYC",
			EntityID:   kyc.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, domain.KYCSubmittedEventType, domain.KYCSubmittedEvent{
		UserID:    cmd.UserID,
		Timestamp: time.Now(),
	})

	return kyc, nil
}

// Review 审核认证：仅允许 PENDING -> APPROVED/REJECTED
func (s *KYCCommandService) Review(ctx context.Context, cmd ReviewKYCCommand) (*domain.KYC, error) {
	var kyc *domain.KYC
	err := s.kycs.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.kycs.GetByUserID(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrKYCNotFound
		}

		now := time.Now()
		if cmd.Approve {
			if err := existing.Approve(cmd.AdminID, now); err != nil {
				return err
			}
		} else {
			if err := existing.Reject(cmd.AdminID, cmd.Reason, now); err != nil {
				return err
			}
		}

		// 条件更新保证并发审核只有一个生效
		if err := s.kycs.SaveReview(txCtx, existing); err != nil {
			return err
		}

		action := auditdomain.ActionKYCApproved
		if !cmd.Approve {
			action = auditdomain.ActionKYCRejected
		}
		s.recorder.Record(txCtx, &auditdomain.AuditLog{
			ActorID:    cmd.UserID,
			AdminID:    &cmd.AdminID,
			Action:     action,
			EntityType: "KYC",
			EntityID:   existing.ID,
			Detail:     cmd.Reason,
		})

		kyc = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.KYCReviewsTotal.WithLabelValues(string(kyc.Status)).Inc()
	}

	s.publishEvent(ctx, domain.KYCReviewedEventType, domain.KYCReviewedEvent{
		UserID:    cmd.UserID,
		AdminID:   cmd.AdminID,
		Status:    kyc.Status,
		Reason:    cmd.Reason,
		Timestamp: time.Now(),
	})

	return kyc, nil
}

func (s *KYCCommandService) publishEvent(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, "", payload); err != nil {
		logger.Warn(ctx, "failed to publish kyc event", "topic", topic, "error", err)
	}
}
