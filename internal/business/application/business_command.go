package application

import (
	"context"
	"time"

	auditdomain "github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/internal/business/domain"
	"github.com/investghanahub/backend/pkg/logger"
)

// CreateBusinessCommand 创建企业命令
type CreateBusinessCommand struct {
	OwnerID     uint
	Name        string
	Description string
	Industry    string
	Stage       string
	Region      string
}

// UpdateBusinessCommand 修改企业命令
type UpdateBusinessCommand struct {
	BusinessID  uint
	OwnerID     uint
	Name        string
	Description string
	Industry    string
	Stage       string
	Region      string
}

// ReviewBusinessCommand 审核企业命令
type ReviewBusinessCommand struct {
	AdminID    uint
	BusinessID uint
	Approve    bool
	Reason     string
}

// BusinessCommandService 企业命令服务
type BusinessCommandService struct {
	businesses domain.BusinessRepository
	kyc        domain.KYCGateway
	recorder   auditdomain.Recorder
	publisher  domain.EventPublisher
}

// NewBusinessCommandService 创建企业命令服务实例
func NewBusinessCommandService(
	businesses domain.BusinessRepository,
	kyc domain.KYCGateway,
	recorder auditdomain.Recorder,
	publisher domain.EventPublisher,
) *BusinessCommandService {
	return &BusinessCommandService{
		businesses: businesses,
		kyc:        kyc,
		recorder:   recorder,
		publisher:  publisher,
	}
}

// Create 创建企业档案，前置条件是企业主已通过实名认证
func (s *BusinessCommandService) Create(ctx context.Context, cmd CreateBusinessCommand) (*domain.Business, error) {
	approved, err := s.kyc.KYCApproved(ctx, cmd.OwnerID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, domain.ErrOwnerKYCRequired
	}

	business, err := domain.NewBusiness(cmd.OwnerID, cmd.Name, cmd.Description, cmd.Industry, cmd.Stage, cmd.Region)
	if err != nil {
		return nil, err
	}

	err = s.businesses.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.businesses.Save(txCtx, business); err != nil {
			return err
		}
		s.recorder.Record(txCtx, &auditdomain.AuditLog{
			ActorID:    cmd.OwnerID,
			Action:     auditdomain.ActionBusinessCreated,
			EntityType: "BUSINESS",
			EntityID:   business.ID,
			Detail:     business.Name,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, domain.BusinessCreatedEventType, domain.BusinessCreatedEvent{
		BusinessID: business.ID,
		OwnerID:    business.OwnerID,
		Name:       business.Name,
		Timestamp:  time.Now(),
	})

	return business, nil
}

// Update 企业主修改档案，修改后档案回到待审核状态
func (s *BusinessCommandService) Update(ctx context.Context, cmd UpdateBusinessCommand) (*domain.Business, error) {
	var business *domain.Business
	err := s.businesses.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.businesses.GetByID(txCtx, cmd.BusinessID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrBusinessNotFound
		}
		if !existing.IsOwnedBy(cmd.OwnerID) {
			return domain.ErrNotOwner
		}

		if err := existing.ApplyUpdate(cmd.Name, cmd.Description, cmd.Industry, cmd.Stage, cmd.Region); err != nil {
			return err
		}
		if err := s.businesses.Save(txCtx, existing); err != nil {
			return err
		}

		s.recorder.Record(txCtx, &auditdomain.AuditLog{
			ActorID:    cmd.OwnerID,
			Action:     auditdomain.ActionBusinessUpdated,
			EntityType: "BUSINESS",
			EntityID:   existing.ID,
		})
		business = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return business, nil
}

// Review 审核企业档案，仅允许 PENDING -> APPROVED/REJECTED
func (s *BusinessCommandService) Review(ctx context.Context, cmd ReviewBusinessCommand) (*domain.Business, error) {
	var business *domain.Business
	err := s.businesses.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.businesses.GetByID(txCtx, cmd.BusinessID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrBusinessNotFound
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
		if err := s.businesses.SaveReview(txCtx, existing); err != nil {
			return err
		}

		action := auditdomain.ActionBusinessApproved
		if !cmd.Approve {
			action = auditdomain.ActionBusinessRejected
		}
		s.recorder.Record(txCtx, &auditdomain.AuditLog{
			ActorID:    existing.OwnerID,
			AdminID:    &cmd.AdminID,
			Action:     action,
			EntityType: "BUSINESS",
			EntityID:   existing.ID,
			Detail:     cmd.Reason,
		})
		business = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	topic := domain.BusinessApprovedEventType
	if !cmd.Approve {
		topic = domain.BusinessRejectedEventType
	}
	s.publishEvent(ctx, topic, domain.BusinessReviewedEvent{
		BusinessID: business.ID,
		AdminID:    cmd.AdminID,
		Status:     business.Status,
		Reason:     cmd.Reason,
		Timestamp:  time.Now(),
	})

	return business, nil
}

func (s *BusinessCommandService) publishEvent(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, "", payload); err != nil {
		logger.Warn(ctx, "failed to publish business event", "topic", topic, "error", err)
	}
}
