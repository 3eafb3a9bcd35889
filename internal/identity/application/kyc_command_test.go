package application

import (
	"context"
	"sync"
	"testing"

	auditdomain "github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/internal/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*domain.User)}
}

func (r *fakeUserRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

func (r *fakeUserRepo) Save(ctx context.Context, user *domain.User) error {
	if user.ID == 0 {
		user.ID = uint(len(r.users) + 1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.users[id], nil
}

type fakeKYCRepo struct {
	mu      sync.Mutex
	records map[uint]*domain.KYC
	nextID  uint
}

func newFakeKYCRepo() *fakeKYCRepo {
	return &fakeKYCRepo{records: make(map[uint]*domain.KYC), nextID: 1}
}

func (r *fakeKYCRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

func (r *fakeKYCRepo) Save(ctx context.Context, kyc *domain.KYC) error {
	if kyc.ID == 0 {
		kyc.ID = r.nextID
		r.nextID++
	}
	r.records[kyc.UserID] = kyc
	return nil
}

func (r *fakeKYCRepo) GetByUserID(ctx context.Context, userID uint) (*domain.KYC, error) {
	return r.records[userID], nil
}

func (r *fakeKYCRepo) SaveReview(ctx context.Context, kyc *domain.KYC) error {
	existing, ok := r.records[kyc.UserID]
	if !ok || existing.ID != kyc.ID {
		return domain.ErrKYCNotPending
	}
	r.records[kyc.UserID] = kyc
	return nil
}

func (r *fakeKYCRepo) ListByStatus(ctx context.Context, status domain.KYCStatus, limit, offset int) ([]*domain.KYC, int64, error) {
	var out []*domain.KYC
	for _, k := range r.records {
		if status == "" || k.Status == status {
			out = append(out, k)
		}
	}
	return out, int64(len(out)), nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []*auditdomain.AuditLog
}

func (r *fakeRecorder) Record(ctx context.Context, entry *auditdomain.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *fakePublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func newKYCService(t *testing.T) (*KYCCommandService, *fakeUserRepo, *fakeKYCRepo, *fakeRecorder) {
	t.Helper()
	users := newFakeUserRepo()
	kycs := newFakeKYCRepo()
	recorder := &fakeRecorder{}
	svc := NewKYCCommandService(kycs, users, recorder, &fakePublisher{}, nil)

	user := domain.NewUser("ama@example.com", "hash", "Ama Mensah", domain.RoleInvestor)
	require.NoError(t, users.Save(context.Background(), user))
	return svc, users, kycs, recorder
}

func TestSubmitKYC(t *testing.T) {
	svc, _, _, recorder := newKYCService(t)
	ctx := context.Background()

	kyc, err := svc.Submit(ctx, SubmitKYCCommand{
		UserID:         1,
		FullName:       "Ama Mensah",
		DocumentType:   "GHANA_CARD",
		DocumentNumber: "GHA-000000001-2",
		Address:        "Accra",
		Region:         "Greater Accra",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KYCPending, kyc.Status)
	require.Len(t, recorder.entries, 1)
	assert.Equal(t, auditdomain.ActionKYCSubmitted, recorder.entries[0].Action)
}

func TestSubmitKYCDuplicate(t *testing.T) {
	svc, _, _, _ := newKYCService(t)
	ctx := context.Background()
	cmd := SubmitKYCCommand{UserID: 1, FullName: "Ama Mensah", DocumentType: "GHANA_CARD", DocumentNumber: "GHA-000000001-2"}

	_, err := svc.Submit(ctx, cmd)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, cmd)
	assert.ErrorIs(t, err, domain.ErrKYCAlreadySubmitted)
}

func TestSubmitKYCUnknownUser(t *testing.T) {
	svc, _, _, _ := newKYCService(t)

	_, err := svc.Submit(context.Background(), SubmitKYCCommand{UserID: 42})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestReviewKYCApprove(t *testing.T) {
	svc, _, _, recorder := newKYCService(t)
	ctx := context.Background()
	_, err := svc.Submit(ctx, SubmitKYCCommand{UserID: 1, FullName: "Ama Mensah", DocumentType: "GHANA_CARD", DocumentNumber: "GHA-000000001-2"})
	require.NoError(t, err)

	kyc, err := svc.Review(ctx, ReviewKYCCommand{AdminID: 9, UserID: 1, Approve: true})
	require.NoError(t, err)
	assert.Equal(t, domain.KYCApproved, kyc.Status)
	require.Len(t, recorder.entries, 2)
	assert.Equal(t, auditdomain.ActionKYCApproved, recorder.entries[1].Action)

	// 已审核的记录不能再审
	_, err = svc.Review(ctx, ReviewKYCCommand{AdminID: 9, UserID: 1, Approve: false, Reason: "late"})
	assert.ErrorIs(t, err, domain.ErrKYCNotPending)
}

func TestReviewKYCRejectThenResubmit(t *testing.T) {
	svc, _, _, _ := newKYCService(t)
	ctx := context.Background()
	cmd := SubmitKYCCommand{UserID: 1, FullName: "Ama Mensah", DocumentType: "GHANA_CARD", DocumentNumber: "GHA-000000001-2"}
	_, err := svc.Submit(ctx, cmd)
	require.NoError(t, err)

	_, err = svc.Review(ctx, ReviewKYCCommand{AdminID: 9, UserID: 1, Approve: false})
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	kyc, err := svc.Review(ctx, ReviewKYCCommand{AdminID: 9, UserID: 1, Approve: false, Reason: "document unreadable"})
	require.NoError(t, err)
	assert.Equal(t, domain.KYCRejected, kyc.Status)

	// 被驳回后重新提交覆盖原记录并回到待审核
	kyc, err = svc.Submit(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, domain.KYCPending, kyc.Status)
	assert.Empty(t, kyc.RejectionReason)
}

func TestReviewKYCNotFound(t *testing.T) {
	svc, _, _, _ := newKYCService(t)

	_, err := svc.Review(context.Background(), ReviewKYCCommand{AdminID: 9, UserID: 1, Approve: true})
	assert.ErrorIs(t, err, domain.ErrKYCNotFound)
}
