package application

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	auditdomain "github.com/investghanahub/backend/internal/audit/domain"
	"github.com/investghanahub/backend/internal/investment/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// fakeOpportunityRepo 用互斥锁模拟行锁：WithTx 串行执行，与数据库的
// SELECT ... FOR UPDATE 对额度校验的串行化效果一致。
type fakeOpportunityRepo struct {
	mu            sync.Mutex
	opportunities map[uint]*domain.Opportunity
	nextID        uint
}

func newFakeOpportunityRepo() *fakeOpportunityRepo {
	return &fakeOpportunityRepo{opportunities: make(map[uint]*domain.Opportunity), nextID: 1}
}

func (r *fakeOpportunityRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

func (r *fakeOpportunityRepo) Save(ctx context.Context, o *domain.Opportunity) error {
	if o.ID == 0 {
		o.ID = r.nextID
		r.nextID++
	}
	r.opportunities[o.ID] = o
	return nil
}

func (r *fakeOpportunityRepo) GetByID(ctx context.Context, id uint) (*domain.Opportunity, error) {
	return r.opportunities[id], nil
}

func (r *fakeOpportunityRepo) GetForUpdate(ctx context.Context, id uint) (*domain.Opportunity, error) {
	return r.opportunities[id], nil
}

func (r *fakeOpportunityRepo) List(ctx context.Context, status domain.OpportunityStatus, businessID uint, limit, offset int) ([]*domain.Opportunity, int64, error) {
	var out []*domain.Opportunity
	for _, o := range r.opportunities {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOpportunityRepo) ListOpenPastEnd(ctx context.Context, now time.Time, limit int) ([]*domain.Opportunity, error) {
	var out []*domain.Opportunity
	for _, o := range r.opportunities {
		if o.Status == domain.OpportunityOpen && now.After(o.EndDate) {
			out = append(out, o)
		}
	}
	return out, nil
}

// fakeInvestmentRepo 读操作返回快照副本，模拟数据库的非锁定读；
// SaveTransition 与数据库实现一样按存储中的状态做条件更新。
type fakeInvestmentRepo struct {
	mu          sync.Mutex
	investments map[uint]*domain.Investment
	nextID      uint
}

func newFakeInvestmentRepo() *fakeInvestmentRepo {
	return &fakeInvestmentRepo{investments: make(map[uint]*domain.Investment), nextID: 1}
}

func (r *fakeInvestmentRepo) Save(ctx context.Context, inv *domain.Investment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == 0 {
		inv.ID = r.nextID
		r.nextID++
	}
	r.investments[inv.ID] = inv
	return nil
}

func (r *fakeInvestmentRepo) SaveTransition(ctx context.Context, inv *domain.Investment, from domain.InvestmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.investments[inv.ID]
	if !ok || stored.Status != from {
		return domain.ErrInvestmentNotActive
	}
	stored.Status = inv.Status
	return nil
}

func (r *fakeInvestmentRepo) GetByID(ctx context.Context, id uint) (*domain.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.investments[id]
	if !ok {
		return nil, nil
	}
	snapshot := *stored
	return &snapshot, nil
}

func (r *fakeInvestmentRepo) ListByInvestor(ctx context.Context, investorID uint, limit, offset int) ([]*domain.Investment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Investment
	for _, inv := range r.investments {
		if inv.InvestorID == investorID {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeInvestmentRepo) ListMatured(ctx context.Context, now time.Time, limit int) ([]*domain.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Investment
	for _, inv := range r.investments {
		if inv.IsMature(now) {
			snapshot := *inv
			out = append(out, &snapshot)
		}
	}
	return out, nil
}

func (r *fakeInvestmentRepo) CountByInvestorSince(ctx context.Context, investorID uint, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, inv := range r.investments {
		if inv.InvestorID == investorID && !inv.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeInvestmentRepo) SummarizeActive(ctx context.Context, investorID uint) (*domain.PortfolioSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &domain.PortfolioSummary{TotalInvested: decimal.Zero, TotalExpectedReturn: decimal.Zero}
	for _, inv := range r.investments {
		if inv.InvestorID == investorID && inv.Status == domain.InvestmentActive {
			summary.TotalInvested = summary.TotalInvested.Add(inv.Amount)
			summary.TotalExpectedReturn = summary.TotalExpectedReturn.Add(inv.ExpectedReturn)
			summary.ActiveCount++
		}
	}
	return summary, nil
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions []*domain.Transaction
}

func (r *fakeTransactionRepo) Save(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *fakeTransactionRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*domain.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, int64(len(out)), nil
}

type fakeBusinessGateway struct {
	mu       sync.Mutex
	approved bool
	ownerID  uint
	funds    decimal.Decimal
}

func (g *fakeBusinessGateway) BusinessApproved(ctx context.Context, id uint) (bool, uint, error) {
	return g.approved, g.ownerID, nil
}

func (g *fakeBusinessGateway) AddFunds(ctx context.Context, id uint, amount decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.funds = g.funds.Add(amount)
	return nil
}

type fakeKYCGateway struct {
	approved map[uint]bool
}

func (g *fakeKYCGateway) KYCApproved(ctx context.Context, userID uint) (bool, error) {
	return g.approved[userID], nil
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

type investFixture struct {
	svc           *InvestCommandService
	opportunities *fakeOpportunityRepo
	investments   *fakeInvestmentRepo
	transactions  *fakeTransactionRepo
	business      *fakeBusinessGateway
	kyc           *fakeKYCGateway
	recorder      *fakeRecorder
	opportunity   *domain.Opportunity
}

func newInvestFixture(t *testing.T) *investFixture {
	t.Helper()
	now := time.Now()
	opportunity, err := domain.NewOpportunity(
		1, "Cocoa Export Expansion", "",
		d("1000"), d("100"), d("800"), d("0.15"),
		180, now.Add(-time.Hour), now.Add(30*24*time.Hour),
	)
	require.NoError(t, err)

	f := &investFixture{
		opportunities: newFakeOpportunityRepo(),
		investments:   newFakeInvestmentRepo(),
		transactions:  &fakeTransactionRepo{},
		business:      &fakeBusinessGateway{approved: true, ownerID: 1, funds: decimal.Zero},
		kyc:           &fakeKYCGateway{approved: map[uint]bool{1: true, 2: true, 3: true}},
		recorder:      &fakeRecorder{},
		opportunity:   opportunity,
	}
	require.NoError(t, f.opportunities.Save(context.Background(), opportunity))

	f.svc = NewInvestCommandService(
		f.opportunities, f.investments, f.transactions,
		f.business, f.kyc, f.recorder, nil, nil,
	)
	return f
}

func TestInvest(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("500")})
	require.NoError(t, err)

	assert.Equal(t, domain.InvestmentActive, inv.Status)
	assert.True(t, inv.ExpectedReturn.Equal(d("536.99")), "got %s", inv.ExpectedReturn)
	assert.True(t, f.opportunity.CurrentAmount.Equal(d("500")))
	assert.True(t, f.business.funds.Equal(d("500")))

	require.Len(t, f.transactions.transactions, 1)
	tx := f.transactions.transactions[0]
	assert.Equal(t, domain.TxInvestment, tx.Type)
	assert.NotEmpty(t, tx.Reference)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, auditdomain.ActionInvestmentAccepted, f.recorder.entries[0].Action)
}

func TestInvestRequiresKYC(t *testing.T) {
	f := newInvestFixture(t)

	_, err := f.svc.Invest(context.Background(), InvestCommand{InvestorID: 42, OpportunityID: f.opportunity.ID, Amount: d("500")})
	assert.ErrorIs(t, err, domain.ErrInvestorKYCRequired)
	assert.True(t, f.opportunity.CurrentAmount.IsZero())
}

func TestInvestCapacityRejectsWholeOrder(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("800")})
	require.NoError(t, err)

	// 剩余额度 200，投 300 整单拒绝，已募金额不变
	_, err = f.svc.Invest(ctx, InvestCommand{InvestorID: 2, OpportunityID: f.opportunity.ID, Amount: d("300")})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.True(t, f.opportunity.CurrentAmount.Equal(d("800")))
	assert.Equal(t, domain.OpportunityOpen, f.opportunity.Status)

	inv, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 2, OpportunityID: f.opportunity.ID, Amount: d("200")})
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentActive, inv.Status)
	assert.Equal(t, domain.OpportunityClosed, f.opportunity.Status)
}

func TestInvestBounds(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("50")})
	assert.ErrorIs(t, err, domain.ErrAmountBelowMinimum)

	_, err = f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("900")})
	assert.ErrorIs(t, err, domain.ErrAmountAboveMaximum)

	assert.True(t, f.opportunity.CurrentAmount.IsZero())
	assert.Empty(t, f.transactions.transactions)
}

func TestInvestExpiresPastEndDate(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()
	f.opportunity.EndDate = time.Now().Add(-time.Minute)

	_, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("500")})
	assert.ErrorIs(t, err, domain.ErrOpportunityNotOpen)

	// EXPIRED 状态随提交落库，而不是随拒绝一起回滚
	stored, err := f.opportunities.GetByID(ctx, f.opportunity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OpportunityExpired, stored.Status)
	assert.Empty(t, f.transactions.transactions)
}

func TestInvestUnknownOpportunity(t *testing.T) {
	f := newInvestFixture(t)

	_, err := f.svc.Invest(context.Background(), InvestCommand{InvestorID: 1, OpportunityID: 404, Amount: d("500")})
	assert.ErrorIs(t, err, domain.ErrOpportunityNotFound)
}

// 并发投资下已募金额不得超过目标额
func TestInvestConcurrentNeverOvershoots(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	var accepted int64
	var acceptedMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("100")})
			if err == nil {
				acceptedMu.Lock()
				accepted++
				acceptedMu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, accepted)
	assert.True(t, f.opportunity.CurrentAmount.Equal(d("1000")))
	assert.Equal(t, domain.OpportunityClosed, f.opportunity.Status)
	assert.True(t, f.business.funds.Equal(d("1000")))
}

func TestCancelInvestment(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("500")})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, CancelInvestmentCommand{InvestorID: 1, InvestmentID: inv.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.InvestmentCancelled, cancelled.Status)
	assert.True(t, f.opportunity.CurrentAmount.IsZero())
	assert.True(t, f.business.funds.IsZero())

	require.Len(t, f.transactions.transactions, 2)
	reversal := f.transactions.transactions[1]
	assert.Equal(t, domain.TxReversal, reversal.Type)
	assert.True(t, reversal.Amount.Equal(d("-500")))

	// 已撤销的投资不能再撤
	_, err = f.svc.Cancel(ctx, CancelInvestmentCommand{InvestorID: 1, InvestmentID: inv.ID})
	assert.ErrorIs(t, err, domain.ErrInvestmentNotActive)
}

func TestCancelForbiddenForOtherInvestor(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("500")})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, CancelInvestmentCommand{InvestorID: 2, InvestmentID: inv.ID})
	assert.ErrorIs(t, err, domain.ErrNotInvestor)
}

func TestCancelRequiresOpenOpportunity(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("800")})
	require.NoError(t, err)
	_, err = f.svc.Invest(ctx, InvestCommand{InvestorID: 2, OpportunityID: f.opportunity.ID, Amount: d("200")})
	require.NoError(t, err)
	require.Equal(t, domain.OpportunityClosed, f.opportunity.Status)

	_, err = f.svc.Cancel(ctx, CancelInvestmentCommand{InvestorID: 1, InvestmentID: inv.ID})
	assert.ErrorIs(t, err, domain.ErrOpportunityNotOpen)
}

// 结算任务读到快照后投资被撤销，条件更新必须放弃结算，不得二次入账
func TestSettleSkipsCancelledInvestment(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("500")})
	require.NoError(t, err)
	inv.MaturityDate = time.Now().Add(-time.Hour)

	matured, err := f.investments.ListMatured(ctx, time.Now(), sweepBatchSize)
	require.NoError(t, err)
	require.Len(t, matured, 1)
	stale := matured[0]

	_, err = f.svc.Cancel(ctx, CancelInvestmentCommand{InvestorID: 1, InvestmentID: inv.ID})
	require.NoError(t, err)

	job := NewMaturityJob(f.opportunities, f.investments, f.transactions, nil, slog.Default(), time.Hour, nil)
	err = job.settle(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrInvestmentNotActive)

	// 只有投资与冲正两笔流水，没有回款
	require.Len(t, f.transactions.transactions, 2)
	assert.Equal(t, domain.TxReversal, f.transactions.transactions[1].Type)
	assert.Equal(t, domain.InvestmentCancelled, inv.Status)
	assert.True(t, f.business.funds.IsZero())
}

func TestMaturitySweep(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Invest(ctx, InvestCommand{InvestorID: 1, OpportunityID: f.opportunity.ID, Amount: d("500")})
	require.NoError(t, err)

	// 人为把投资拨到已过期，把机会拨到已过截止
	inv.MaturityDate = time.Now().Add(-time.Hour)
	f.opportunity.EndDate = time.Now().Add(-time.Hour)

	job := NewMaturityJob(f.opportunities, f.investments, f.transactions, nil, slog.Default(), time.Hour, nil)
	job.run(ctx)

	assert.Equal(t, domain.InvestmentMatured, inv.Status)
	assert.Equal(t, domain.OpportunityExpired, f.opportunity.Status)

	require.Len(t, f.transactions.transactions, 2)
	ret := f.transactions.transactions[1]
	assert.Equal(t, domain.TxReturn, ret.Type)
	assert.True(t, ret.Amount.Equal(inv.ExpectedReturn))

	// 再跑一轮不应重复结算
	job.run(ctx)
	assert.Len(t, f.transactions.transactions, 2)
}
