package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/investghanahub/backend/internal/audit/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[uint]*domain.FraudAlert
	nextID uint
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make(map[uint]*domain.FraudAlert), nextID: 1}
}

func (r *fakeAlertRepo) Save(ctx context.Context, alert *domain.FraudAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if alert.ID == 0 {
		alert.ID = r.nextID
		r.nextID++
	}
	r.alerts[alert.ID] = alert
	return nil
}

func (r *fakeAlertRepo) Get(ctx context.Context, id uint) (*domain.FraudAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alerts[id], nil
}

func (r *fakeAlertRepo) Update(ctx context.Context, alert *domain.FraudAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[alert.ID] = alert
	return nil
}

func (r *fakeAlertRepo) ListByStatus(ctx context.Context, status domain.FraudAlertStatus, limit, offset int) ([]*domain.FraudAlert, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.FraudAlert
	for _, a := range r.alerts {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

type fakeActivity struct {
	count int64
}

func (a *fakeActivity) RecentInvestmentCount(ctx context.Context, userID uint, since time.Time) (int64, error) {
	return a.count, nil
}

type fakeRecorder struct {
	entries []*domain.AuditLog
}

func (r *fakeRecorder) Record(ctx context.Context, entry *domain.AuditLog) {
	r.entries = append(r.entries, entry)
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func scoreCmd(amount, target string) ScoreInvestmentCommand {
	return ScoreInvestmentCommand{
		InvestmentID:  1,
		InvestorID:    7,
		OpportunityID: 2,
		Amount:        d(amount),
		TargetAmount:  d(target),
		OccurredAt:    time.Now(),
	}
}

func TestScoreInvestmentBelowThreshold(t *testing.T) {
	alerts := newFakeAlertRepo()
	svc := NewFraudService(alerts, &fakeActivity{count: 1}, nil, nil)

	// 小额低频，不触发警报
	require.NoError(t, svc.ScoreInvestment(context.Background(), scoreCmd("100", "10000")))
	assert.Empty(t, alerts.alerts)
}

func TestScoreInvestmentLargeShareAlone(t *testing.T) {
	alerts := newFakeAlertRepo()
	svc := NewFraudService(alerts, &fakeActivity{count: 0}, nil, nil)

	// 单笔过半只有 0.5 分，未达阈值
	require.NoError(t, svc.ScoreInvestment(context.Background(), scoreCmd("6000", "10000")))
	assert.Empty(t, alerts.alerts)
}

func TestScoreInvestmentRaisesAlert(t *testing.T) {
	alerts := newFakeAlertRepo()
	svc := NewFraudService(alerts, &fakeActivity{count: 9}, nil, nil)

	// 大额 + 高频叠加超过阈值
	require.NoError(t, svc.ScoreInvestment(context.Background(), scoreCmd("6000", "10000")))
	require.Len(t, alerts.alerts, 1)

	alert := alerts.alerts[1]
	assert.Equal(t, uint(7), alert.UserID)
	assert.Equal(t, domain.FraudAlertPending, alert.Status)
	assert.InDelta(t, 0.9, alert.RiskScore, 0.001)
	assert.Contains(t, alert.Reason, "within 24h")
}

func TestResolveAlert(t *testing.T) {
	alerts := newFakeAlertRepo()
	recorder := &fakeRecorder{}
	svc := NewFraudService(alerts, &fakeActivity{count: 9}, recorder, nil)
	ctx := context.Background()

	require.NoError(t, svc.ScoreInvestment(ctx, scoreCmd("6000", "10000")))

	alert, err := svc.Resolve(ctx, 9, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FraudAlertResolved, alert.Status)
	require.Len(t, recorder.entries, 1)
	assert.Equal(t, domain.ActionFraudAlertResolved, recorder.entries[0].Action)

	// 已处理的警报不能重复处理
	_, err = svc.Resolve(ctx, 9, 1)
	assert.ErrorIs(t, err, domain.ErrAlertNotPending)
}

func TestResolveAlertNotFound(t *testing.T) {
	svc := NewFraudService(newFakeAlertRepo(), &fakeActivity{}, nil, nil)

	_, err := svc.Resolve(context.Background(), 9, 404)
	assert.ErrorIs(t, err, domain.ErrAlertNotFound)
}
