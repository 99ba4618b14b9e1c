package rewards

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"github.com/jackyeh168/member_rewards/src/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

// ===========================
// 測試輔助
// ===========================

// testClock 可推進的時鐘
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingPublisher 記錄已發布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(event shared.DomainEvent) error {
	return p.PublishBatch([]shared.DomainEvent{event})
}

func (p *recordingPublisher) PublishBatch(events []shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

type testEnv struct {
	engine    *Engine
	db        *gorm.DB
	clock     *testClock
	logs      *observer.ObservedLogs
	publisher *recordingPublisher
}

// 測試專用任務
var testSeeds = []persistence.TaskSeed{
	{Code: "sign_in", Name: "簽到", Type: "daily", PointValue: 10, DailyLimit: 1, SortOrder: 10},
	{Code: "limited_share", Name: "限量分享", Type: "daily", PointValue: 5, TotalLimit: 2, SortOrder: 11},
	{Code: "retired_task", Name: "已下線任務", Type: "daily", PointValue: 5, DailyLimit: 1, Disabled: true, SortOrder: 12},
}

// newTestEnv 使用 SQLite in-memory 資料庫建構完整的積分引擎
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := persistence.Open(persistence.Config{Driver: persistence.DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, persistence.AutoMigrate(db))
	seeds := append(persistence.DefaultCatalogSeed(), testSeeds...)
	require.NoError(t, persistence.SeedCatalog(context.Background(), db, seeds))
	t.Cleanup(func() { _ = persistence.Close(db) })

	core, logs := observer.New(zapcore.DebugLevel)
	clock := newTestClock()
	publisher := &recordingPublisher{}

	engine := NewEngine(Dependencies{
		TxManager:   persistence.NewGORMTransactionManager(db),
		Accounts:    persistence.NewPointAccountRepository(db),
		Ledger:      persistence.NewLedgerRepository(db),
		Catalog:     persistence.NewTaskCatalog(db),
		Completions: persistence.NewCompletionTracker(db),
		Growth:      persistence.NewGrowthTracker(db),
		Events:      publisher,
		Logger:      zap.New(core),
		Location:    time.UTC,
		Now:         clock.Now,
	})

	return &testEnv{engine: engine, db: db, clock: clock, logs: logs, publisher: publisher}
}

func (env *testEnv) account(t *testing.T, memberID int64) *AccountView {
	t.Helper()
	view, err := env.engine.Account(context.Background(), memberID)
	require.NoError(t, err)
	return view
}

// seedBalance 通過贈送建立初始餘額
func (env *testEnv) seedBalance(t *testing.T, memberID, n int64) {
	t.Helper()
	res, err := env.engine.GiftPoints(context.Background(), AdminCommand{
		MemberID: memberID, Points: n, OperatorID: 1, OperatorName: "admin",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
}

// ===========================
// Mock TransactionManager
// ===========================

type MockTransactionManager struct {
	InTransactionCallCount int
	Err                    error
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(tx shared.TransactionContext) error) error {
	m.InTransactionCallCount++
	if m.Err != nil {
		return m.Err
	}
	return fn(nil)
}
