package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"github.com/jackyeh168/member_rewards/src/internal/domain/task"
	"go.uber.org/zap"
)

// ===========================
// RewardEngine
// ===========================

// Dependencies Engine 的協作者
//
// TxManager、Accounts、Ledger、Catalog、Completions、Growth 必填；
// 其餘為空時使用預設值（1:1 等級積分、丟棄事件、Nop 日誌、本地時區、time.Now）。
type Dependencies struct {
	TxManager   shared.TransactionManager
	Accounts    points.PointAccountRepository
	Ledger      points.LedgerRepository
	Catalog     task.Catalog
	Completions task.CompletionTracker
	Growth      task.GrowthTracker

	LevelPoints *points.LevelPointsCalculator
	Events      shared.EventPublisher
	Logger      *zap.Logger
	Location    *time.Location
	Now         func() time.Time
}

// Engine 積分引擎
//
// 每個寫操作都是一個事務：先鎖定會員帳戶行，再在鎖內完成所有校驗、
// 餘額更新、任務記錄與流水寫入。校驗失敗以 Result 返回（事務回滾），
// 基礎設施錯誤記錄日誌後以 error 返回。
type Engine struct {
	txManager   shared.TransactionManager
	accounts    points.PointAccountRepository
	ledger      points.LedgerRepository
	catalog     task.Catalog
	completions task.CompletionTracker
	growth      task.GrowthTracker
	levels      *points.LevelPointsCalculator
	events      shared.EventPublisher
	logger      *zap.Logger
	location    *time.Location
	now         func() time.Time
}

// NewEngine 創建積分引擎
func NewEngine(deps Dependencies) *Engine {
	e := &Engine{
		txManager:   deps.TxManager,
		accounts:    deps.Accounts,
		ledger:      deps.Ledger,
		catalog:     deps.Catalog,
		completions: deps.Completions,
		growth:      deps.Growth,
		levels:      deps.LevelPoints,
		events:      deps.Events,
		logger:      deps.Logger,
		location:    deps.Location,
		now:         deps.Now,
	}
	if e.levels == nil {
		e.levels = points.DefaultLevelPointsCalculator()
	}
	if e.events == nil {
		e.events = shared.NopEventPublisher{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.location == nil {
		e.location = time.Local
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.logger = e.logger.Named("rewards")
	return e
}

// outcome 事務內計算出的結果；account 非空時提交後發布其事件
type outcome struct {
	result  *Result
	account *points.PointAccount
}

// execute 在事務中執行 fn，並統一處理拒絕、錯誤、事件與日誌
func (e *Engine) execute(ctx context.Context, op string, fields []zap.Field, fn func(tx shared.TransactionContext) (*outcome, error)) (*Result, error) {
	var out *outcome
	err := e.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if err != nil {
		return e.fail(op, fields, err)
	}

	if out.account != nil {
		if events := out.account.PullEvents(); len(events) > 0 {
			if err := e.events.PublishBatch(events); err != nil {
				e.logger.Warn("publish domain events failed", withFields(fields, zap.String("operation", op), zap.Error(err))...)
			}
		}
	}

	res := out.result
	if res.Replayed {
		e.logger.Warn("duplicate order ignored", withFields(fields,
			zap.String("operation", op),
			zap.Int64("entry_id", res.EntryID),
		)...)
		return res, nil
	}

	e.logger.Info(op+" succeeded", withFields(fields,
		zap.Int64("points", res.Points),
		zap.Int64("available_points", res.AvailablePoints),
		zap.Int64("entry_id", res.EntryID),
	)...)
	return res, nil
}

// fail 業務拒絕轉為 Result；其他錯誤記錄後返回
func (e *Engine) fail(op string, fields []zap.Field, err error) (*Result, error) {
	if reason, domainErr, ok := rejectionOf(err); ok {
		e.logger.Warn(op+" rejected", withFields(fields,
			zap.String("reason", string(reason)),
			zap.Error(err),
		)...)
		return rejected(reason, domainErr), nil
	}

	e.logger.Error(op+" failed", withFields(fields, zap.Error(err))...)
	return nil, fmt.Errorf("%s: %w", op, err)
}

// appendEntry 驗證並寫入流水
func (e *Engine) appendEntry(ctx context.Context, tx shared.TransactionContext, draft points.LedgerEntry) (*points.LedgerEntry, error) {
	entry, err := points.NewLedgerEntry(draft)
	if err != nil {
		return nil, err
	}
	return e.ledger.Append(ctx, tx, entry)
}

func (e *Engine) today() (time.Time, task.Day) {
	now := e.now()
	return now, task.DayOf(now, e.location)
}

func withFields(base []zap.Field, extra ...zap.Field) []zap.Field {
	out := make([]zap.Field, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
