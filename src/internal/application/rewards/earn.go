package rewards

import (
	"context"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"github.com/jackyeh168/member_rewards/src/internal/domain/task"
	"go.uber.org/zap"
)

// ===========================
// ProcessTaskEarn
// ===========================

// ProcessTaskEarn 完成任務領取積分
//
// 校驗順序：任務存在 → 種類規則（日常：每日上限、bizID 去重、總上限；成長：未完成）。
// 全部在帳戶行鎖內進行，同一會員的並發請求依序判斷。
func (e *Engine) ProcessTaskEarn(ctx context.Context, cmd EarnCommand) (*Result, error) {
	const op = "process task earn"
	fields := []zap.Field{
		zap.Int64("member_id", cmd.MemberID),
		zap.String("task_code", cmd.TaskCode),
		zap.String("biz_id", cmd.BizID),
	}

	memberID, err := points.NewMemberID(cmd.MemberID)
	if err != nil {
		return e.fail(op, fields, err)
	}
	now, day := e.today()

	return e.execute(ctx, op, fields, func(tx shared.TransactionContext) (*outcome, error) {
		def, err := e.catalog.GetByCode(ctx, tx, cmd.TaskCode, now)
		if err != nil {
			return nil, err
		}
		amount, err := points.NewPositivePointsAmount(def.PointValue)
		if err != nil {
			return nil, err
		}
		strategy := e.strategyFor(def)

		account, err := e.accounts.LockForUpdate(ctx, tx, memberID)
		if err != nil {
			return nil, err
		}

		req := earnRequest{memberID: memberID, def: def, bizID: cmd.BizID, day: day, at: now}
		if err := strategy.check(ctx, tx, req); err != nil {
			return nil, err
		}

		before := account.AvailablePoints().Value()
		if err := account.AddPoints(amount, e.levels.Calculate(amount), now); err != nil {
			return nil, err
		}
		if err := e.accounts.Update(ctx, tx, account); err != nil {
			return nil, err
		}
		if err := strategy.record(ctx, tx, req); err != nil {
			return nil, err
		}

		entry, err := e.appendEntry(ctx, tx, points.LedgerEntry{
			MemberID:     memberID,
			ChangeType:   points.ChangeTypeEarn,
			ChangeValue:  amount.Value(),
			BeforePoints: before,
			AfterPoints:  account.AvailablePoints().Value(),
			SourceType:   points.SourceTypeTask,
			SourceID:     cmd.BizID,
			TaskCode:     def.Code,
			Title:        orDefault(def.Name, def.Code),
			Remark:       strategy.remark(),
			ClientIP:     cmd.ClientIP,
			CreatedAt:    now,
		})
		if err != nil {
			return nil, err
		}

		return &outcome{
			result: &Result{
				Success:         true,
				Points:          amount.Value(),
				AvailablePoints: account.AvailablePoints().Value(),
				EntryID:         entry.ID,
			},
			account: account,
		}, nil
	})
}

// ===========================
// 任務種類策略
// ===========================

type earnRequest struct {
	memberID points.MemberID
	def      *task.Definition
	bizID    string
	day      task.Day
	at       time.Time
}

// earnStrategy 每種任務的領取規則
type earnStrategy interface {
	check(ctx context.Context, tx shared.TransactionContext, req earnRequest) error
	record(ctx context.Context, tx shared.TransactionContext, req earnRequest) error
	remark() string
}

func (e *Engine) strategyFor(def *task.Definition) earnStrategy {
	switch kind := def.Kind.(type) {
	case task.Growth:
		return growthStrategy{growth: e.growth, completions: e.completions}
	case task.Daily:
		return dailyStrategy{kind: kind, completions: e.completions}
	default:
		// Kind 是封閉變體，持久化層只會建構 Daily 或 Growth
		panic("rewards: unknown task kind")
	}
}

type dailyStrategy struct {
	kind        task.Daily
	completions task.CompletionTracker
}

func (s dailyStrategy) check(ctx context.Context, tx shared.TransactionContext, req earnRequest) error {
	member := req.memberID.Value()

	today, err := s.completions.TodayCount(ctx, tx, member, req.def.Code, req.day)
	if err != nil {
		return err
	}
	if s.kind.DailyLimitReached(today) {
		return task.ErrDailyLimitExceeded.WithContext(
			"task_code", req.def.Code,
			"today_count", today,
			"daily_limit", s.kind.DailyLimit,
		)
	}

	if req.bizID != "" {
		done, err := s.completions.HasCompletedBiz(ctx, tx, member, req.def.Code, req.bizID)
		if err != nil {
			return err
		}
		if done {
			return task.ErrDuplicateBiz.WithContext("task_code", req.def.Code, "biz_id", req.bizID)
		}
	}

	if s.kind.TotalLimit > 0 {
		total, err := s.completions.TotalCount(ctx, tx, member, req.def.Code)
		if err != nil {
			return err
		}
		if s.kind.TotalLimitReached(total) {
			return task.ErrTotalLimitExceeded.WithContext(
				"task_code", req.def.Code,
				"total_count", total,
				"total_limit", s.kind.TotalLimit,
			)
		}
	}
	return nil
}

func (s dailyStrategy) record(ctx context.Context, tx shared.TransactionContext, req earnRequest) error {
	_, err := s.completions.Record(ctx, tx, recordParams(req))
	return err
}

func (dailyStrategy) remark() string { return "完成日常任務獲得積分" }

type growthStrategy struct {
	growth      task.GrowthTracker
	completions task.CompletionTracker
}

func (s growthStrategy) check(ctx context.Context, tx shared.TransactionContext, req earnRequest) error {
	done, err := s.growth.IsCompleted(ctx, tx, req.memberID.Value(), req.def.Code)
	if err != nil {
		return err
	}
	if done {
		return task.ErrAlreadyCompleted.WithContext("task_code", req.def.Code)
	}
	return nil
}

func (s growthStrategy) record(ctx context.Context, tx shared.TransactionContext, req earnRequest) error {
	state, err := s.growth.GetOrCreate(ctx, tx, req.memberID.Value(), req.def)
	if err != nil {
		return err
	}
	if err := s.growth.MarkCompleted(ctx, tx, state, req.def.PointValue, req.at); err != nil {
		return err
	}
	_, err = s.completions.Record(ctx, tx, recordParams(req))
	return err
}

func (growthStrategy) remark() string { return "完成成長任務獲得積分" }

func recordParams(req earnRequest) task.RecordParams {
	return task.RecordParams{
		MemberID:   req.memberID.Value(),
		Definition: req.def,
		PointValue: req.def.PointValue,
		BizID:      req.bizID,
		Day:        req.day,
		At:         req.at,
	}
}
