package rewards

import (
	"context"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"go.uber.org/zap"
)

// 去重鍵前綴
const (
	opConsume  = "consume"
	opFreeze   = "freeze"
	opUnfreeze = "unfreeze"
)

// ProcessConsume 消費積分
func (e *Engine) ProcessConsume(ctx context.Context, cmd ConsumeCommand) (*Result, error) {
	const op = "process consume"
	fields := []zap.Field{
		zap.Int64("member_id", cmd.MemberID),
		zap.Int64("points", cmd.Points),
		zap.String("order_no", cmd.OrderNo),
	}

	memberID, amount, err := parseMemberAndAmount(cmd.MemberID, cmd.Points)
	if err != nil {
		return e.fail(op, fields, err)
	}
	now := e.now()
	key := points.IdempotencyKey(opConsume, memberID, cmd.OrderNo)

	return e.execute(ctx, op, fields, func(tx shared.TransactionContext) (*outcome, error) {
		account, err := e.accounts.LockForUpdate(ctx, tx, memberID)
		if err != nil {
			return nil, err
		}
		intent := orderIntent{changeType: points.ChangeTypeUse, changeValue: -amount.Value()}
		if replay, err := e.replay(ctx, tx, key, account, intent); replay != nil || err != nil {
			return replay, err
		}

		before := account.AvailablePoints().Value()
		if err := account.UsePoints(amount, now); err != nil {
			return nil, err
		}
		if err := e.accounts.Update(ctx, tx, account); err != nil {
			return nil, err
		}

		entry, err := e.appendEntry(ctx, tx, points.LedgerEntry{
			MemberID:       memberID,
			ChangeType:     points.ChangeTypeUse,
			ChangeValue:    -amount.Value(),
			BeforePoints:   before,
			AfterPoints:    account.AvailablePoints().Value(),
			SourceType:     points.SourceTypeConsume,
			SourceID:       cmd.OrderNo,
			OrderNo:        cmd.OrderNo,
			Title:          orDefault(cmd.Title, "積分消費"),
			Remark:         cmd.Remark,
			ClientIP:       cmd.ClientIP,
			IdempotencyKey: key,
			CreatedAt:      now,
		})
		if err != nil {
			return nil, err
		}
		return succeeded(account, amount, entry), nil
	})
}

// FreezePoints 凍結積分：可用 → 凍結
func (e *Engine) FreezePoints(ctx context.Context, cmd FreezeCommand) (*Result, error) {
	const op = "freeze points"
	fields := []zap.Field{
		zap.Int64("member_id", cmd.MemberID),
		zap.Int64("points", cmd.Points),
		zap.String("order_no", cmd.OrderNo),
	}

	memberID, amount, err := parseMemberAndAmount(cmd.MemberID, cmd.Points)
	if err != nil {
		return e.fail(op, fields, err)
	}
	now := e.now()
	key := points.IdempotencyKey(opFreeze, memberID, cmd.OrderNo)

	return e.execute(ctx, op, fields, func(tx shared.TransactionContext) (*outcome, error) {
		account, err := e.accounts.LockForUpdate(ctx, tx, memberID)
		if err != nil {
			return nil, err
		}
		intent := orderIntent{changeType: points.ChangeTypeFreeze, changeValue: -amount.Value(), frozenChange: amount.Value()}
		if replay, err := e.replay(ctx, tx, key, account, intent); replay != nil || err != nil {
			return replay, err
		}

		before := account.AvailablePoints().Value()
		if err := account.FreezePoints(amount, now); err != nil {
			return nil, err
		}
		if err := e.accounts.Update(ctx, tx, account); err != nil {
			return nil, err
		}

		entry, err := e.appendEntry(ctx, tx, points.LedgerEntry{
			MemberID:       memberID,
			ChangeType:     points.ChangeTypeFreeze,
			ChangeValue:    -amount.Value(),
			FrozenChange:   amount.Value(),
			BeforePoints:   before,
			AfterPoints:    account.AvailablePoints().Value(),
			SourceType:     points.SourceTypeConsume,
			SourceID:       cmd.OrderNo,
			OrderNo:        cmd.OrderNo,
			Title:          orDefault(cmd.Title, "積分凍結"),
			Remark:         "積分凍結",
			ClientIP:       cmd.ClientIP,
			IdempotencyKey: key,
			CreatedAt:      now,
		})
		if err != nil {
			return nil, err
		}
		return succeeded(account, amount, entry), nil
	})
}

// UnfreezePoints 解凍積分
//
// 返還時記為 解凍/+n/退款；轉為已使用時可用積分不變，記為 使用/0/消費，
// 扣除的凍結數量記在 FrozenChange。
func (e *Engine) UnfreezePoints(ctx context.Context, cmd UnfreezeCommand) (*Result, error) {
	const op = "unfreeze points"
	fields := []zap.Field{
		zap.Int64("member_id", cmd.MemberID),
		zap.Int64("points", cmd.Points),
		zap.Bool("to_available", cmd.ToAvailable),
		zap.String("order_no", cmd.OrderNo),
	}

	memberID, amount, err := parseMemberAndAmount(cmd.MemberID, cmd.Points)
	if err != nil {
		return e.fail(op, fields, err)
	}
	now := e.now()
	key := points.IdempotencyKey(opUnfreeze, memberID, cmd.OrderNo)

	return e.execute(ctx, op, fields, func(tx shared.TransactionContext) (*outcome, error) {
		account, err := e.accounts.LockForUpdate(ctx, tx, memberID)
		if err != nil {
			return nil, err
		}
		intent := orderIntent{changeType: points.ChangeTypeUse, frozenChange: -amount.Value()}
		if cmd.ToAvailable {
			intent.changeType = points.ChangeTypeUnfreeze
			intent.changeValue = amount.Value()
		}
		if replay, err := e.replay(ctx, tx, key, account, intent); replay != nil || err != nil {
			return replay, err
		}

		before := account.AvailablePoints().Value()
		if err := account.UnfreezePoints(amount, cmd.ToAvailable, now); err != nil {
			return nil, err
		}
		if err := e.accounts.Update(ctx, tx, account); err != nil {
			return nil, err
		}

		draft := points.LedgerEntry{
			MemberID:       memberID,
			ChangeType:     points.ChangeTypeUse,
			ChangeValue:    0,
			FrozenChange:   -amount.Value(),
			BeforePoints:   before,
			AfterPoints:    account.AvailablePoints().Value(),
			SourceType:     points.SourceTypeConsume,
			SourceID:       cmd.OrderNo,
			OrderNo:        cmd.OrderNo,
			Title:          orDefault(cmd.Title, "積分解凍"),
			Remark:         "凍結積分扣除",
			ClientIP:       cmd.ClientIP,
			IdempotencyKey: key,
			CreatedAt:      now,
		}
		if cmd.ToAvailable {
			draft.ChangeType = points.ChangeTypeUnfreeze
			draft.ChangeValue = amount.Value()
			draft.SourceType = points.SourceTypeRefund
			draft.Remark = "積分解凍返還"
		}

		entry, err := e.appendEntry(ctx, tx, draft)
		if err != nil {
			return nil, err
		}
		return succeeded(account, amount, entry), nil
	})
}

// orderIntent 訂單請求對應的流水變動，重複請求必須與已入帳的一致
type orderIntent struct {
	changeType   points.ChangeType
	changeValue  int64
	frozenChange int64
}

func (i orderIntent) matches(entry *points.LedgerEntry) bool {
	return entry.ChangeType == i.changeType &&
		entry.ChangeValue == i.changeValue &&
		entry.FrozenChange == i.frozenChange
}

// replay 同一訂單已處理過時返回重放結果，不做任何修改
//
// 訂單號相同但變動不同（數量或解凍去向）時返回 ErrOrderConflict。
func (e *Engine) replay(ctx context.Context, tx shared.TransactionContext, key string, account *points.PointAccount, intent orderIntent) (*outcome, error) {
	if key == "" {
		return nil, nil
	}
	existing, err := e.ledger.FindByIdempotencyKey(ctx, tx, key)
	if err != nil || existing == nil {
		return nil, err
	}
	if !intent.matches(existing) {
		return nil, points.ErrOrderConflict.WithContext(
			"idempotency_key", key,
			"entry_id", existing.ID,
			"recorded_change", existing.ChangeValue,
			"recorded_frozen_change", existing.FrozenChange,
		)
	}
	return &outcome{
		result: &Result{
			Success:         true,
			Replayed:        true,
			Points:          entryPoints(existing),
			AvailablePoints: account.AvailablePoints().Value(),
			EntryID:         existing.ID,
		},
	}, nil
}

// entryPoints 流水涉及的積分數量；凍結類流水以凍結變動為準
func entryPoints(entry *points.LedgerEntry) int64 {
	n := entry.ChangeValue
	if entry.FrozenChange != 0 {
		n = entry.FrozenChange
	}
	if n < 0 {
		return -n
	}
	return n
}

func succeeded(account *points.PointAccount, amount points.PointsAmount, entry *points.LedgerEntry) *outcome {
	return &outcome{
		result: &Result{
			Success:         true,
			Points:          amount.Value(),
			AvailablePoints: account.AvailablePoints().Value(),
			EntryID:         entry.ID,
		},
		account: account,
	}
}

func parseMemberAndAmount(member, value int64) (points.MemberID, points.PointsAmount, error) {
	memberID, err := points.NewMemberID(member)
	if err != nil {
		return 0, points.PointsAmount{}, err
	}
	amount, err := points.NewPositivePointsAmount(value)
	if err != nil {
		return 0, points.PointsAmount{}, err
	}
	return memberID, amount, nil
}
