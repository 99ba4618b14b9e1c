package rewards

import (
	"context"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"go.uber.org/zap"
)

// GiftPoints 管理員贈送積分（同時計入等級積分）
func (e *Engine) GiftPoints(ctx context.Context, cmd AdminCommand) (*Result, error) {
	const op = "gift points"
	fields := adminFields(cmd)

	memberID, amount, err := parseMemberAndAmount(cmd.MemberID, cmd.Points)
	if err != nil {
		return e.fail(op, fields, err)
	}
	now := e.now()

	return e.execute(ctx, op, fields, func(tx shared.TransactionContext) (*outcome, error) {
		account, err := e.accounts.LockForUpdate(ctx, tx, memberID)
		if err != nil {
			return nil, err
		}

		before := account.AvailablePoints().Value()
		if err := account.AddPoints(amount, e.levels.Calculate(amount), now); err != nil {
			return nil, err
		}
		if err := e.accounts.Update(ctx, tx, account); err != nil {
			return nil, err
		}

		entry, err := e.appendEntry(ctx, tx, points.LedgerEntry{
			MemberID:     memberID,
			ChangeType:   points.ChangeTypeEarn,
			ChangeValue:  amount.Value(),
			BeforePoints: before,
			AfterPoints:  account.AvailablePoints().Value(),
			SourceType:   points.SourceTypeGift,
			Title:        orDefault(cmd.Title, "系統贈送"),
			Remark:       cmd.Remark,
			OperatorID:   cmd.OperatorID,
			OperatorName: cmd.OperatorName,
			CreatedAt:    now,
		})
		if err != nil {
			return nil, err
		}
		return succeeded(account, amount, entry), nil
	})
}

// DeductPoints 管理員扣除積分
func (e *Engine) DeductPoints(ctx context.Context, cmd AdminCommand) (*Result, error) {
	const op = "deduct points"
	fields := adminFields(cmd)

	memberID, amount, err := parseMemberAndAmount(cmd.MemberID, cmd.Points)
	if err != nil {
		return e.fail(op, fields, err)
	}
	now := e.now()

	return e.execute(ctx, op, fields, func(tx shared.TransactionContext) (*outcome, error) {
		account, err := e.accounts.LockForUpdate(ctx, tx, memberID)
		if err != nil {
			return nil, err
		}

		before := account.AvailablePoints().Value()
		if err := account.DeductPoints(amount, now); err != nil {
			return nil, err
		}
		if err := e.accounts.Update(ctx, tx, account); err != nil {
			return nil, err
		}

		entry, err := e.appendEntry(ctx, tx, points.LedgerEntry{
			MemberID:     memberID,
			ChangeType:   points.ChangeTypeAdjust,
			ChangeValue:  -amount.Value(),
			BeforePoints: before,
			AfterPoints:  account.AvailablePoints().Value(),
			SourceType:   points.SourceTypeDeduct,
			Title:        orDefault(cmd.Title, "系統扣除"),
			Remark:       cmd.Remark,
			OperatorID:   cmd.OperatorID,
			OperatorName: cmd.OperatorName,
			CreatedAt:    now,
		})
		if err != nil {
			return nil, err
		}
		return succeeded(account, amount, entry), nil
	})
}

func adminFields(cmd AdminCommand) []zap.Field {
	return []zap.Field{
		zap.Int64("member_id", cmd.MemberID),
		zap.Int64("points", cmd.Points),
		zap.Int64("operator_id", cmd.OperatorID),
		zap.String("operator_name", cmd.OperatorName),
	}
}
