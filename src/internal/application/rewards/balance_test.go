package rewards

import (
	"context"
	"testing"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===========================
// ProcessConsume 測試
// ===========================

// 餘額不足時消費被拒絕，補足後消費成功
func TestProcessConsume_InsufficientThenSufficient(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.engine.ProcessTaskEarn(ctx, EarnCommand{MemberID: 1001, TaskCode: "sign_in"})
	require.NoError(t, err)

	// Act
	tooMuch, err := env.engine.ProcessConsume(ctx, ConsumeCommand{MemberID: 1001, Points: 15, Title: "redeem"})
	require.NoError(t, err)
	ok, err := env.engine.ProcessConsume(ctx, ConsumeCommand{MemberID: 1001, Points: 5, Title: "redeem"})
	require.NoError(t, err)

	// Assert
	assert.False(t, tooMuch.Success)
	assert.Equal(t, ReasonInsufficientPoints, tooMuch.Reason)

	assert.True(t, ok.Success)
	assert.Equal(t, int64(5), ok.AvailablePoints)

	account := env.account(t, 1001)
	assert.Equal(t, int64(5), account.AvailablePoints)
	assert.Equal(t, int64(5), account.UsedPoints)
	assert.Equal(t, int64(10), account.TotalPoints)
}

func TestProcessConsume_InvalidAmount_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		points int64
	}{
		{name: "zero", points: 0},
		{name: "negative", points: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv(t)

			// Act
			res, err := env.engine.ProcessConsume(context.Background(), ConsumeCommand{MemberID: 1001, Points: tt.points})

			// Assert
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, ReasonInvalidAmount, res.Reason)
		})
	}
}

func TestProcessConsume_DuplicateOrderNo_Replayed(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 100)
	cmd := ConsumeCommand{MemberID: 1001, Points: 30, Title: "兌換", OrderNo: "ORD-1"}

	// Act
	first, err := env.engine.ProcessConsume(ctx, cmd)
	require.NoError(t, err)
	second, err := env.engine.ProcessConsume(ctx, cmd)
	require.NoError(t, err)

	// Assert
	assert.True(t, first.Success)
	assert.False(t, first.Replayed)
	assert.True(t, second.Success)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.EntryID, second.EntryID)
	assert.Equal(t, int64(70), env.account(t, 1001).AvailablePoints)

	warnings := env.logs.FilterMessage("duplicate order ignored").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zap.WarnLevel, warnings[0].Level)
}

// 同一訂單號但數量不同：拒絕，不得當作重放成功
func TestProcessConsume_DuplicateOrderNoDifferentAmount_Conflict(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 100)
	first, err := env.engine.ProcessConsume(ctx, ConsumeCommand{MemberID: 1001, Points: 5, OrderNo: "ORD-1"})
	require.NoError(t, err)
	require.True(t, first.Success)

	// Act
	second, err := env.engine.ProcessConsume(ctx, ConsumeCommand{MemberID: 1001, Points: 50, OrderNo: "ORD-1"})

	// Assert
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.False(t, second.Replayed)
	assert.Equal(t, ReasonOrderConflict, second.Reason)

	account := env.account(t, 1001)
	assert.Equal(t, int64(95), account.AvailablePoints)
	assert.Equal(t, int64(5), account.UsedPoints)

	useType := points.ChangeTypeUse
	page, err := env.engine.Ledger(ctx, LedgerQuery{MemberID: 1001, ChangeType: &useType})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Empty(t, env.logs.FilterMessage("duplicate order ignored").All())
}

func TestProcessConsume_DuplicateOrderNo_ReplayReportsRecordedPoints(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 100)
	cmd := ConsumeCommand{MemberID: 1001, Points: 30, OrderNo: "ORD-2"}
	_, err := env.engine.ProcessConsume(ctx, cmd)
	require.NoError(t, err)

	// Act
	replay, err := env.engine.ProcessConsume(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Equal(t, int64(30), replay.Points)
	assert.Equal(t, int64(70), replay.AvailablePoints)
}

func TestProcessConsume_SameOrderNoDifferentOperation_NotReplayed(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 100)

	// Act
	freeze, err := env.engine.FreezePoints(ctx, FreezeCommand{MemberID: 1001, Points: 10, OrderNo: "ORD-1"})
	require.NoError(t, err)
	consume, err := env.engine.ProcessConsume(ctx, ConsumeCommand{MemberID: 1001, Points: 10, OrderNo: "ORD-1"})
	require.NoError(t, err)

	// Assert
	assert.False(t, freeze.Replayed)
	assert.False(t, consume.Replayed)
	assert.Equal(t, int64(80), env.account(t, 1001).AvailablePoints)
}

func TestProcessConsume_WritesLedgerEntry(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 50)

	// Act
	res, err := env.engine.ProcessConsume(ctx, ConsumeCommand{MemberID: 1001, Points: 20, OrderNo: "ORD-9", Remark: "商品兌換"})
	require.NoError(t, err)

	// Assert
	page, err := env.engine.Ledger(ctx, LedgerQuery{MemberID: 1001})
	require.NoError(t, err)
	entry := page.Entries[0]
	assert.Equal(t, res.EntryID, entry.ID)
	assert.Equal(t, points.ChangeTypeUse, entry.ChangeType)
	assert.Equal(t, points.SourceTypeConsume, entry.SourceType)
	assert.Equal(t, int64(-20), entry.ChangeValue)
	assert.Equal(t, int64(50), entry.BeforePoints)
	assert.Equal(t, int64(30), entry.AfterPoints)
	assert.Equal(t, "積分消費", entry.Title)
	assert.Equal(t, "ORD-9", entry.OrderNo)
	assert.Equal(t, "consume:1001:ORD-9", entry.IdempotencyKey)
}

// ===========================
// Freeze / Unfreeze 測試
// ===========================

func TestFreezeUnfreeze_ToAvailable_RoundTrip(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 10)
	before := env.account(t, 1001)

	// Act
	frozen, err := env.engine.FreezePoints(ctx, FreezeCommand{MemberID: 1001, Points: 3, OrderNo: "ORD-1"})
	require.NoError(t, err)
	mid := env.account(t, 1001)
	released, err := env.engine.UnfreezePoints(ctx, UnfreezeCommand{MemberID: 1001, Points: 3, ToAvailable: true, OrderNo: "ORD-1"})
	require.NoError(t, err)

	// Assert
	assert.True(t, frozen.Success)
	assert.Equal(t, int64(7), mid.AvailablePoints)
	assert.Equal(t, int64(3), mid.FrozenPoints)

	assert.True(t, released.Success)
	after := env.account(t, 1001)
	assert.Equal(t, before.AvailablePoints, after.AvailablePoints)
	assert.Equal(t, before.FrozenPoints, after.FrozenPoints)
	assert.Equal(t, before.UsedPoints, after.UsedPoints)

	page, err := env.engine.Ledger(ctx, LedgerQuery{MemberID: 1001})
	require.NoError(t, err)
	require.Len(t, page.Entries, 3)
	unfreeze, freeze := page.Entries[0], page.Entries[1]
	assert.Equal(t, points.ChangeTypeUnfreeze, unfreeze.ChangeType)
	assert.Equal(t, points.SourceTypeRefund, unfreeze.SourceType)
	assert.Equal(t, int64(3), unfreeze.ChangeValue)
	assert.Equal(t, int64(-3), unfreeze.FrozenChange)
	assert.Equal(t, points.ChangeTypeFreeze, freeze.ChangeType)
	assert.Equal(t, int64(-3), freeze.ChangeValue)
	assert.Equal(t, int64(3), freeze.FrozenChange)
}

func TestUnfreeze_ToUsed_ConsumesFrozenPoints(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 10)
	_, err := env.engine.FreezePoints(ctx, FreezeCommand{MemberID: 1001, Points: 4, OrderNo: "ORD-2"})
	require.NoError(t, err)

	// Act
	res, err := env.engine.UnfreezePoints(ctx, UnfreezeCommand{MemberID: 1001, Points: 4, OrderNo: "ORD-2"})

	// Assert
	require.NoError(t, err)
	assert.True(t, res.Success)

	account := env.account(t, 1001)
	assert.Equal(t, int64(6), account.AvailablePoints)
	assert.Equal(t, int64(0), account.FrozenPoints)
	assert.Equal(t, int64(4), account.UsedPoints)

	page, err := env.engine.Ledger(ctx, LedgerQuery{MemberID: 1001})
	require.NoError(t, err)
	entry := page.Entries[0]
	assert.Equal(t, points.ChangeTypeUse, entry.ChangeType)
	assert.Equal(t, points.SourceTypeConsume, entry.SourceType)
	assert.Equal(t, int64(0), entry.ChangeValue)
	assert.Equal(t, int64(-4), entry.FrozenChange)
	assert.Equal(t, entry.BeforePoints, entry.AfterPoints)
}

func TestFreeze_InsufficientPoints_Rejected(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.seedBalance(t, 1001, 5)

	// Act
	res, err := env.engine.FreezePoints(context.Background(), FreezeCommand{MemberID: 1001, Points: 6})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ReasonInsufficientPoints, res.Reason)
	assert.Equal(t, int64(0), env.account(t, 1001).FrozenPoints)
}

func TestUnfreeze_InsufficientFrozenPoints_Rejected(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 10)
	_, err := env.engine.FreezePoints(ctx, FreezeCommand{MemberID: 1001, Points: 2})
	require.NoError(t, err)

	// Act
	res, err := env.engine.UnfreezePoints(ctx, UnfreezeCommand{MemberID: 1001, Points: 3, ToAvailable: true})

	// Assert
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ReasonInsufficientFrozenPoints, res.Reason)

	account := env.account(t, 1001)
	assert.Equal(t, int64(8), account.AvailablePoints)
	assert.Equal(t, int64(2), account.FrozenPoints)
}

func TestUnfreeze_DuplicateOrderNo_Replayed(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 10)
	_, err := env.engine.FreezePoints(ctx, FreezeCommand{MemberID: 1001, Points: 5, OrderNo: "ORD-3"})
	require.NoError(t, err)
	cmd := UnfreezeCommand{MemberID: 1001, Points: 5, ToAvailable: true, OrderNo: "ORD-3"}

	// Act
	_, err = env.engine.UnfreezePoints(ctx, cmd)
	require.NoError(t, err)
	replay, err := env.engine.UnfreezePoints(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	account := env.account(t, 1001)
	assert.Equal(t, int64(10), account.AvailablePoints)
	assert.Equal(t, int64(0), account.FrozenPoints)
}

// 同一訂單先解凍返還，再以轉為已使用重複提交：去向不同視為衝突
func TestUnfreeze_SameOrderNoDifferentTarget_Conflict(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 20)
	_, err := env.engine.FreezePoints(ctx, FreezeCommand{MemberID: 1001, Points: 10, OrderNo: "ORD-4"})
	require.NoError(t, err)
	refund, err := env.engine.UnfreezePoints(ctx, UnfreezeCommand{MemberID: 1001, Points: 5, ToAvailable: true, OrderNo: "ORD-4"})
	require.NoError(t, err)
	require.True(t, refund.Success)

	// Act
	res, err := env.engine.UnfreezePoints(ctx, UnfreezeCommand{MemberID: 1001, Points: 5, ToAvailable: false, OrderNo: "ORD-4"})

	// Assert
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ReasonOrderConflict, res.Reason)

	account := env.account(t, 1001)
	assert.Equal(t, int64(15), account.AvailablePoints)
	assert.Equal(t, int64(5), account.FrozenPoints)
	assert.Equal(t, int64(0), account.UsedPoints)
}
