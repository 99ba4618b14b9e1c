package rewards

import (
	"context"
	"testing"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_NewMember_ZeroBalance(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	view, err := env.engine.Account(context.Background(), 2002)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &AccountView{MemberID: 2002}, view)
}

func TestLedger_PaginationAndChangeTypeFilter(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedBalance(t, 1001, 100)
	for i := 0; i < 4; i++ {
		res, err := env.engine.ProcessConsume(ctx, ConsumeCommand{MemberID: 1001, Points: 5})
		require.NoError(t, err)
		require.True(t, res.Success)
	}
	use := points.ChangeTypeUse

	// Act
	first, err := env.engine.Ledger(ctx, LedgerQuery{MemberID: 1001, Page: 1, PageSize: 2})
	require.NoError(t, err)
	third, err := env.engine.Ledger(ctx, LedgerQuery{MemberID: 1001, Page: 3, PageSize: 2})
	require.NoError(t, err)
	uses, err := env.engine.Ledger(ctx, LedgerQuery{MemberID: 1001, ChangeType: &use, PageSize: 500})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, int64(5), first.Total)
	assert.Len(t, first.Entries, 2)
	assert.Equal(t, int64(80), first.Entries[0].AfterPoints, "最新的流水在前")

	require.Len(t, third.Entries, 1)
	assert.Equal(t, points.ChangeTypeEarn, third.Entries[0].ChangeType)

	assert.Equal(t, int64(4), uses.Total)
	assert.Equal(t, maxPageSize, uses.PageSize)
	assert.Equal(t, 1, uses.Page)
}

func TestLedger_ChainInvariant(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	ops := []func() (*Result, error){
		func() (*Result, error) {
			return env.engine.ProcessTaskEarn(ctx, EarnCommand{MemberID: 1001, TaskCode: "daily_post"})
		},
		func() (*Result, error) {
			return env.engine.FreezePoints(ctx, FreezeCommand{MemberID: 1001, Points: 8})
		},
		func() (*Result, error) {
			return env.engine.ProcessConsume(ctx, ConsumeCommand{MemberID: 1001, Points: 2})
		},
		func() (*Result, error) {
			return env.engine.UnfreezePoints(ctx, UnfreezeCommand{MemberID: 1001, Points: 3})
		},
		func() (*Result, error) {
			return env.engine.UnfreezePoints(ctx, UnfreezeCommand{MemberID: 1001, Points: 5, ToAvailable: true})
		},
		func() (*Result, error) {
			return env.engine.DeductPoints(ctx, AdminCommand{MemberID: 1001, Points: 1})
		},
	}

	// Act
	for _, op := range ops {
		res, err := op()
		require.NoError(t, err)
		require.True(t, res.Success, "reason: %s", res.Reason)
	}

	// Assert
	page, err := env.engine.Ledger(ctx, LedgerQuery{MemberID: 1001, PageSize: maxPageSize})
	require.NoError(t, err)
	require.Len(t, page.Entries, len(ops))

	var frozen int64
	for i := len(page.Entries) - 1; i >= 0; i-- {
		entry := page.Entries[i]
		assert.Equal(t, entry.ChangeValue, entry.AfterPoints-entry.BeforePoints)
		if i < len(page.Entries)-1 {
			assert.Equal(t, page.Entries[i+1].AfterPoints, entry.BeforePoints, "流水必須首尾相接")
		}
		frozen += entry.FrozenChange
	}

	account := env.account(t, 1001)
	assert.Equal(t, page.Entries[0].AfterPoints, account.AvailablePoints)
	assert.Equal(t, frozen, account.FrozenPoints)
}

func TestTasks_MergesCompletionState(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	for _, code := range []string{"daily_checkin", "daily_post", "first_post"} {
		_, err := env.engine.ProcessTaskEarn(ctx, EarnCommand{MemberID: 1001, TaskCode: code})
		require.NoError(t, err)
	}

	// Act
	list, err := env.engine.Tasks(ctx, 1001)

	// Assert
	require.NoError(t, err)
	daily := make(map[string]TaskView)
	for _, v := range list.Daily {
		assert.Equal(t, task.TypeDaily, v.Type)
		daily[v.Code] = v
	}
	assert.NotContains(t, daily, "retired_task")
	assert.Equal(t, int64(1), daily["daily_checkin"].TodayCount)
	assert.True(t, daily["daily_checkin"].IsCompleted)
	assert.Equal(t, int64(1), daily["daily_post"].TodayCount)
	assert.False(t, daily["daily_post"].IsCompleted)
	assert.Equal(t, 3, daily["daily_post"].DailyLimit)

	growth := make(map[string]TaskView)
	for _, v := range list.Growth {
		growth[v.Code] = v
	}
	require.Contains(t, growth, "first_post")
	assert.True(t, growth["first_post"].IsCompleted)
	require.NotNil(t, growth["first_post"].CompleteTime)
	assert.True(t, growth["first_post"].CompleteTime.Equal(env.clock.Now()))
	assert.False(t, growth["invite_user"].IsCompleted)
	assert.Nil(t, growth["invite_user"].CompleteTime)
}

func TestCanCompleteTask(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.engine.ProcessTaskEarn(ctx, EarnCommand{MemberID: 1001, TaskCode: "sign_in"})
	require.NoError(t, err)
	_, err = env.engine.ProcessTaskEarn(ctx, EarnCommand{MemberID: 1001, TaskCode: "first_bio"})
	require.NoError(t, err)
	_, err = env.engine.ProcessTaskEarn(ctx, EarnCommand{MemberID: 1001, TaskCode: "daily_like", BizID: "like-1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		code   string
		bizID  string
		can    bool
		reason Reason
	}{
		{name: "daily available", code: "daily_post", can: true},
		{name: "daily limit reached", code: "sign_in", reason: ReasonDailyLimitExceeded},
		{name: "duplicate biz", code: "daily_like", bizID: "like-1", reason: ReasonDuplicateBiz},
		{name: "new biz", code: "daily_like", bizID: "like-2", can: true},
		{name: "growth done", code: "first_bio", reason: ReasonAlreadyCompleted},
		{name: "growth open", code: "first_avatar", can: true},
		{name: "unknown", code: "nope", reason: ReasonTaskNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := env.engine.CanCompleteTask(ctx, 1001, tt.code, tt.bizID)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.can, got.CanComplete)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestTodayEarnStats(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := env.engine.ProcessTaskEarn(ctx, EarnCommand{MemberID: 1001, TaskCode: "daily_post"})
		require.NoError(t, err)
	}
	_, err := env.engine.ProcessTaskEarn(ctx, EarnCommand{MemberID: 1001, TaskCode: "first_follow"})
	require.NoError(t, err)
	_, err = env.engine.ProcessConsume(ctx, ConsumeCommand{MemberID: 1001, Points: 10})
	require.NoError(t, err)

	// Act
	stats, err := env.engine.TodayEarnStats(ctx, 1001)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, task.Day("2026-10-15"), stats.Day)
	assert.Equal(t, int64(60), stats.TotalEarned)
	assert.Equal(t, []TaskEarnStat{
		{TaskCode: "daily_post", Count: 2, TotalPoints: 40},
		{TaskCode: "first_follow", Count: 1, TotalPoints: 20},
	}, stats.Tasks)
}

func TestTodayEarnStats_YesterdayExcluded(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.engine.ProcessTaskEarn(ctx, EarnCommand{MemberID: 1001, TaskCode: "sign_in"})
	require.NoError(t, err)
	env.clock.Advance(24 * time.Hour)

	// Act
	stats, err := env.engine.TodayEarnStats(ctx, 1001)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalEarned)
	assert.Empty(t, stats.Tasks)
}

func TestHasEnoughPoints(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	env.seedBalance(t, 1001, 10)
	ctx := context.Background()

	// Act
	enough, err := env.engine.HasEnoughPoints(ctx, 1001, 10)
	require.NoError(t, err)
	short, err := env.engine.HasEnoughPoints(ctx, 1001, 11)
	require.NoError(t, err)

	// Assert
	assert.True(t, enough)
	assert.False(t, short)
}
