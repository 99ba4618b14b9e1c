package task

import (
	"context"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
)

// Catalog 任務目錄（只讀）
type Catalog interface {
	// GetByCode 返回有效的任務定義；未知、停用、過期或類型不支援時返回 ErrTaskNotFound
	GetByCode(ctx context.Context, tx shared.TransactionContext, code string, now time.Time) (*Definition, error)

	// ListDaily 有效的日常任務，按 sort_order 排序
	ListDaily(ctx context.Context, tx shared.TransactionContext, now time.Time) ([]*Definition, error)

	// ListGrowth 有效的成長任務，按 sort_order 排序
	ListGrowth(ctx context.Context, tx shared.TransactionContext, now time.Time) ([]*Definition, error)
}

// RecordParams 寫入完成記錄所需數據
type RecordParams struct {
	MemberID   int64
	Definition *Definition
	PointValue int64
	BizID      string
	Day        Day
	At         time.Time
}

// CompletionTracker 任務完成記錄
type CompletionTracker interface {
	TodayCount(ctx context.Context, tx shared.TransactionContext, memberID int64, code string, day Day) (int64, error)
	TotalCount(ctx context.Context, tx shared.TransactionContext, memberID int64, code string) (int64, error)

	// HasCompletedBiz bizID 為空時恆為 false
	HasCompletedBiz(ctx context.Context, tx shared.TransactionContext, memberID int64, code, bizID string) (bool, error)

	// Record 寫入一條記錄，complete_count = 當日已完成次數 + 1
	// 唯一約束衝突（同一 bizID）返回 ErrDuplicateBiz
	Record(ctx context.Context, tx shared.TransactionContext, p RecordParams) (*CompletionRecord, error)

	// CountsByDay 會員當日各任務完成次數
	CountsByDay(ctx context.Context, tx shared.TransactionContext, memberID int64, day Day) (map[string]int64, error)

	// ListByDay 會員當日的完成記錄
	ListByDay(ctx context.Context, tx shared.TransactionContext, memberID int64, day Day) ([]*CompletionRecord, error)
}

// GrowthTracker 成長任務狀態
type GrowthTracker interface {
	IsCompleted(ctx context.Context, tx shared.TransactionContext, memberID int64, code string) (bool, error)

	// GetOrCreate 返回狀態記錄，不存在時建立未完成記錄
	GetOrCreate(ctx context.Context, tx shared.TransactionContext, memberID int64, def *Definition) (*GrowthState, error)

	// MarkCompleted 條件更新 is_completed false → true；已完成返回 ErrAlreadyCompleted
	MarkCompleted(ctx context.Context, tx shared.TransactionContext, state *GrowthState, pointValue int64, at time.Time) error

	// ListByMember 會員所有成長任務狀態，以 task_code 為鍵
	ListByMember(ctx context.Context, tx shared.TransactionContext, memberID int64) (map[string]*GrowthState, error)
}
