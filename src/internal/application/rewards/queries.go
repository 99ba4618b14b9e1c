package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/task"
)

// ===========================
// 查詢（不加鎖，不開事務）
// ===========================

// 流水分頁預設值
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AccountView 帳戶快照
type AccountView struct {
	MemberID        int64
	TotalPoints     int64
	UsedPoints      int64
	AvailablePoints int64
	FrozenPoints    int64
	ExpiredPoints   int64
	LevelPoints     int64
}

// Account 查詢帳戶，不存在時建立零餘額帳戶
func (e *Engine) Account(ctx context.Context, memberID int64) (*AccountView, error) {
	id, err := points.NewMemberID(memberID)
	if err != nil {
		return nil, err
	}
	account, err := e.accounts.GetOrCreate(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &AccountView{
		MemberID:        account.MemberID().Value(),
		TotalPoints:     account.TotalPoints().Value(),
		UsedPoints:      account.UsedPoints().Value(),
		AvailablePoints: account.AvailablePoints().Value(),
		FrozenPoints:    account.FrozenPoints().Value(),
		ExpiredPoints:   account.ExpiredPoints().Value(),
		LevelPoints:     account.LevelPoints().Value(),
	}, nil
}

// HasEnoughPoints 可用積分是否足夠
func (e *Engine) HasEnoughPoints(ctx context.Context, memberID, value int64) (bool, error) {
	id, amount, err := parseMemberAndAmount(memberID, value)
	if err != nil {
		return false, err
	}
	account, err := e.accounts.GetOrCreate(ctx, nil, id)
	if err != nil {
		return false, fmt.Errorf("check balance: %w", err)
	}
	return account.HasEnoughPoints(amount), nil
}

// LedgerQuery 流水查詢條件；Page 從 1 開始
type LedgerQuery struct {
	MemberID   int64
	ChangeType *points.ChangeType
	Page       int
	PageSize   int
}

// LedgerPage 流水分頁結果
type LedgerPage struct {
	Total    int64
	Page     int
	PageSize int
	Entries  []*points.LedgerEntry
}

// Ledger 按建立順序倒序查詢會員流水
func (e *Engine) Ledger(ctx context.Context, q LedgerQuery) (*LedgerPage, error) {
	id, err := points.NewMemberID(q.MemberID)
	if err != nil {
		return nil, err
	}
	page, size := normalizePage(q.Page, q.PageSize)

	entries, total, err := e.ledger.ListByMember(ctx, nil, points.LedgerFilter{
		MemberID:   id,
		ChangeType: q.ChangeType,
		Offset:     (page - 1) * size,
		Limit:      size,
	})
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return &LedgerPage{Total: total, Page: page, PageSize: size, Entries: entries}, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// TaskView 任務及會員完成狀態
//
// 日常任務：TodayCount 為今日次數，達到每日上限時 IsCompleted。
// 成長任務：IsCompleted 與 CompleteTime 來自成長任務狀態。
type TaskView struct {
	TaskID       int64
	Code         string
	Name         string
	Type         task.TypeCode
	PointValue   int64
	DailyLimit   int
	TodayCount   int64
	IsCompleted  bool
	CompleteTime *time.Time
	Description  string
	Icon         string
	JumpURL      string
}

// TaskList 會員任務列表
type TaskList struct {
	Daily  []TaskView
	Growth []TaskView
}

// Tasks 合併任務目錄與會員完成狀態
func (e *Engine) Tasks(ctx context.Context, memberID int64) (*TaskList, error) {
	id, err := points.NewMemberID(memberID)
	if err != nil {
		return nil, err
	}
	now, day := e.today()

	daily, err := e.catalog.ListDaily(ctx, nil, now)
	if err != nil {
		return nil, fmt.Errorf("list daily tasks: %w", err)
	}
	growth, err := e.catalog.ListGrowth(ctx, nil, now)
	if err != nil {
		return nil, fmt.Errorf("list growth tasks: %w", err)
	}
	counts, err := e.completions.CountsByDay(ctx, nil, id.Value(), day)
	if err != nil {
		return nil, fmt.Errorf("count today completions: %w", err)
	}
	states, err := e.growth.ListByMember(ctx, nil, id.Value())
	if err != nil {
		return nil, fmt.Errorf("list growth states: %w", err)
	}

	list := &TaskList{
		Daily:  make([]TaskView, 0, len(daily)),
		Growth: make([]TaskView, 0, len(growth)),
	}
	for _, def := range daily {
		view := taskView(def)
		view.TodayCount = counts[def.Code]
		if kind, ok := def.Kind.(task.Daily); ok {
			view.DailyLimit = kind.DailyLimit
			view.IsCompleted = kind.DailyLimitReached(view.TodayCount)
		}
		list.Daily = append(list.Daily, view)
	}
	for _, def := range growth {
		view := taskView(def)
		if state, ok := states[def.Code]; ok {
			view.IsCompleted = state.IsCompleted
			view.CompleteTime = state.CompleteTime
		}
		list.Growth = append(list.Growth, view)
	}
	return list, nil
}

func taskView(def *task.Definition) TaskView {
	return TaskView{
		TaskID:      def.ID,
		Code:        def.Code,
		Name:        def.Name,
		Type:        def.Kind.TypeCode(),
		PointValue:  def.PointValue,
		Description: def.Description,
		Icon:        def.Icon,
		JumpURL:     def.JumpURL,
	}
}

// Eligibility 任務能否完成的預檢結果
type Eligibility struct {
	CanComplete bool
	Reason      Reason
	Message     string
}

// CanCompleteTask 預檢任務是否可完成（與 ProcessTaskEarn 相同的規則，不加鎖）
//
// 結果只是提示；真正的判斷在 ProcessTaskEarn 的事務內重做。
func (e *Engine) CanCompleteTask(ctx context.Context, memberID int64, taskCode, bizID string) (*Eligibility, error) {
	id, err := points.NewMemberID(memberID)
	if err != nil {
		return nil, err
	}
	now, day := e.today()

	err = func() error {
		def, err := e.catalog.GetByCode(ctx, nil, taskCode, now)
		if err != nil {
			return err
		}
		req := earnRequest{memberID: id, def: def, bizID: bizID, day: day, at: now}
		return e.strategyFor(def).check(ctx, nil, req)
	}()
	if err == nil {
		return &Eligibility{CanComplete: true}, nil
	}
	if reason, domainErr, ok := rejectionOf(err); ok {
		return &Eligibility{Reason: reason, Message: domainErr.Message}, nil
	}
	return nil, fmt.Errorf("check task eligibility: %w", err)
}

// TaskEarnStat 單一任務今日完成統計
type TaskEarnStat struct {
	TaskCode    string
	Count       int64
	TotalPoints int64
}

// EarnStats 今日積分獲取統計
type EarnStats struct {
	Day         task.Day
	TotalEarned int64
	Tasks       []TaskEarnStat
}

// TodayEarnStats 今日獲得積分總和及各任務完成次數
func (e *Engine) TodayEarnStats(ctx context.Context, memberID int64) (*EarnStats, error) {
	id, err := points.NewMemberID(memberID)
	if err != nil {
		return nil, err
	}
	_, day := e.today()
	since, err := day.Start(e.location)
	if err != nil {
		return nil, fmt.Errorf("resolve day start: %w", err)
	}

	total, err := e.ledger.SumEarned(ctx, nil, id, since)
	if err != nil {
		return nil, fmt.Errorf("sum earned points: %w", err)
	}
	records, err := e.completions.ListByDay(ctx, nil, id.Value(), day)
	if err != nil {
		return nil, fmt.Errorf("list today completions: %w", err)
	}

	stats := &EarnStats{Day: day, TotalEarned: total}
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.TaskCode]
		if !ok {
			i = len(stats.Tasks)
			index[r.TaskCode] = i
			stats.Tasks = append(stats.Tasks, TaskEarnStat{TaskCode: r.TaskCode})
		}
		stats.Tasks[i].Count++
		stats.Tasks[i].TotalPoints += r.PointValue
	}
	return stats, nil
}
