package persistence

import (
	"context"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"github.com/jackyeh168/member_rewards/src/internal/domain/task"
	"gorm.io/gorm"
)

// GORMCompletionTracker 任務完成記錄倉儲
type GORMCompletionTracker struct {
	db *gorm.DB
}

// NewCompletionTracker 創建任務完成記錄倉儲
func NewCompletionTracker(db *gorm.DB) *GORMCompletionTracker {
	return &GORMCompletionTracker{db: db}
}

var _ task.CompletionTracker = (*GORMCompletionTracker)(nil)

func (r *GORMCompletionTracker) TodayCount(ctx context.Context, tx shared.TransactionContext, memberID int64, code string, day task.Day) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db, tx).Model(&TaskCompletionModel{}).
		Where("member_id = ? AND task_code = ? AND complete_date = ?", memberID, code, day.String()).
		Count(&count).Error
	if err != nil {
		return 0, wrapRepositoryError("count today completions", err)
	}
	return count, nil
}

func (r *GORMCompletionTracker) TotalCount(ctx context.Context, tx shared.TransactionContext, memberID int64, code string) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db, tx).Model(&TaskCompletionModel{}).
		Where("member_id = ? AND task_code = ?", memberID, code).
		Count(&count).Error
	if err != nil {
		return 0, wrapRepositoryError("count total completions", err)
	}
	return count, nil
}

func (r *GORMCompletionTracker) HasCompletedBiz(ctx context.Context, tx shared.TransactionContext, memberID int64, code, bizID string) (bool, error) {
	if bizID == "" {
		return false, nil
	}

	var count int64
	err := dbFor(ctx, r.db, tx).Model(&TaskCompletionModel{}).
		Where("member_id = ? AND task_code = ? AND biz_id = ?", memberID, code, bizID).
		Count(&count).Error
	if err != nil {
		return false, wrapRepositoryError("check completed biz", err)
	}
	return count > 0, nil
}

// Record 寫入完成記錄
//
// 唯一索引 (member_id, task_code, biz_id) 是 bizID 去重的最後防線，衝突映射為 ErrDuplicateBiz。
func (r *GORMCompletionTracker) Record(ctx context.Context, tx shared.TransactionContext, p task.RecordParams) (*task.CompletionRecord, error) {
	if !inTransaction(tx) {
		return nil, points.ErrTransactionRequired.WithContext("operation", "record task completion")
	}

	todayCount, err := r.TodayCount(ctx, tx, p.MemberID, p.Definition.Code, p.Day)
	if err != nil {
		return nil, err
	}

	model := &TaskCompletionModel{
		MemberID:      p.MemberID,
		TaskID:        p.Definition.ID,
		TaskCode:      p.Definition.Code,
		TaskType:      int16(p.Definition.Kind.TypeCode()),
		PointValue:    p.PointValue,
		CompleteDate:  p.Day.String(),
		CompleteCount: todayCount + 1,
		BizID:         nullableString(p.BizID),
		CreatedAt:     p.At.UTC(),
	}
	if err := dbFor(ctx, r.db, tx).Create(model).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, task.ErrDuplicateBiz.WithContext(
				"member_id", p.MemberID,
				"task_code", p.Definition.Code,
				"biz_id", p.BizID,
			)
		}
		return nil, wrapRepositoryError("record task completion", err)
	}
	return completionToDomain(model), nil
}

type taskCountRow struct {
	TaskCode string
	Total    int64
}

func (r *GORMCompletionTracker) CountsByDay(ctx context.Context, tx shared.TransactionContext, memberID int64, day task.Day) (map[string]int64, error) {
	var rows []taskCountRow
	err := dbFor(ctx, r.db, tx).Model(&TaskCompletionModel{}).
		Select("task_code, COUNT(*) AS total").
		Where("member_id = ? AND complete_date = ?", memberID, day.String()).
		Group("task_code").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapRepositoryError("count completions by day", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.TaskCode] = row.Total
	}
	return counts, nil
}

func (r *GORMCompletionTracker) ListByDay(ctx context.Context, tx shared.TransactionContext, memberID int64, day task.Day) ([]*task.CompletionRecord, error) {
	var models []TaskCompletionModel
	err := dbFor(ctx, r.db, tx).
		Where("member_id = ? AND complete_date = ?", memberID, day.String()).
		Order("record_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, wrapRepositoryError("list completions by day", err)
	}

	records := make([]*task.CompletionRecord, 0, len(models))
	for i := range models {
		records = append(records, completionToDomain(&models[i]))
	}
	return records, nil
}

func completionToDomain(m *TaskCompletionModel) *task.CompletionRecord {
	return &task.CompletionRecord{
		ID:            m.RecordID,
		MemberID:      m.MemberID,
		TaskID:        m.TaskID,
		TaskCode:      m.TaskCode,
		TaskType:      task.TypeCode(m.TaskType),
		PointValue:    m.PointValue,
		CompleteDate:  task.Day(m.CompleteDate),
		CompleteCount: m.CompleteCount,
		BizID:         stringValue(m.BizID),
		CreatedAt:     m.CreatedAt,
	}
}
