package persistence

import (
	"context"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"github.com/jackyeh168/member_rewards/src/internal/domain/task"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMGrowthTracker 成長任務狀態倉儲
type GORMGrowthTracker struct {
	db *gorm.DB
}

// NewGrowthTracker 創建成長任務狀態倉儲
func NewGrowthTracker(db *gorm.DB) *GORMGrowthTracker {
	return &GORMGrowthTracker{db: db}
}

var _ task.GrowthTracker = (*GORMGrowthTracker)(nil)

func (r *GORMGrowthTracker) IsCompleted(ctx context.Context, tx shared.TransactionContext, memberID int64, code string) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db, tx).Model(&GrowthTaskModel{}).
		Where("member_id = ? AND task_code = ? AND is_completed = ?", memberID, code, true).
		Count(&count).Error
	if err != nil {
		return false, wrapRepositoryError("check growth task", err)
	}
	return count > 0, nil
}

// GetOrCreate 不存在時以 ON CONFLICT DO NOTHING 建立未完成記錄
func (r *GORMGrowthTracker) GetOrCreate(ctx context.Context, tx shared.TransactionContext, memberID int64, def *task.Definition) (*task.GrowthState, error) {
	db := dbFor(ctx, r.db, tx)
	now := time.Now().UTC()

	seed := &GrowthTaskModel{
		MemberID:  memberID,
		TaskID:    def.ID,
		TaskCode:  def.Code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}, {Name: "task_code"}},
		DoNothing: true,
	}).Create(seed).Error
	if err != nil {
		return nil, wrapRepositoryError("create growth task", err)
	}

	var model GrowthTaskModel
	if err := db.Where("member_id = ? AND task_code = ?", memberID, def.Code).First(&model).Error; err != nil {
		return nil, wrapRepositoryError("find growth task", err)
	}
	return growthToDomain(&model), nil
}

// MarkCompleted 條件更新，只有未完成的記錄會被修改
func (r *GORMGrowthTracker) MarkCompleted(ctx context.Context, tx shared.TransactionContext, state *task.GrowthState, pointValue int64, at time.Time) error {
	if !inTransaction(tx) {
		return points.ErrTransactionRequired.WithContext("operation", "complete growth task")
	}

	completeTime := at.UTC()
	result := dbFor(ctx, r.db, tx).Model(&GrowthTaskModel{}).
		Where("id = ? AND is_completed = ?", state.ID, false).
		Updates(map[string]interface{}{
			"is_completed":  true,
			"complete_time": completeTime,
			"point_value":   pointValue,
			"updated_at":    completeTime,
		})
	if result.Error != nil {
		return wrapRepositoryError("complete growth task", result.Error)
	}
	if result.RowsAffected == 0 {
		return task.ErrAlreadyCompleted.WithContext(
			"member_id", state.MemberID,
			"task_code", state.TaskCode,
		)
	}

	state.IsCompleted = true
	state.CompleteTime = &completeTime
	state.PointValue = pointValue
	return nil
}

func (r *GORMGrowthTracker) ListByMember(ctx context.Context, tx shared.TransactionContext, memberID int64) (map[string]*task.GrowthState, error) {
	var models []GrowthTaskModel
	if err := dbFor(ctx, r.db, tx).Where("member_id = ?", memberID).Find(&models).Error; err != nil {
		return nil, wrapRepositoryError("list growth tasks", err)
	}

	states := make(map[string]*task.GrowthState, len(models))
	for i := range models {
		states[models[i].TaskCode] = growthToDomain(&models[i])
	}
	return states, nil
}

func growthToDomain(m *GrowthTaskModel) *task.GrowthState {
	return &task.GrowthState{
		ID:           m.ID,
		MemberID:     m.MemberID,
		TaskID:       m.TaskID,
		TaskCode:     m.TaskCode,
		IsCompleted:  m.IsCompleted,
		CompleteTime: m.CompleteTime,
		PointValue:   m.PointValue,
	}
}
