package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"github.com/jackyeh168/member_rewards/src/internal/domain/task"
	"gorm.io/gorm"
)

// GORMTaskCatalog 任務目錄
//
// 有效期比較在 Go 中進行：SQLite 以字串保存時間，跨時區比較不可靠。
type GORMTaskCatalog struct {
	db *gorm.DB
}

// NewTaskCatalog 創建任務目錄倉儲
func NewTaskCatalog(db *gorm.DB) *GORMTaskCatalog {
	return &GORMTaskCatalog{db: db}
}

var _ task.Catalog = (*GORMTaskCatalog)(nil)

// GetByCode 返回有效的任務定義
func (c *GORMTaskCatalog) GetByCode(ctx context.Context, tx shared.TransactionContext, code string, now time.Time) (*task.Definition, error) {
	var model TaskDefinitionModel
	err := dbFor(ctx, c.db, tx).Where("task_code = ?", code).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, task.ErrTaskNotFound.WithContext("task_code", code)
	}
	if err != nil {
		return nil, wrapRepositoryError("find task definition", err)
	}

	def, err := taskToDomain(&model)
	if err != nil {
		return nil, task.ErrTaskNotFound.WithContext("task_code", code, "reason", err.Error())
	}
	if !def.IsActive(now) {
		return nil, task.ErrTaskNotFound.WithContext("task_code", code, "reason", "inactive")
	}
	return def, nil
}

// ListDaily 有效的日常任務
func (c *GORMTaskCatalog) ListDaily(ctx context.Context, tx shared.TransactionContext, now time.Time) ([]*task.Definition, error) {
	return c.listActive(ctx, tx, task.TypeDaily, now)
}

// ListGrowth 有效的成長任務
func (c *GORMTaskCatalog) ListGrowth(ctx context.Context, tx shared.TransactionContext, now time.Time) ([]*task.Definition, error) {
	return c.listActive(ctx, tx, task.TypeGrowth, now)
}

func (c *GORMTaskCatalog) listActive(ctx context.Context, tx shared.TransactionContext, typ task.TypeCode, now time.Time) ([]*task.Definition, error) {
	var models []TaskDefinitionModel
	err := dbFor(ctx, c.db, tx).
		Where("task_type = ? AND status = ?", int16(typ), int16(task.StatusEnabled)).
		Order("sort_order ASC, task_id ASC").
		Find(&models).Error
	if err != nil {
		return nil, wrapRepositoryError("list task definitions", err)
	}

	defs := make([]*task.Definition, 0, len(models))
	for i := range models {
		def, err := taskToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		if def.IsActive(now) {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

func taskToDomain(m *TaskDefinitionModel) (*task.Definition, error) {
	kind, err := task.NewKind(task.TypeCode(m.TaskType), m.DailyLimit, m.TotalLimit)
	if err != nil {
		return nil, err
	}
	return &task.Definition{
		ID:          m.TaskID,
		Code:        m.TaskCode,
		Name:        m.TaskName,
		Kind:        kind,
		Category:    stringValue(m.TaskCategory),
		PointValue:  m.PointValue,
		Status:      task.Status(m.Status),
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Icon:        stringValue(m.Icon),
		Description: stringValue(m.Description),
		JumpURL:     stringValue(m.JumpURL),
		SortOrder:   m.SortOrder,
	}, nil
}

func taskToGORM(d *task.Definition, now time.Time) *TaskDefinitionModel {
	m := &TaskDefinitionModel{
		TaskID:       d.ID,
		TaskCode:     d.Code,
		TaskName:     d.Name,
		TaskType:     int16(d.Kind.TypeCode()),
		TaskCategory: nullableString(d.Category),
		PointValue:   d.PointValue,
		Icon:         nullableString(d.Icon),
		Description:  nullableString(d.Description),
		JumpURL:      nullableString(d.JumpURL),
		SortOrder:    d.SortOrder,
		Status:       int16(d.Status),
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch k := d.Kind.(type) {
	case task.Daily:
		m.DailyLimit = k.DailyLimit
		m.TotalLimit = k.TotalLimit
	case task.Growth:
		m.TotalLimit = 1
	}
	return m
}
