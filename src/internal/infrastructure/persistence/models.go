package persistence

import (
	"time"

	"gorm.io/datatypes"
)

// ===========================
// GORM Model 定義
// ===========================

// PointAccountModel 會員積分帳戶
type PointAccountModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	MemberID        int64     `gorm:"column:member_id;uniqueIndex;not null"`
	TotalPoints     int64     `gorm:"column:total_points;not null;default:0;check:total_points >= 0"`
	UsedPoints      int64     `gorm:"column:used_points;not null;default:0;check:used_points >= 0"`
	AvailablePoints int64     `gorm:"column:available_points;not null;default:0;check:available_points >= 0"`
	FrozenPoints    int64     `gorm:"column:frozen_points;not null;default:0;check:frozen_points >= 0"`
	ExpiredPoints   int64     `gorm:"column:expired_points;not null;default:0"`
	LevelPoints     int64     `gorm:"column:level_points;not null;default:0"`
	Version         int64     `gorm:"column:version;not null;default:1"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (PointAccountModel) TableName() string {
	return "member_point_accounts"
}

// LedgerEntryModel 積分流水，只追加
type LedgerEntryModel struct {
	LogID          int64     `gorm:"column:log_id;primaryKey;autoIncrement"`
	MemberID       int64     `gorm:"column:member_id;not null;index:idx_member_point_logs_member_time,priority:1"`
	ChangeType     int16     `gorm:"column:change_type;not null;index"`
	ChangeValue    int64     `gorm:"column:change_value;not null"`
	FrozenChange   int64     `gorm:"column:frozen_change;not null;default:0"`
	BeforePoints   int64     `gorm:"column:before_points;not null"`
	AfterPoints    int64     `gorm:"column:after_points;not null"`
	SourceType     int16     `gorm:"column:source_type;not null;index"`
	SourceID       *string   `gorm:"column:source_id;size:64"`
	OrderNo        *string   `gorm:"column:order_no;size:64;index"`
	TaskCode       *string   `gorm:"column:task_code;size:50;index"`
	Title          string    `gorm:"column:title;size:200;not null"`
	Remark         *string   `gorm:"column:remark;size:500"`
	OperatorID     *int64    `gorm:"column:operator_id"`
	OperatorName   *string   `gorm:"column:operator_name;size:64"`
	ClientIP       *string   `gorm:"column:client_ip;size:50"`
	IdempotencyKey *string   `gorm:"column:idempotency_key;size:128;uniqueIndex"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index:idx_member_point_logs_member_time,priority:2"`
}

func (LedgerEntryModel) TableName() string {
	return "member_point_logs"
}

// TaskDefinitionModel 任務定義
type TaskDefinitionModel struct {
	TaskID       int64      `gorm:"column:task_id;primaryKey;autoIncrement"`
	TaskCode     string     `gorm:"column:task_code;size:50;uniqueIndex;not null"`
	TaskName     string     `gorm:"column:task_name;size:100;not null"`
	TaskType     int16      `gorm:"column:task_type;not null;index"`
	TaskCategory *string    `gorm:"column:task_category;size:50"`
	PointValue   int64      `gorm:"column:point_value;not null"`
	DailyLimit   int        `gorm:"column:daily_limit;not null;default:0"`
	TotalLimit   int        `gorm:"column:total_limit;not null;default:0"`
	Icon         *string    `gorm:"column:icon;size:255"`
	Description  *string    `gorm:"column:description;size:500"`
	JumpURL      *string    `gorm:"column:jump_url;size:255"`
	SortOrder    int        `gorm:"column:sort_order;not null;default:0"`
	Status       int16      `gorm:"column:status;not null;default:1;index"`
	StartTime    *time.Time `gorm:"column:start_time"`
	EndTime      *time.Time `gorm:"column:end_time"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null"`
}

func (TaskDefinitionModel) TableName() string {
	return "point_tasks"
}

// TaskCompletionModel 任務完成記錄
//
// (member_id, task_code, biz_id) 唯一；biz_id 為 NULL 的記錄不受約束。
type TaskCompletionModel struct {
	RecordID      int64     `gorm:"column:record_id;primaryKey;autoIncrement"`
	MemberID      int64     `gorm:"column:member_id;not null;index:idx_member_task_records_day,priority:1;uniqueIndex:uk_member_task_records_biz,priority:1"`
	TaskID        int64     `gorm:"column:task_id;not null"`
	TaskCode      string    `gorm:"column:task_code;size:50;not null;index:idx_member_task_records_day,priority:2;uniqueIndex:uk_member_task_records_biz,priority:2"`
	TaskType      int16     `gorm:"column:task_type;not null"`
	PointValue    int64     `gorm:"column:point_value;not null"`
	CompleteDate  string    `gorm:"column:complete_date;size:10;not null;index:idx_member_task_records_day,priority:3"`
	CompleteCount int64     `gorm:"column:complete_count;not null;default:1"`
	BizID         *string   `gorm:"column:biz_id;size:64;uniqueIndex:uk_member_task_records_biz,priority:3"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
}

func (TaskCompletionModel) TableName() string {
	return "member_task_records"
}

// GrowthTaskModel 成長任務狀態，(member_id, task_code) 唯一
type GrowthTaskModel struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	MemberID     int64      `gorm:"column:member_id;not null;uniqueIndex:uk_member_growth_tasks_member_task,priority:1"`
	TaskID       int64      `gorm:"column:task_id;not null"`
	TaskCode     string     `gorm:"column:task_code;size:50;not null;uniqueIndex:uk_member_growth_tasks_member_task,priority:2"`
	IsCompleted  bool       `gorm:"column:is_completed;not null;default:false"`
	CompleteTime *time.Time `gorm:"column:complete_time"`
	PointValue   int64      `gorm:"column:point_value;not null;default:0"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null"`
}

func (GrowthTaskModel) TableName() string {
	return "member_growth_tasks"
}

// JobAttemptModel 背景任務處理結果
type JobAttemptModel struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	JobID     string         `gorm:"column:job_id;size:36;not null;index"`
	Queue     string         `gorm:"column:queue;size:50;not null"`
	Kind      string         `gorm:"column:kind;size:50;not null"`
	Outcome   string         `gorm:"column:outcome;size:20;not null;index"`
	Reason    *string        `gorm:"column:reason;size:64"`
	Attempts  int            `gorm:"column:attempts;not null"`
	LastError *string        `gorm:"column:last_error;size:1000"`
	Payload   datatypes.JSON `gorm:"column:payload"`
	CreatedAt time.Time      `gorm:"column:created_at;not null"`
}

func (JobAttemptModel) TableName() string {
	return "job_attempts"
}

// allModels AutoMigrate 的模型列表
func allModels() []interface{} {
	return []interface{}{
		&PointAccountModel{},
		&LedgerEntryModel{},
		&TaskDefinitionModel{},
		&TaskCompletionModel{},
		&GrowthTaskModel{},
		&JobAttemptModel{},
	}
}
