package task

import (
	"strings"
	"time"
)

// ===========================
// 任務類型（封閉變體）
// ===========================

// TypeCode 任務類型代碼（持久化值）
type TypeCode int16

const (
	TypeDaily   TypeCode = 1 // 日常任務
	TypeGrowth  TypeCode = 2 // 成長任務
	TypeSpecial TypeCode = 3 // 特殊任務（目前不支援發放）
)

// ParseTypeCode 解析配置檔中的類型名稱
func ParseTypeCode(name string) (TypeCode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "daily":
		return TypeDaily, nil
	case "growth":
		return TypeGrowth, nil
	default:
		return 0, ErrUnsupportedTaskType.WithContext("type", name)
	}
}

// Kind 任務種類，只有 Daily 與 Growth 兩種實作
type Kind interface {
	TypeCode() TypeCode
	isKind()
}

// Daily 日常任務：每日可重複，受每日與總次數限制（0 表示不限）
type Daily struct {
	DailyLimit int
	TotalLimit int
}

func (Daily) TypeCode() TypeCode { return TypeDaily }
func (Daily) isKind()            {}

// DailyLimitReached 今日已完成次數是否達上限
func (d Daily) DailyLimitReached(todayCount int64) bool {
	return d.DailyLimit > 0 && todayCount >= int64(d.DailyLimit)
}

// TotalLimitReached 累計完成次數是否達上限
func (d Daily) TotalLimitReached(totalCount int64) bool {
	return d.TotalLimit > 0 && totalCount >= int64(d.TotalLimit)
}

// Growth 成長任務：每位會員一生只能完成一次
type Growth struct{}

func (Growth) TypeCode() TypeCode { return TypeGrowth }
func (Growth) isKind()            {}

// NewKind 根據持久化的類型代碼與限制建構 Kind
func NewKind(code TypeCode, dailyLimit, totalLimit int) (Kind, error) {
	switch code {
	case TypeDaily:
		if dailyLimit < 0 || totalLimit < 0 {
			return nil, ErrInvalidDefinition.WithContext(
				"daily_limit", dailyLimit,
				"total_limit", totalLimit,
			)
		}
		return Daily{DailyLimit: dailyLimit, TotalLimit: totalLimit}, nil
	case TypeGrowth:
		return Growth{}, nil
	default:
		return nil, ErrUnsupportedTaskType.WithContext("task_type", int16(code))
	}
}

// ===========================
// Definition
// ===========================

// Status 任務狀態
type Status int16

const (
	StatusEnabled  Status = 1
	StatusDisabled Status = 2
)

// Definition 任務定義（只讀，由運營維護）
type Definition struct {
	ID          int64
	Code        string
	Name        string
	Kind        Kind
	Category    string
	PointValue  int64
	Status      Status
	StartTime   *time.Time
	EndTime     *time.Time
	Icon        string
	Description string
	JumpURL     string
	SortOrder   int
}

// IsActive 已啟用且 now 位於有效期內（邊界包含，未設定的邊界不限制）
func (d *Definition) IsActive(now time.Time) bool {
	if d.Status != StatusEnabled {
		return false
	}
	if d.StartTime != nil && now.Before(*d.StartTime) {
		return false
	}
	if d.EndTime != nil && now.After(*d.EndTime) {
		return false
	}
	return true
}

// IsGrowthTask 是否為成長任務
func IsGrowthTask(d *Definition) bool {
	_, ok := d.Kind.(Growth)
	return ok
}

// Validate 檢查定義的基本合法性
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.Code) == "" {
		return ErrInvalidDefinition.WithContext("reason", "task code is required")
	}
	if d.Kind == nil {
		return ErrInvalidDefinition.WithContext("task_code", d.Code, "reason", "task kind is required")
	}
	if d.PointValue <= 0 {
		return ErrInvalidDefinition.WithContext("task_code", d.Code, "point_value", d.PointValue)
	}
	if d.StartTime != nil && d.EndTime != nil && d.EndTime.Before(*d.StartTime) {
		return ErrInvalidDefinition.WithContext("task_code", d.Code, "reason", "end_time before start_time")
	}
	return nil
}
