package persistence

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/task"
	"gopkg.in/yaml.v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskSeed 任務目錄配置檔中的一項
type TaskSeed struct {
	Code        string     `yaml:"code"`
	Name        string     `yaml:"name"`
	Type        string     `yaml:"type"` // daily | growth
	Category    string     `yaml:"category"`
	PointValue  int64      `yaml:"point_value"`
	DailyLimit  int        `yaml:"daily_limit"`
	TotalLimit  int        `yaml:"total_limit"`
	Icon        string     `yaml:"icon"`
	Description string     `yaml:"description"`
	JumpURL     string     `yaml:"jump_url"`
	SortOrder   int        `yaml:"sort_order"`
	Disabled    bool       `yaml:"disabled"`
	StartTime   *time.Time `yaml:"start_time"`
	EndTime     *time.Time `yaml:"end_time"`
}

type catalogFile struct {
	Tasks []TaskSeed `yaml:"tasks"`
}

// LoadCatalogSeed 讀取 YAML 任務目錄
func LoadCatalogSeed(path string) ([]TaskSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	return ParseCatalogSeed(raw)
}

// ParseCatalogSeed 解析 YAML 任務目錄
func ParseCatalogSeed(raw []byte) ([]TaskSeed, error) {
	var file catalogFile
	if err := yaml.UnmarshalStrict(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return file.Tasks, nil
}

// DefaultCatalogSeed 內建任務目錄
func DefaultCatalogSeed() []TaskSeed {
	return []TaskSeed{
		{Code: "daily_checkin", Name: "每日簽到", Type: "daily", Category: "daily", PointValue: 10, DailyLimit: 1, Description: "每日簽到獲得積分", SortOrder: 1},
		{Code: "daily_post", Name: "發布動態", Type: "daily", Category: "daily", PointValue: 20, DailyLimit: 3, Description: "每日發布動態，最多 3 次", SortOrder: 2},
		{Code: "daily_comment", Name: "評論互動", Type: "daily", Category: "daily", PointValue: 5, DailyLimit: 5, Description: "每日評論，最多 5 次", SortOrder: 3},
		{Code: "daily_like", Name: "點讚", Type: "daily", Category: "daily", PointValue: 2, DailyLimit: 10, Description: "每日點讚，最多 10 次", SortOrder: 4},
		{Code: "daily_share", Name: "分享內容", Type: "daily", Category: "daily", PointValue: 10, DailyLimit: 3, Description: "每日分享，最多 3 次", SortOrder: 5},
		{Code: "first_post", Name: "首次發帖", Type: "growth", Category: "growth", PointValue: 50, Description: "發布第一條動態", SortOrder: 1},
		{Code: "first_follow", Name: "首次關注", Type: "growth", Category: "growth", PointValue: 20, Description: "關注第一位用戶", SortOrder: 2},
		{Code: "first_purchase", Name: "首次購買", Type: "growth", Category: "growth", PointValue: 100, Description: "完成第一筆訂單", SortOrder: 3},
		{Code: "first_avatar", Name: "設置頭像", Type: "growth", Category: "growth", PointValue: 30, Description: "上傳個人頭像", SortOrder: 4},
		{Code: "first_bio", Name: "完善簡介", Type: "growth", Category: "growth", PointValue: 20, Description: "填寫個人簡介", SortOrder: 5},
		{Code: "invite_user", Name: "邀請好友", Type: "growth", Category: "growth", PointValue: 50, Description: "邀請好友註冊", SortOrder: 6},
	}
}

// Definition 轉換並驗證為任務定義
func (s TaskSeed) Definition() (*task.Definition, error) {
	typ, err := task.ParseTypeCode(s.Type)
	if err != nil {
		return nil, err
	}
	kind, err := task.NewKind(typ, s.DailyLimit, s.TotalLimit)
	if err != nil {
		return nil, err
	}

	status := task.StatusEnabled
	if s.Disabled {
		status = task.StatusDisabled
	}

	def := &task.Definition{
		Code:        s.Code,
		Name:        s.Name,
		Kind:        kind,
		Category:    s.Category,
		PointValue:  s.PointValue,
		Status:      status,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Icon:        s.Icon,
		Description: s.Description,
		JumpURL:     s.JumpURL,
		SortOrder:   s.SortOrder,
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// SeedCatalog 依 task_code upsert 任務定義，已存在的任務以配置覆蓋
func SeedCatalog(ctx context.Context, db *gorm.DB, seeds []TaskSeed) error {
	now := time.Now().UTC()

	models := make([]*TaskDefinitionModel, 0, len(seeds))
	for _, seed := range seeds {
		def, err := seed.Definition()
		if err != nil {
			return fmt.Errorf("seed task %q: %w", seed.Code, err)
		}
		models = append(models, taskToGORM(def, now))
	}
	if len(models) == 0 {
		return nil
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "task_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"task_name", "task_type", "task_category", "point_value",
			"daily_limit", "total_limit", "icon", "description", "jump_url",
			"sort_order", "status", "start_time", "end_time", "updated_at",
		}),
	}).Create(&models).Error
	if err != nil {
		return wrapRepositoryError("seed task catalog", err)
	}
	return nil
}
