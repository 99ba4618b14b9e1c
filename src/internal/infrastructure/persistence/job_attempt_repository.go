package persistence

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JobAttempt 背景任務的最終處理結果
type JobAttempt struct {
	ID        int64
	JobID     string
	Queue     string
	Kind      string
	Outcome   string
	Reason    string
	Attempts  int
	LastError string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// JobAttemptRepository 保存背景任務結果，供運維查詢失敗任務
type JobAttemptRepository struct {
	db *gorm.DB
}

// NewJobAttemptRepository 創建任務結果倉儲
func NewJobAttemptRepository(db *gorm.DB) *JobAttemptRepository {
	return &JobAttemptRepository{db: db}
}

// Save 寫入一條結果（auto-commit）
func (r *JobAttemptRepository) Save(ctx context.Context, attempt JobAttempt) error {
	createdAt := attempt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	model := &JobAttemptModel{
		JobID:     attempt.JobID,
		Queue:     attempt.Queue,
		Kind:      attempt.Kind,
		Outcome:   attempt.Outcome,
		Reason:    nullableString(attempt.Reason),
		Attempts:  attempt.Attempts,
		LastError: nullableString(truncate(attempt.LastError, 1000)),
		Payload:   datatypes.JSON(attempt.Payload),
		CreatedAt: createdAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return wrapRepositoryError("save job attempt", err)
	}
	return nil
}

// ListByJob 按寫入順序返回某任務的所有結果
func (r *JobAttemptRepository) ListByJob(ctx context.Context, jobID string) ([]JobAttempt, error) {
	var models []JobAttemptModel
	if err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, wrapRepositoryError("list job attempts", err)
	}
	return attemptsToDomain(models), nil
}

// ListByOutcome 最近的指定結果，limit <= 0 時不限制
func (r *JobAttemptRepository) ListByOutcome(ctx context.Context, outcome string, limit int) ([]JobAttempt, error) {
	query := r.db.WithContext(ctx).Where("outcome = ?", outcome).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []JobAttemptModel
	if err := query.Find(&models).Error; err != nil {
		return nil, wrapRepositoryError("list job attempts by outcome", err)
	}
	return attemptsToDomain(models), nil
}

func attemptsToDomain(models []JobAttemptModel) []JobAttempt {
	out := make([]JobAttempt, 0, len(models))
	for _, m := range models {
		out = append(out, JobAttempt{
			ID:        m.ID,
			JobID:     m.JobID,
			Queue:     m.Queue,
			Kind:      m.Kind,
			Outcome:   m.Outcome,
			Reason:    stringValue(m.Reason),
			Attempts:  m.Attempts,
			LastError: stringValue(m.LastError),
			Payload:   json.RawMessage(m.Payload),
			CreatedAt: m.CreatedAt,
		})
	}
	return out
}

// truncate 截斷到最多 max 位元組，不切開多位元組字元
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
