package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"gorm.io/gorm"
)

// GORMLedgerRepository 積分流水倉儲（只追加，不提供更新與刪除）
type GORMLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 創建流水倉儲
func NewLedgerRepository(db *gorm.DB) *GORMLedgerRepository {
	return &GORMLedgerRepository{db: db}
}

var _ points.LedgerRepository = (*GORMLedgerRepository)(nil)

// Append 寫入流水
func (r *GORMLedgerRepository) Append(ctx context.Context, tx shared.TransactionContext, entry *points.LedgerEntry) (*points.LedgerEntry, error) {
	if !inTransaction(tx) {
		return nil, points.ErrTransactionRequired.WithContext("operation", "append ledger entry")
	}

	model := ledgerToGORM(entry)
	if err := dbFor(ctx, r.db, tx).Create(model).Error; err != nil {
		return nil, wrapRepositoryError("append ledger entry", err)
	}
	return ledgerToDomain(model), nil
}

// FindByIdempotencyKey 不存在返回 (nil, nil)
func (r *GORMLedgerRepository) FindByIdempotencyKey(ctx context.Context, tx shared.TransactionContext, key string) (*points.LedgerEntry, error) {
	if key == "" {
		return nil, nil
	}

	var model LedgerEntryModel
	err := dbFor(ctx, r.db, tx).Where("idempotency_key = ?", key).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRepositoryError("find ledger entry by idempotency key", err)
	}
	return ledgerToDomain(&model), nil
}

// ListByMember 按 log_id 倒序分頁
func (r *GORMLedgerRepository) ListByMember(ctx context.Context, tx shared.TransactionContext, filter points.LedgerFilter) ([]*points.LedgerEntry, int64, error) {
	query := dbFor(ctx, r.db, tx).Model(&LedgerEntryModel{}).Where("member_id = ?", filter.MemberID.Value())
	if filter.ChangeType != nil {
		query = query.Where("change_type = ?", int16(*filter.ChangeType))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapRepositoryError("count ledger entries", err)
	}

	var models []LedgerEntryModel
	page := query.Order("log_id DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if err := page.Find(&models).Error; err != nil {
		return nil, 0, wrapRepositoryError("list ledger entries", err)
	}

	entries := make([]*points.LedgerEntry, 0, len(models))
	for i := range models {
		entries = append(entries, ledgerToDomain(&models[i]))
	}
	return entries, total, nil
}

// LastByMember 最新一條流水，不存在返回 (nil, nil)
func (r *GORMLedgerRepository) LastByMember(ctx context.Context, tx shared.TransactionContext, memberID points.MemberID) (*points.LedgerEntry, error) {
	var model LedgerEntryModel
	err := dbFor(ctx, r.db, tx).
		Where("member_id = ?", memberID.Value()).
		Order("log_id DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRepositoryError("find last ledger entry", err)
	}
	return ledgerToDomain(&model), nil
}

// SumEarned since 之後 change_type = 獲得 的變動總和
func (r *GORMLedgerRepository) SumEarned(ctx context.Context, tx shared.TransactionContext, memberID points.MemberID, since time.Time) (int64, error) {
	var total int64
	err := dbFor(ctx, r.db, tx).Model(&LedgerEntryModel{}).
		Select("COALESCE(SUM(change_value), 0)").
		Where("member_id = ? AND change_type = ? AND created_at >= ?",
			memberID.Value(), int16(points.ChangeTypeEarn), since.UTC()).
		Row().Scan(&total)
	if err != nil {
		return 0, wrapRepositoryError("sum earned points", err)
	}
	return total, nil
}

// ===========================
// Mapper
// ===========================

func ledgerToGORM(e *points.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		LogID:          e.ID,
		MemberID:       e.MemberID.Value(),
		ChangeType:     int16(e.ChangeType),
		ChangeValue:    e.ChangeValue,
		FrozenChange:   e.FrozenChange,
		BeforePoints:   e.BeforePoints,
		AfterPoints:    e.AfterPoints,
		SourceType:     int16(e.SourceType),
		SourceID:       nullableString(e.SourceID),
		OrderNo:        nullableString(e.OrderNo),
		TaskCode:       nullableString(e.TaskCode),
		Title:          e.Title,
		Remark:         nullableString(e.Remark),
		OperatorID:     nullableInt64(e.OperatorID),
		OperatorName:   nullableString(e.OperatorName),
		ClientIP:       nullableString(e.ClientIP),
		IdempotencyKey: nullableString(e.IdempotencyKey),
		CreatedAt:      e.CreatedAt.UTC(),
	}
}

func ledgerToDomain(m *LedgerEntryModel) *points.LedgerEntry {
	return &points.LedgerEntry{
		ID:             m.LogID,
		MemberID:       points.MemberID(m.MemberID),
		ChangeType:     points.ChangeType(m.ChangeType),
		ChangeValue:    m.ChangeValue,
		FrozenChange:   m.FrozenChange,
		BeforePoints:   m.BeforePoints,
		AfterPoints:    m.AfterPoints,
		SourceType:     points.SourceType(m.SourceType),
		SourceID:       stringValue(m.SourceID),
		OrderNo:        stringValue(m.OrderNo),
		TaskCode:       stringValue(m.TaskCode),
		Title:          m.Title,
		Remark:         stringValue(m.Remark),
		OperatorID:     int64Value(m.OperatorID),
		OperatorName:   stringValue(m.OperatorName),
		ClientIP:       stringValue(m.ClientIP),
		IdempotencyKey: stringValue(m.IdempotencyKey),
		CreatedAt:      m.CreatedAt,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullableInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func int64Value(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
