package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ===========================
// GORM PointAccountRepository 實作
// ===========================

// GORMPointAccountRepository 只負責 Domain ↔ GORM 轉換與錯誤映射，不含業務邏輯
type GORMPointAccountRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPointAccountRepository 創建積分帳戶倉儲
func NewPointAccountRepository(db *gorm.DB) *GORMPointAccountRepository {
	return &GORMPointAccountRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ points.PointAccountRepository = (*GORMPointAccountRepository)(nil)

// GetOrCreate 查詢帳戶，不存在時建立零餘額帳戶
func (r *GORMPointAccountRepository) GetOrCreate(ctx context.Context, tx shared.TransactionContext, memberID points.MemberID) (*points.PointAccount, error) {
	db := dbFor(ctx, r.db, tx)
	if err := r.insertIfAbsent(db, memberID); err != nil {
		return nil, err
	}
	return r.find(db, memberID)
}

// LockForUpdate 取得會員帳戶行的寫鎖
//
// 步驟：
// 1. INSERT ... ON CONFLICT DO NOTHING 保證帳戶存在（並發建立不會報錯）
// 2. UPDATE updated_at 取得行寫鎖（所有方言通用，SQLite 無 FOR UPDATE）
// 3. 讀取鎖定後的最新狀態
//
// 之後同一會員的其他事務在步驟 2 阻塞，直到本事務提交或回滾。
func (r *GORMPointAccountRepository) LockForUpdate(ctx context.Context, tx shared.TransactionContext, memberID points.MemberID) (*points.PointAccount, error) {
	if !inTransaction(tx) {
		return nil, points.ErrTransactionRequired.WithContext("operation", "lock account", "member_id", memberID.Value())
	}
	db := dbFor(ctx, r.db, tx)

	if err := r.insertIfAbsent(db, memberID); err != nil {
		return nil, err
	}

	result := db.Model(&PointAccountModel{}).
		Where("member_id = ?", memberID.Value()).
		Update("updated_at", r.now())
	if result.Error != nil {
		return nil, wrapRepositoryError("lock account", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, points.ErrAccountNotFound.WithContext("member_id", memberID.Value())
	}

	return r.find(db, memberID)
}

// Update 條件更新餘額
//
// WHERE member_id = ? AND version = ?，成功時 version + 1。
// RowsAffected = 0 表示帳戶已被其他事務修改（或不存在）。
func (r *GORMPointAccountRepository) Update(ctx context.Context, tx shared.TransactionContext, account *points.PointAccount) error {
	if !inTransaction(tx) {
		return points.ErrTransactionRequired.WithContext("operation", "update account")
	}
	db := dbFor(ctx, r.db, tx)

	columns := accountBalanceColumns(account)
	columns["version"] = gorm.Expr("version + 1")

	result := db.Model(&PointAccountModel{}).
		Where("member_id = ? AND version = ?", account.MemberID().Value(), account.Version()).
		Updates(columns)
	if result.Error != nil {
		return wrapRepositoryError("update account", result.Error)
	}
	if result.RowsAffected == 0 {
		return points.ErrVersionConflict.WithContext(
			"member_id", account.MemberID().Value(),
			"version", account.Version(),
		)
	}
	return nil
}

// FindByMemberID 查詢帳戶，不存在返回 ErrAccountNotFound
func (r *GORMPointAccountRepository) FindByMemberID(ctx context.Context, tx shared.TransactionContext, memberID points.MemberID) (*points.PointAccount, error) {
	return r.find(dbFor(ctx, r.db, tx), memberID)
}

func (r *GORMPointAccountRepository) find(db *gorm.DB, memberID points.MemberID) (*points.PointAccount, error) {
	var model PointAccountModel
	if err := db.Where("member_id = ?", memberID.Value()).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, points.ErrAccountNotFound.WithContext("member_id", memberID.Value())
		}
		return nil, wrapRepositoryError("find account", err)
	}
	return accountToDomain(&model)
}

func (r *GORMPointAccountRepository) insertIfAbsent(db *gorm.DB, memberID points.MemberID) error {
	account, err := points.NewPointAccount(memberID, r.now())
	if err != nil {
		return err
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}},
		DoNothing: true,
	}).Create(accountToGORM(account))
	if result.Error != nil {
		return wrapRepositoryError("create account", result.Error)
	}
	return nil
}
