package persistence

import (
	"context"

	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"gorm.io/gorm"
)

// ===========================
// GORM TransactionContext 實作
// ===========================

// gormTransactionContext 封裝事務中的 *gorm.DB，避免 GORM 洩漏到 Domain Layer
type gormTransactionContext struct {
	db *gorm.DB
}

// NewGORMTransactionContext 創建 GORM 事務上下文
func NewGORMTransactionContext(db *gorm.DB) shared.TransactionContext {
	return &gormTransactionContext{db: db}
}

// GetDB 獲取事務中的連接（僅供 Infrastructure Layer 使用）
func (c *gormTransactionContext) GetDB() *gorm.DB {
	return c.db
}

// dbFor 選擇本次操作使用的連接
//
// - tx 是 GORM 事務上下文：使用事務連接
// - 否則：使用預設連接（auto-commit）
func dbFor(ctx context.Context, fallback *gorm.DB, tx shared.TransactionContext) *gorm.DB {
	db := fallback
	if gtx, ok := tx.(*gormTransactionContext); ok && gtx != nil {
		db = gtx.GetDB()
	}
	if ctx != nil {
		db = db.WithContext(ctx)
	}
	return db
}

// inTransaction tx 是否為有效的 GORM 事務上下文
func inTransaction(tx shared.TransactionContext) bool {
	gtx, ok := tx.(*gormTransactionContext)
	return ok && gtx != nil
}
