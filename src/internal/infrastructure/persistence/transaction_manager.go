package persistence

import (
	"context"
	"fmt"

	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"gorm.io/gorm"
)

// GORMTransactionManager 以 GORM 實作 shared.TransactionManager
type GORMTransactionManager struct {
	db *gorm.DB
}

// NewGORMTransactionManager 創建事務管理器
func NewGORMTransactionManager(db *gorm.DB) *GORMTransactionManager {
	return &GORMTransactionManager{db: db}
}

// InTransaction 在單一事務中執行 fn
//
// - fn 返回錯誤：回滾，錯誤原樣返回
// - fn panic：回滾後重新 panic
// - 提交失敗：返回包裝後的錯誤
func (m *GORMTransactionManager) InTransaction(ctx context.Context, fn func(tx shared.TransactionContext) error) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	gtx := m.db.WithContext(ctx).Begin()
	if gtx.Error != nil {
		return fmt.Errorf("begin transaction: %w", gtx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			gtx.Rollback()
			panic(r)
		}
	}()

	if err := fn(NewGORMTransactionContext(gtx)); err != nil {
		gtx.Rollback()
		return err
	}

	if err := gtx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
