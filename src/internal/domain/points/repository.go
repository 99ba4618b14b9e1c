package points

import (
	"context"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
)

// ===========================
// Repository 介面
// ===========================

// PointAccountRepository 積分帳戶倉儲
//
// 介面定義在 Domain Layer，由 Infrastructure Layer 實作。
type PointAccountRepository interface {
	// GetOrCreate 查詢帳戶，不存在時建立零餘額帳戶（不加鎖）
	GetOrCreate(ctx context.Context, tx shared.TransactionContext, memberID MemberID) (*PointAccount, error)

	// LockForUpdate 在事務中取得帳戶行的寫鎖，必要時先建立帳戶
	// 鎖持有到事務結束；tx 為 nil 時返回 ErrTransactionRequired
	LockForUpdate(ctx context.Context, tx shared.TransactionContext, memberID MemberID) (*PointAccount, error)

	// Update 條件更新（version 相符才寫入），未命中返回 ErrVersionConflict
	Update(ctx context.Context, tx shared.TransactionContext, account *PointAccount) error

	// FindByMemberID 查詢帳戶，不存在返回 ErrAccountNotFound
	FindByMemberID(ctx context.Context, tx shared.TransactionContext, memberID MemberID) (*PointAccount, error)
}

// LedgerFilter 流水分頁查詢條件
type LedgerFilter struct {
	MemberID   MemberID
	ChangeType *ChangeType
	Offset     int
	Limit      int
}

// LedgerRepository 積分流水倉儲（只追加）
type LedgerRepository interface {
	// Append 寫入一條流水，返回帶 ID 的副本
	Append(ctx context.Context, tx shared.TransactionContext, entry *LedgerEntry) (*LedgerEntry, error)

	// FindByIdempotencyKey 查詢去重鍵對應的流水，不存在返回 (nil, nil)
	FindByIdempotencyKey(ctx context.Context, tx shared.TransactionContext, key string) (*LedgerEntry, error)

	// ListByMember 按建立順序倒序分頁，返回當頁記錄與總數
	ListByMember(ctx context.Context, tx shared.TransactionContext, filter LedgerFilter) ([]*LedgerEntry, int64, error)

	// LastByMember 最新一條流水，不存在返回 (nil, nil)
	LastByMember(ctx context.Context, tx shared.TransactionContext, memberID MemberID) (*LedgerEntry, error)

	// SumEarned since 之後的獲得類流水總和
	SumEarned(ctx context.Context, tx shared.TransactionContext, memberID MemberID, since time.Time) (int64, error)
}
