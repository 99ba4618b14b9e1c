package shared

import "context"

// TransactionContext 事務上下文介面
//
// 行為約定：
// - tx != nil：在調用者的事務中執行
// - tx == nil：使用 auto-commit 模式（只適用於讀操作）
//
// 修改狀態的 Repository 方法（Update、Append、Record、MarkCompleted）必須在事務中調用；
// 帳戶行鎖（LockForUpdate）只在事務內有意義，傳入 nil 會返回錯誤。
//
// 這是一個標記介面，具體實作（GORM）位於 Infrastructure Layer。
type TransactionContext interface{}

// TransactionManager 事務管理器介面
//
// fn 返回錯誤時整個事務回滾，錯誤原樣返回給調用者；
// fn 返回 nil 時提交。ctx 取消會中止尚未提交的事務。
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(tx TransactionContext) error) error
}
