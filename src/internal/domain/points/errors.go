package points

import "github.com/jackyeh168/member_rewards/src/internal/domain/shared"

// ===========================
// 錯誤代碼定義
// ===========================

// 錯誤代碼常量
const (
	// 積分數量相關
	ErrCodeNegativePointsAmount   shared.ErrorCode = "POINTS_NEGATIVE"
	ErrCodeInvalidPointsAmount    shared.ErrorCode = "POINTS_INVALID"
	ErrCodeInsufficientPoints     shared.ErrorCode = "POINTS_INSUFFICIENT"
	ErrCodeInsufficientFrozen     shared.ErrorCode = "FROZEN_POINTS_INSUFFICIENT"
	ErrCodeInvalidLevelPointsRate shared.ErrorCode = "LEVEL_POINTS_RATIO_INVALID"

	// 帳戶相關
	ErrCodeInvalidMemberID   shared.ErrorCode = "MEMBER_ID_INVALID"
	ErrCodeAccountNotFound   shared.ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeVersionConflict   shared.ErrorCode = "ACCOUNT_VERSION_CONFLICT"
	ErrCodeCorruptedAccount  shared.ErrorCode = "ACCOUNT_CORRUPTED"
	ErrCodeTransactionNeeded shared.ErrorCode = "TRANSACTION_REQUIRED"

	// 流水相關
	ErrCodeLedgerImbalance shared.ErrorCode = "LEDGER_IMBALANCE"
	ErrCodeInvalidLedger   shared.ErrorCode = "LEDGER_INVALID"
	ErrCodeOrderConflict   shared.ErrorCode = "ORDER_CONFLICT"

	// 基礎設施
	ErrCodeRepository shared.ErrorCode = "REPOSITORY_ERROR"
)

// 積分數量相關錯誤
var (
	ErrNegativePointsAmount = &shared.DomainError{
		Code:    ErrCodeNegativePointsAmount,
		Message: "積分數量不能為負數",
	}

	// ErrInvalidPointsAmount 操作積分必須 > 0
	ErrInvalidPointsAmount = &shared.DomainError{
		Code:    ErrCodeInvalidPointsAmount,
		Message: "無效的積分數量",
	}

	ErrInsufficientPoints = &shared.DomainError{
		Code:    ErrCodeInsufficientPoints,
		Message: "積分餘額不足",
	}

	ErrInsufficientFrozenPoints = &shared.DomainError{
		Code:    ErrCodeInsufficientFrozen,
		Message: "凍結積分不足",
	}

	ErrInvalidLevelPointsRatio = &shared.DomainError{
		Code:    ErrCodeInvalidLevelPointsRate,
		Message: "等級積分比例不能為負數",
	}
)

// 帳戶相關錯誤
var (
	ErrInvalidMemberID = &shared.DomainError{
		Code:    ErrCodeInvalidMemberID,
		Message: "無效的會員 ID",
	}

	ErrAccountNotFound = &shared.DomainError{
		Code:    ErrCodeAccountNotFound,
		Message: "積分帳戶不存在",
	}

	// ErrVersionConflict 條件更新（version CAS）未命中任何行
	ErrVersionConflict = &shared.DomainError{
		Code:    ErrCodeVersionConflict,
		Message: "積分帳戶已被並發修改",
	}

	ErrCorruptedAccount = &shared.DomainError{
		Code:    ErrCodeCorruptedAccount,
		Message: "資料庫中的積分帳戶數據不合法",
	}

	ErrTransactionRequired = &shared.DomainError{
		Code:    ErrCodeTransactionNeeded,
		Message: "此操作必須在事務中執行",
	}
)

// 流水相關錯誤
var (
	ErrLedgerImbalance = &shared.DomainError{
		Code:    ErrCodeLedgerImbalance,
		Message: "流水前後餘額與變動值不一致",
	}

	ErrInvalidLedgerEntry = &shared.DomainError{
		Code:    ErrCodeInvalidLedger,
		Message: "無效的積分流水",
	}

	// ErrOrderConflict 同一訂單號的重複請求與已入帳的流水不一致
	ErrOrderConflict = &shared.DomainError{
		Code:    ErrCodeOrderConflict,
		Message: "訂單號已用於不同的積分變動",
	}
)

// ErrRepository 包裝無法歸類的資料庫錯誤
var ErrRepository = &shared.DomainError{
	Code:    ErrCodeRepository,
	Message: "資料存取失敗",
}
