package task

import "github.com/jackyeh168/member_rewards/src/internal/domain/shared"

// 錯誤代碼常量
const (
	ErrCodeTaskNotFound        shared.ErrorCode = "TASK_NOT_FOUND"
	ErrCodeDailyLimitExceeded  shared.ErrorCode = "TASK_DAILY_LIMIT_EXCEEDED"
	ErrCodeTotalLimitExceeded  shared.ErrorCode = "TASK_TOTAL_LIMIT_EXCEEDED"
	ErrCodeDuplicateBiz        shared.ErrorCode = "TASK_DUPLICATE_BIZ"
	ErrCodeAlreadyCompleted    shared.ErrorCode = "TASK_ALREADY_COMPLETED"
	ErrCodeUnsupportedTaskType shared.ErrorCode = "TASK_TYPE_UNSUPPORTED"
	ErrCodeInvalidDefinition   shared.ErrorCode = "TASK_DEFINITION_INVALID"
)

var (
	// ErrTaskNotFound 任務不存在、已停用或不在有效期內
	ErrTaskNotFound = &shared.DomainError{
		Code:    ErrCodeTaskNotFound,
		Message: "任務不存在或已下線",
	}

	ErrDailyLimitExceeded = &shared.DomainError{
		Code:    ErrCodeDailyLimitExceeded,
		Message: "今日任務次數已達上限",
	}

	ErrTotalLimitExceeded = &shared.DomainError{
		Code:    ErrCodeTotalLimitExceeded,
		Message: "任務總次數已達上限",
	}

	// ErrDuplicateBiz 同一業務 ID 已獲得過該任務獎勵
	ErrDuplicateBiz = &shared.DomainError{
		Code:    ErrCodeDuplicateBiz,
		Message: "該業務已獲得過積分",
	}

	ErrAlreadyCompleted = &shared.DomainError{
		Code:    ErrCodeAlreadyCompleted,
		Message: "成長任務已完成",
	}

	ErrUnsupportedTaskType = &shared.DomainError{
		Code:    ErrCodeUnsupportedTaskType,
		Message: "不支援的任務類型",
	}

	ErrInvalidDefinition = &shared.DomainError{
		Code:    ErrCodeInvalidDefinition,
		Message: "無效的任務定義",
	}
)
