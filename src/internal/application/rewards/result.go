package rewards

import (
	"errors"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"github.com/jackyeh168/member_rewards/src/internal/domain/task"
)

// Reason 業務拒絕原因
type Reason string

const (
	ReasonTaskNotFound             Reason = "TaskNotFound"
	ReasonDailyLimitExceeded       Reason = "DailyLimitExceeded"
	ReasonTotalLimitExceeded       Reason = "TotalLimitExceeded"
	ReasonDuplicateBiz             Reason = "DuplicateBiz"
	ReasonAlreadyCompleted         Reason = "AlreadyCompleted"
	ReasonInvalidAmount            Reason = "InvalidAmount"
	ReasonInsufficientPoints       Reason = "InsufficientPoints"
	ReasonInsufficientFrozenPoints Reason = "InsufficientFrozenPoints"
	ReasonOrderConflict            Reason = "OrderConflict"
)

// 只有這些錯誤代碼屬於業務拒絕，其餘錯誤（含 REPOSITORY_ERROR）一律視為基礎設施錯誤
var reasonsByCode = map[shared.ErrorCode]Reason{
	task.ErrCodeTaskNotFound:           ReasonTaskNotFound,
	task.ErrCodeDailyLimitExceeded:     ReasonDailyLimitExceeded,
	task.ErrCodeTotalLimitExceeded:     ReasonTotalLimitExceeded,
	task.ErrCodeDuplicateBiz:           ReasonDuplicateBiz,
	task.ErrCodeAlreadyCompleted:       ReasonAlreadyCompleted,
	points.ErrCodeInvalidPointsAmount:  ReasonInvalidAmount,
	points.ErrCodeNegativePointsAmount: ReasonInvalidAmount,
	points.ErrCodeInsufficientPoints:   ReasonInsufficientPoints,
	points.ErrCodeInsufficientFrozen:   ReasonInsufficientFrozenPoints,
	points.ErrCodeOrderConflict:        ReasonOrderConflict,
}

// rejectionOf 判斷錯誤是否為業務拒絕
func rejectionOf(err error) (Reason, *shared.DomainError, bool) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return "", nil, false
	}
	reason, ok := reasonsByCode[domainErr.Code]
	if !ok {
		return "", nil, false
	}
	return reason, domainErr, true
}

// Result 積分操作結果
//
// Success = false 時 Reason 說明拒絕原因，帳戶與流水均未改變。
// Replayed = true 表示同一訂單已處理過，本次沒有任何寫入。
type Result struct {
	Success         bool
	Reason          Reason
	Message         string
	Points          int64
	AvailablePoints int64
	EntryID         int64
	Replayed        bool
}

func rejected(reason Reason, err *shared.DomainError) *Result {
	return &Result{
		Success: false,
		Reason:  reason,
		Message: err.Message,
	}
}
