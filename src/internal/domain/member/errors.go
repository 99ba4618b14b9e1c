package member

import "github.com/jackyeh168/member_rewards/src/internal/domain/shared"

// Member Domain 錯誤代碼常量
const (
	ErrCodeMemberMissing   shared.ErrorCode = "MEMBER_MISSING"
	ErrCodeInvalidMemberID shared.ErrorCode = "INVALID_MEMBER_ID"
)

var (
	// ErrMemberMissing 請求上下文中沒有會員身份
	ErrMemberMissing = &shared.DomainError{
		Code:    ErrCodeMemberMissing,
		Message: "請求中缺少會員身份",
	}

	ErrInvalidMemberID = &shared.DomainError{
		Code:    ErrCodeInvalidMemberID,
		Message: "無效的會員 ID 格式",
	}
)
