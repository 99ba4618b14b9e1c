package member

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
)

// ===========================
// 會員身份
// ===========================

// 會員的註冊、資料與登入由外部身份系統負責，本系統只消費已認證的會員 ID。

// ParseID 解析外部傳入的會員 ID（如 HTTP header、JWT claim）
func ParseID(raw string) (points.MemberID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, ErrInvalidMemberID.WithContext("input", raw, "reason", "empty")
	}

	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, ErrInvalidMemberID.WithContext("input", raw, "parse_error", err.Error())
	}

	id, err := points.NewMemberID(value)
	if err != nil {
		return 0, ErrInvalidMemberID.WithContext("input", raw, "reason", "must be positive")
	}
	return id, nil
}

type contextKey struct{}

// WithID 將已認證的會員 ID 放入 context
func WithID(ctx context.Context, id points.MemberID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IDFromContext 取出會員 ID
func IDFromContext(ctx context.Context) (points.MemberID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(contextKey{}).(points.MemberID)
	if !ok || id.IsEmpty() {
		return 0, false
	}
	return id, true
}

// IdentitySource 提供當前請求的會員身份
type IdentitySource interface {
	MemberID(ctx context.Context) (points.MemberID, error)
}

// ContextIdentity 從 context 讀取由上游中介層放入的會員 ID
type ContextIdentity struct{}

// MemberID 實現 IdentitySource
func (ContextIdentity) MemberID(ctx context.Context) (points.MemberID, error) {
	id, ok := IDFromContext(ctx)
	if !ok {
		return 0, ErrMemberMissing
	}
	return id, nil
}
