package persistence

import (
	"errors"
	"strings"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"gorm.io/gorm"
)

// isUniqueConstraintError 判斷是否為唯一約束錯誤
//
// 開啟 TranslateError 時驅動會轉為 gorm.ErrDuplicatedKey；其餘情況比對錯誤訊息：
// - SQLite: "UNIQUE constraint failed"
// - PostgreSQL: "duplicate key value violates unique constraint"
// - MySQL: "Duplicate entry"
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "duplicate entry")
}

// repositoryError 包裝資料庫錯誤，保留原始錯誤供 errors.Is 使用
type repositoryError struct {
	domain error
	cause  error
}

func (e *repositoryError) Error() string {
	return e.domain.Error() + ": " + e.cause.Error()
}

func (e *repositoryError) Unwrap() []error {
	return []error{e.domain, e.cause}
}

func wrapRepositoryError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &repositoryError{
		domain: points.ErrRepository.WithContext("operation", operation),
		cause:  err,
	}
}
