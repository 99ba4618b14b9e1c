package shared

import (
	"github.com/google/uuid"
)

// EntityID 泛型 UUID 識別符
//
// T 是標記類型，只用於編譯期區分不同實體的 ID：
//
//	type jobMarker struct{}
//	type JobID = shared.EntityID[jobMarker]
//
// 會員與帳戶使用資料庫自增整數，UUID 識別符用於任務信封（Job）與領域事件。
type EntityID[T any] struct {
	value uuid.UUID
}

// NewEntityID 生成新的 ID（UUID v4）
func NewEntityID[T any]() EntityID[T] {
	return EntityID[T]{value: uuid.New()}
}

// EntityIDFromString 從字串解析 ID
//
// errTemplate 是解析失敗時返回的錯誤；若支援 WithContext（如 DomainError），
// 會附帶輸入值與解析錯誤。
func EntityIDFromString[T any](s string, errTemplate error) (EntityID[T], error) {
	id, err := uuid.Parse(s)
	if err != nil {
		if domainErr, ok := errTemplate.(interface {
			WithContext(keyValues ...interface{}) error
		}); ok {
			return EntityID[T]{}, domainErr.WithContext(
				"input", s,
				"parse_error", err.Error(),
			)
		}
		return EntityID[T]{}, errTemplate
	}
	return EntityID[T]{value: id}, nil
}

// String 返回小寫標準格式
func (id EntityID[T]) String() string {
	return id.value.String()
}

// IsEmpty 是否為零值
func (id EntityID[T]) IsEmpty() bool {
	return id.value == uuid.Nil
}

// Equals 比較兩個同類型 ID
func (id EntityID[T]) Equals(other EntityID[T]) bool {
	return id.value == other.value
}
