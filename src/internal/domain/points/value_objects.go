package points

import "fmt"

// ===========================
// PointsAmount 值對象
// ===========================

// PointsAmount 積分數量值對象（不可變、自我驗證）
type PointsAmount struct {
	value int64
}

// NewPointsAmount 建構函數（checked 版本）
//
// 建構約束：積分數量必須 >= 0
func NewPointsAmount(value int64) (PointsAmount, error) {
	if value < 0 {
		return PointsAmount{}, fmt.Errorf(
			"%w: attempted to create PointsAmount with value %d",
			ErrNegativePointsAmount,
			value,
		)
	}
	return PointsAmount{value: value}, nil
}

// NewPositivePointsAmount 建構操作用的積分數量，必須 > 0
func NewPositivePointsAmount(value int64) (PointsAmount, error) {
	if value <= 0 {
		return PointsAmount{}, ErrInvalidPointsAmount.WithContext("points", value)
	}
	return PointsAmount{value: value}, nil
}

// newPointsAmountUnchecked 內部建構函數，調用者保證 value >= 0
func newPointsAmountUnchecked(value int64) PointsAmount {
	return PointsAmount{value: value}
}

// Value 獲取積分數量
func (p PointsAmount) Value() int64 {
	return p.value
}

// IsZero 是否為 0
func (p PointsAmount) IsZero() bool {
	return p.value == 0
}

// Add 相加
func (p PointsAmount) Add(other PointsAmount) PointsAmount {
	return newPointsAmountUnchecked(p.value + other.value)
}

// Subtract 相減，不足時返回 ErrInsufficientPoints
func (p PointsAmount) Subtract(other PointsAmount) (PointsAmount, error) {
	if p.value < other.value {
		return PointsAmount{}, fmt.Errorf(
			"%w: cannot subtract %d from %d (insufficient balance)",
			ErrInsufficientPoints,
			other.value,
			p.value,
		)
	}
	return newPointsAmountUnchecked(p.value - other.value), nil
}

// LessThan 判斷是否小於另一個 PointsAmount
func (p PointsAmount) LessThan(other PointsAmount) bool {
	return p.value < other.value
}

// ===========================
// 流水分類枚舉
// ===========================

// ChangeType 積分變動類型（持久化為 smallint，數值不可更改）
type ChangeType int16

const (
	ChangeTypeEarn     ChangeType = 1 // 獲得
	ChangeTypeUse      ChangeType = 2 // 使用
	ChangeTypeFreeze   ChangeType = 3 // 凍結
	ChangeTypeUnfreeze ChangeType = 4 // 解凍
	ChangeTypeExpire   ChangeType = 5 // 過期
	ChangeTypeAdjust   ChangeType = 6 // 調整
)

var changeTypeNames = map[ChangeType]string{
	ChangeTypeEarn:     "earn",
	ChangeTypeUse:      "use",
	ChangeTypeFreeze:   "freeze",
	ChangeTypeUnfreeze: "unfreeze",
	ChangeTypeExpire:   "expire",
	ChangeTypeAdjust:   "adjust",
}

// IsValid 是否為已定義的變動類型
func (c ChangeType) IsValid() bool {
	_, ok := changeTypeNames[c]
	return ok
}

func (c ChangeType) String() string {
	if name, ok := changeTypeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("change_type(%d)", int16(c))
}

// SourceType 積分來源類型
type SourceType int16

const (
	SourceTypeTask     SourceType = 1 // 任務
	SourceTypeConsume  SourceType = 2 // 消費
	SourceTypeRefund   SourceType = 3 // 退款
	SourceTypeGift     SourceType = 4 // 贈送
	SourceTypeDeduct   SourceType = 5 // 扣除
	SourceTypeExpire   SourceType = 6 // 過期
	SourceTypeActivity SourceType = 7 // 活動
)

var sourceTypeNames = map[SourceType]string{
	SourceTypeTask:     "task",
	SourceTypeConsume:  "consume",
	SourceTypeRefund:   "refund",
	SourceTypeGift:     "gift",
	SourceTypeDeduct:   "deduct",
	SourceTypeExpire:   "expire",
	SourceTypeActivity: "activity",
}

// IsValid 是否為已定義的來源類型
func (s SourceType) IsValid() bool {
	_, ok := sourceTypeNames[s]
	return ok
}

func (s SourceType) String() string {
	if name, ok := sourceTypeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("source_type(%d)", int16(s))
}
