package points

import (
	"github.com/shopspring/decimal"
)

// ===========================
// LevelPointsCalculator 領域服務
// ===========================

// LevelPointsCalculator 根據獲得的積分計算等級積分
//
// 業務規則：等級積分 = floor(積分 × 比例)，預設比例為 1。
type LevelPointsCalculator struct {
	ratio decimal.Decimal
}

// NewLevelPointsCalculator 比例不能為負數
func NewLevelPointsCalculator(ratio decimal.Decimal) (*LevelPointsCalculator, error) {
	if ratio.IsNegative() {
		return nil, ErrInvalidLevelPointsRatio.WithContext("ratio", ratio.String())
	}
	return &LevelPointsCalculator{ratio: ratio}, nil
}

// DefaultLevelPointsCalculator 1:1 計算
func DefaultLevelPointsCalculator() *LevelPointsCalculator {
	return &LevelPointsCalculator{ratio: decimal.NewFromInt(1)}
}

// Ratio 當前比例
func (c *LevelPointsCalculator) Ratio() decimal.Decimal {
	return c.ratio
}

// Calculate 向下取整；比例非負，結果必然 >= 0
func (c *LevelPointsCalculator) Calculate(amount PointsAmount) PointsAmount {
	level := decimal.NewFromInt(amount.Value()).Mul(c.ratio).Floor().IntPart()
	return newPointsAmountUnchecked(level)
}
