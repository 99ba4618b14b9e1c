package persistence

import (
	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
)

// ===========================
// Domain ↔ GORM Model 轉換函數
// ===========================

// accountToDomain 透過 ReconstructPointAccount 重建聚合根
// 數據庫中的負數餘額返回 ErrCorruptedAccount，由上層決定如何處理
func accountToDomain(model *PointAccountModel) (*points.PointAccount, error) {
	return points.ReconstructPointAccount(points.AccountSnapshot{
		ID:              model.ID,
		MemberID:        model.MemberID,
		TotalPoints:     model.TotalPoints,
		UsedPoints:      model.UsedPoints,
		AvailablePoints: model.AvailablePoints,
		FrozenPoints:    model.FrozenPoints,
		ExpiredPoints:   model.ExpiredPoints,
		LevelPoints:     model.LevelPoints,
		Version:         model.Version,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	})
}

// accountToGORM 聚合根 → GORM Model（聚合根已保證數據有效）
func accountToGORM(account *points.PointAccount) *PointAccountModel {
	s := account.Snapshot()
	return &PointAccountModel{
		ID:              s.ID,
		MemberID:        s.MemberID,
		TotalPoints:     s.TotalPoints,
		UsedPoints:      s.UsedPoints,
		AvailablePoints: s.AvailablePoints,
		FrozenPoints:    s.FrozenPoints,
		ExpiredPoints:   s.ExpiredPoints,
		LevelPoints:     s.LevelPoints,
		Version:         s.Version,
		CreatedAt:       s.CreatedAt.UTC(),
		UpdatedAt:       s.UpdatedAt.UTC(),
	}
}

// accountBalanceColumns Update 寫入的欄位
//
// 使用 map 而非 struct：GORM 的 Updates(struct) 會忽略零值，餘額歸零時不會寫入。
func accountBalanceColumns(account *points.PointAccount) map[string]interface{} {
	s := account.Snapshot()
	return map[string]interface{}{
		"total_points":     s.TotalPoints,
		"used_points":      s.UsedPoints,
		"available_points": s.AvailablePoints,
		"frozen_points":    s.FrozenPoints,
		"expired_points":   s.ExpiredPoints,
		"level_points":     s.LevelPoints,
		"updated_at":       s.UpdatedAt.UTC(),
	}
}
