package persistence

import (
	"context"
	"testing"

	"gorm.io/gorm"
)

// ===========================
// 測試輔助函數
// ===========================

// setupTestDB 創建已遷移的 SQLite in-memory 資料庫，並寫入內建任務目錄
//
// 每個測試使用獨立的資料庫；單一連接保證 in-memory 數據在測試期間不會遺失。
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	db, err := Open(Config{Driver: DriverSQLite, DSN: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := SeedCatalog(context.Background(), db, DefaultCatalogSeed()); err != nil {
		t.Fatalf("Failed to seed task catalog: %v", err)
	}

	cleanup := func() {
		_ = Close(db)
	}
	return db, cleanup
}
