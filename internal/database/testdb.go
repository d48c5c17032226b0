package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB: Şeması uygulanmış, in-memory bir test veritabanı açar.
// Paylaşımlı in-memory sqlite tek bağlantı üzerinden kullanılmalı, yoksa
// havuzdaki her bağlantı ayrı bir boş veritabanı görür.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB alınamadı: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("test şeması uygulanamadı: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })

	return db
}
