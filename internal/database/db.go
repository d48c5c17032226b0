package database

import (
	"log"

	"tedarik-backend/internal/config"
	"tedarik-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: Tüm entity'lerin şemasını uygular. Test fixture'ı da aynı şemayı
// kullanır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Vessel{},
		&models.User{},
		&models.Category{},
		&models.Company{},
		&models.Tag{},
		&models.Item{},
		&models.VesselItem{},
		&models.Requisition{},
		&models.RequisitionItem{},
		&models.AuditLog{},
	)
}
