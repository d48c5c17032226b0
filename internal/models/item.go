package models

import (
	"time"

	"github.com/google/uuid"
)

// Item: Global katalog kalemi. Tüm gemiler aynı kataloğu paylaşır;
// gemi bazlı görünürlük VesselItem override tablosuyla yönetilir.
type Item struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:100;not null;index"`
	Description    string `gorm:"size:255"`
	Unit           string `gorm:"size:20;not null"` // adet, litre, kg vs.
	CatalogueNr    string `gorm:"size:50;index"`
	CategoryID     uint   `gorm:"index;not null"`
	Category       Category
	ManufacturerID *uint
	Manufacturer   *Company `gorm:"foreignKey:ManufacturerID"`
	SupplierID     *uint
	Supplier       *Company  `gorm:"foreignKey:SupplierID"`
	IsActive       bool      `gorm:"not null;default:true"` // global kill-switch
	CreatedBy      uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Tags []Tag `gorm:"many2many:item_tags;"`
}
