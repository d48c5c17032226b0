package models

import "time"

// Company: Üretici ve/veya tedarikçi firma
type Company struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:100;not null"`
	Website        string `gorm:"size:255"`
	Email          string `gorm:"size:100"`
	Phone          string `gorm:"size:50"`
	Comments       string `gorm:"size:255"`
	IsManufacturer bool   `gorm:"not null;default:false"`
	IsSupplier     bool   `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
