package models

import "time"

type Vessel struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100;not null"`
	IMONumber  string `gorm:"size:20;uniqueIndex"` // Opsiyonel IMO numarası
	Flag       string `gorm:"size:50"`
	VesselType string `gorm:"size:50"`
	Email      string `gorm:"size:100"`
	IsActive   bool   `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Users []User
}
