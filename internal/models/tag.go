package models

import "time"

type Tag struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:50;not null;unique"`
	Slug      string `gorm:"size:50;not null;unique"` // ör: "spare-part"
	Color     string `gorm:"size:7;default:#6b7280"`  // hex renk
	CreatedAt time.Time
	UpdatedAt time.Time
}
