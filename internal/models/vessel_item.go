package models

import "time"

// VesselItem: Gemi bazlı kalem görünürlük override kaydı.
// (vessel_id, item_id) için satır yoksa kalem o gemide görünürdür (opt-out
// modeli). Satır sadece gemi ilk kez görünürlüğü değiştirdiğinde oluşur.
type VesselItem struct {
	ID        uint `gorm:"primaryKey"`
	VesselID  uint `gorm:"not null;uniqueIndex:uq_vessel_item"`
	Vessel    Vessel
	ItemID    uint `gorm:"not null;uniqueIndex:uq_vessel_item"`
	Item      Item
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
