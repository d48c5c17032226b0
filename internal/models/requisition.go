package models

import (
	"time"

	"github.com/google/uuid"
)

type RequisitionStatus string

const (
	StatusDraft             RequisitionStatus = "draft"
	StatusRFQSent           RequisitionStatus = "rfq_sent"
	StatusOrdered           RequisitionStatus = "ordered"
	StatusPartiallyReceived RequisitionStatus = "partially_received"
	StatusReceived          RequisitionStatus = "received"
	StatusCancelled         RequisitionStatus = "cancelled"
)

// Requisition: Bir geminin satın alma talebi (birden fazla kalem içerir)
type Requisition struct {
	ID         uint `gorm:"primaryKey"`
	VesselID   uint `gorm:"index;not null"`
	Vessel     Vessel
	SupplierID *uint
	Supplier   *Company          `gorm:"foreignKey:SupplierID"`
	Status     RequisitionStatus `gorm:"size:20;not null;default:draft;index"`
	OrderedAt  *time.Time        // sadece ordered'a geçişte bir kez damgalanır
	Notes      string            `gorm:"size:255"`
	IsActive   bool              `gorm:"not null;default:true"`
	CreatedBy  uuid.UUID         `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items []RequisitionItem `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE"`
}

// RequisitionItem: Talep içindeki her kalem satırı.
// Her satır için 0 <= ReceivedQty <= Quantity korunur.
type RequisitionItem struct {
	ID            uint `gorm:"primaryKey"`
	RequisitionID uint `gorm:"index;not null"`
	ItemID        uint `gorm:"index;not null"`
	Item          Item
	SupplierID    *uint
	Supplier      *Company `gorm:"foreignKey:SupplierID"`
	Quantity      int      `gorm:"not null"`
	ReceivedQty   int      `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
