package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleCaptain    UserRole = "captain"
	RoleCrew       UserRole = "crew"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	VesselID     *uint     `gorm:"index"`
	Vessel       *Vessel
	Username     string   `gorm:"size:50;uniqueIndex;not null"`
	FullName     string   `gorm:"size:100"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	IsActive     bool     `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
