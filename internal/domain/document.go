package domain

import "time"

type Document struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"index;not null" json:"tenantId"`
	Title     string    `gorm:"not null" json:"title"`
	Extension string    `json:"extension"`
	Archive   bool      `gorm:"not null;default:false;index" json:"archive"`
	FileID    string    `json:"fileId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnerKind names the record type a document association hangs off.
type OwnerKind string

const (
	OwnerMaintenance OwnerKind = "maintenance"
	OwnerTask        OwnerKind = "task"
)
