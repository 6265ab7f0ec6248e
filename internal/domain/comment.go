package domain

import "time"

// Comment is a time log entry attached to a maintenance or to a task.
type Comment struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	TenantID      string    `gorm:"index;not null" json:"tenantId"`
	MaintenanceID *uint64   `gorm:"index" json:"maintenanceId,omitempty"`
	TaskID        *uint64   `gorm:"index" json:"taskId,omitempty"`
	Duration      float64   `json:"duration"`
	TimeUnit      float64   `gorm:"not null;default:1" json:"timeUnit"`
	Responsible   *string   `json:"responsible"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"createdAt"`
}
