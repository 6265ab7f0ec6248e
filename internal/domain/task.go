package domain

import "time"

type Task struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	TenantID      string     `gorm:"index;not null" json:"tenantId"`
	MaintenanceID uint64     `gorm:"index;not null" json:"maintenanceId"`
	Name          string     `gorm:"not null" json:"name"`
	Responsible   string     `json:"responsible"`
	Completed     bool       `gorm:"not null;default:false" json:"completed"`
	CompletedDate *time.Time `json:"completedDate"`
	TargetTime    float64    `json:"targetTime"`
	TimeUnit      float64    `gorm:"not null;default:1" json:"timeUnit"`
	Position      int        `gorm:"not null;default:0" json:"position"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Comments  []Comment  `json:"comments,omitempty"`
	Documents []Document `gorm:"many2many:task_documents" json:"documents,omitempty"`
}

// SetCompleted flips the completion flag and stamps completedDate on false->true.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	switch {
	case completed && !t.Completed:
		t.CompletedDate = &now
	case !completed:
		t.CompletedDate = nil
	}
	t.Completed = completed
}
