package domain

import (
	"time"
)

// IntervalUnit is the number of seconds one interval step spans.
type IntervalUnit int64

const (
	IntervalNone    IntervalUnit = 1
	IntervalKm      IntervalUnit = 1000
	IntervalHourly  IntervalUnit = 3600
	IntervalDaily   IntervalUnit = 86400
	IntervalWeekly  IntervalUnit = 604800
	IntervalMonthly IntervalUnit = 2592000
	IntervalYearly  IntervalUnit = 31536000
)

// Seconds returns the unit length as a duration.
func (u IntervalUnit) Seconds() time.Duration {
	return time.Duration(u) * time.Second
}

type Maintenance struct {
	ID                uint64        `gorm:"primaryKey" json:"id"`
	TenantID          string        `gorm:"index;not null" json:"tenantId"`
	MachineID         string        `gorm:"index" json:"machineId"`
	ParentID          *uint64       `gorm:"index" json:"parentId,omitempty"`
	Title             string        `gorm:"not null" json:"title"`
	Description       string        `json:"description"`
	Status            Status        `gorm:"type:varchar(16);index;not null" json:"status"`
	DueDate           *time.Time    `gorm:"index" json:"dueDate"`
	EarliestExecTime  *time.Time    `json:"earliestExecTime"`
	Completed         bool          `gorm:"not null;default:false" json:"completed"`
	CompletedAt       *time.Time    `json:"completedAt"`
	Interval          *float64      `json:"interval"`
	IntervalUnit      *IntervalUnit `json:"intervalUnit"`
	Copied            bool          `gorm:"not null;default:false" json:"copied"`
	IsInternal        bool          `json:"isInternal"`
	Responsible       string        `json:"responsible"`
	Category          string        `json:"category"`
	UseOperatingHours bool          `json:"useOperatingHours"`
	UseStrokes        bool          `json:"useStrokes"`
	UseDistance       bool          `json:"useDistance"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`

	Tasks     []Task     `json:"tasks,omitempty"`
	Comments  []Comment  `json:"comments,omitempty"`
	Files     []File     `json:"files,omitempty"`
	Documents []Document `gorm:"many2many:maintenance_documents" json:"documents,omitempty"`

	// derived, never stored
	PlannedTime       *float64 `gorm:"-" json:"plannedTime,omitempty"`
	ActuallySpendTime *float64 `gorm:"-" json:"actuallySpendTime,omitempty"`
}

// HasRecurrence reports whether completing the maintenance should spawn a successor.
func (m *Maintenance) HasRecurrence() bool {
	return m.Interval != nil && *m.Interval > 0 &&
		m.IntervalUnit != nil && *m.IntervalUnit != 0 &&
		m.EarliestExecTime != nil &&
		!m.Copied
}

// RefreshStatus re-derives the status unless the maintenance is completed.
func (m *Maintenance) RefreshStatus(now time.Time) {
	if m.Completed {
		m.Status = StatusCompleted
		return
	}
	m.Status = DeriveStatus(now, m.DueDate, m.EarliestExecTime)
}

// File references a stored file owned by the file service.
type File struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	TenantID      string    `gorm:"index;not null" json:"tenantId"`
	MaintenanceID uint64    `gorm:"index;not null" json:"maintenanceId"`
	FileID        string    `gorm:"not null" json:"fileId"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
}
