package maintenance

import (
	"time"
	"wartungsmanager/internal/domain"
)

type CreateMaintenanceRequest struct {
	MachineID         string               `json:"machineId" binding:"max=64"`
	Title             string               `json:"title" binding:"required,min=1,max=255"`
	Description       string               `json:"description"`
	DueDate           *time.Time           `json:"dueDate"`
	EarliestExecTime  *time.Time           `json:"earliestExecTime"`
	Interval          *float64             `json:"interval" binding:"omitempty,gte=0,max=100000"`
	IntervalUnit      *domain.IntervalUnit `json:"intervalUnit" binding:"omitempty,oneof=1 1000 3600 86400 604800 2592000 31536000"`
	IsInternal        bool                 `json:"isInternal"`
	Responsible       string               `json:"responsible" binding:"max=255"`
	Category          string               `json:"category" binding:"max=64"`
	UseOperatingHours bool                 `json:"useOperatingHours"`
	UseStrokes        bool                 `json:"useStrokes"`
	UseDistance       bool                 `json:"useDistance"`
	DocumentIDs       []uint64             `json:"documentIds"`
}

// MaintenancePatch lists every field a client may change. Status, completion
// and lineage fields are owned by the lifecycle engine. DocumentIDs is the
// complete desired document set. A null value leaves a field unchanged, so the
// optional scheduling fields are reset to null by naming them in Clear.
type MaintenancePatch struct {
	MachineID         *string              `json:"machineId" binding:"omitempty,max=64"`
	Title             *string              `json:"title" binding:"omitempty,min=1,max=255"`
	Description       *string              `json:"description"`
	DueDate           *time.Time           `json:"dueDate"`
	EarliestExecTime  *time.Time           `json:"earliestExecTime"`
	Interval          *float64             `json:"interval" binding:"omitempty,gte=0,max=100000"`
	IntervalUnit      *domain.IntervalUnit `json:"intervalUnit" binding:"omitempty,oneof=1 1000 3600 86400 604800 2592000 31536000"`
	IsInternal        *bool                `json:"isInternal"`
	Responsible       *string              `json:"responsible" binding:"omitempty,max=255"`
	Category          *string              `json:"category" binding:"omitempty,max=64"`
	UseOperatingHours *bool                `json:"useOperatingHours"`
	UseStrokes        *bool                `json:"useStrokes"`
	UseDistance       *bool                `json:"useDistance"`
	DocumentIDs       []uint64             `json:"documentIds"`
	Clear             []string             `json:"clear" binding:"omitempty,dive,oneof=dueDate earliestExecTime interval intervalUnit"`
}

func (p MaintenancePatch) apply(m *domain.Maintenance) {
	if p.MachineID != nil {
		m.MachineID = *p.MachineID
	}
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.DueDate != nil {
		due := p.DueDate.UTC()
		m.DueDate = &due
	}
	if p.EarliestExecTime != nil {
		earliest := p.EarliestExecTime.UTC()
		m.EarliestExecTime = &earliest
	}
	if p.Interval != nil {
		m.Interval = p.Interval
	}
	if p.IntervalUnit != nil {
		m.IntervalUnit = p.IntervalUnit
	}
	if p.IsInternal != nil {
		m.IsInternal = *p.IsInternal
	}
	if p.Responsible != nil {
		m.Responsible = *p.Responsible
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.UseOperatingHours != nil {
		m.UseOperatingHours = *p.UseOperatingHours
	}
	if p.UseStrokes != nil {
		m.UseStrokes = *p.UseStrokes
	}
	if p.UseDistance != nil {
		m.UseDistance = *p.UseDistance
	}

	for _, field := range p.Clear {
		switch field {
		case "dueDate":
			m.DueDate = nil
		case "earliestExecTime":
			m.EarliestExecTime = nil
		case "interval":
			m.Interval = nil
		case "intervalUnit":
			m.IntervalUnit = nil
		}
	}
}

// ListFilter narrows a maintenance listing. Zero values do not filter.
type ListFilter struct {
	MachineID string        `form:"machineId"`
	Status    domain.Status `form:"status" binding:"omitempty,oneof=scheduled dueSoon overdue completed"`
	Completed *bool         `form:"completed"`
}

type MaintenancesMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

type PaginatedMaintenances struct {
	Data []domain.Maintenance `json:"data"`
	Meta MaintenancesMeta     `json:"meta"`
}

// CompletionResult tells the caller whether completion took effect. A blocked
// completion returns the unchanged maintenance with Completed false.
type CompletionResult struct {
	Maintenance *domain.Maintenance `json:"maintenance"`
	Completed   bool                `json:"completed"`
	Successor   *domain.Maintenance `json:"successor,omitempty"`
}

// SweepReport summarises one run of the daily status sweep.
type SweepReport struct {
	RunID      string `json:"runId"`
	Overdue    int    `json:"overdue"`
	RolledOver int    `json:"rolledOver"`
	Failed     int    `json:"failed"`
	DueSoon    int    `json:"dueSoon"`
}

// SweepRef identifies a maintenance touched by the sweep.
type SweepRef struct {
	ID       uint64
	TenantID string
}
