package domain

import "time"

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusDueSoon   Status = "dueSoon"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusDueSoon, StatusOverdue, StatusCompleted:
		return true
	}
	return false
}

// DeriveStatus computes the status of a not yet completed maintenance.
// A passed due date wins over a passed earliest execution time.
func DeriveStatus(now time.Time, dueDate, earliestExecTime *time.Time) Status {
	if dueDate != nil && now.After(*dueDate) {
		return StatusOverdue
	}
	if earliestExecTime != nil && now.After(*earliestExecTime) {
		return StatusDueSoon
	}
	return StatusScheduled
}
