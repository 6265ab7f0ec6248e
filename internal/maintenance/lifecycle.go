package maintenance

import (
	"fmt"
	"time"
	"wartungsmanager/internal/document"
	"wartungsmanager/internal/domain"
	"wartungsmanager/internal/recurrence"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// completionBlocked reports whether a maintenance may not be completed yet:
// open tasks remain or the earliest execution time lies in the future.
func completionBlocked(m *domain.Maintenance, openTasks int64, now time.Time) bool {
	if openTasks > 0 {
		return true
	}
	return m.EarliestExecTime != nil && m.EarliestExecTime.After(now)
}

// advancesOnRollover reports whether the sweep rolls m forward by its interval.
// Any other overdue maintenance is rolled over as a same-date copy.
func advancesOnRollover(m *domain.Maintenance) bool {
	return m.DueDate != nil &&
		m.Interval != nil && *m.Interval > 0 &&
		m.IntervalUnit != nil && *m.IntervalUnit > 0
}

// checkRecurrence rejects a configured interval whose step cannot be computed.
// A zero or missing interval switches recurrence off and always passes.
func checkRecurrence(m *domain.Maintenance) error {
	if m.Interval == nil || *m.Interval <= 0 || m.IntervalUnit == nil {
		return nil
	}
	return recurrence.ValidateInterval(*m.Interval, *m.IntervalUnit)
}

// claimSource marks the source as copied. Only the caller that flips the flag
// may create a successor, which keeps recurrence spawns at one per source.
func claimSource(tx *gorm.DB, id uint64) (bool, error) {
	result := tx.Model(&domain.Maintenance{}).
		Where("id = ? AND copied = ?", id, false).
		Update("copied", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// nextDates advances both temporal fields of src by one interval.
func nextDates(src *domain.Maintenance) (due, earliest *time.Time, err error) {
	due, err = recurrence.Advance(src.DueDate, *src.Interval, *src.IntervalUnit)
	if err != nil {
		return nil, nil, fmt.Errorf("advance due date: %w", err)
	}
	earliest, err = recurrence.Advance(src.EarliestExecTime, *src.Interval, *src.IntervalUnit)
	if err != nil {
		return nil, nil, fmt.Errorf("advance earliest execution time: %w", err)
	}
	return due, earliest, nil
}

// successorOf builds an unsaved copy of src. Identity, completion state,
// comments and files stay with the source.
func successorOf(src *domain.Maintenance) *domain.Maintenance {
	successor := &domain.Maintenance{
		TenantID:          src.TenantID,
		MachineID:         src.MachineID,
		Title:             src.Title,
		Description:       src.Description,
		DueDate:           cloneTime(src.DueDate),
		EarliestExecTime:  cloneTime(src.EarliestExecTime),
		IsInternal:        src.IsInternal,
		Responsible:       src.Responsible,
		Category:          src.Category,
		UseOperatingHours: src.UseOperatingHours,
		UseStrokes:        src.UseStrokes,
		UseDistance:       src.UseDistance,
	}
	if src.Interval != nil {
		interval := *src.Interval
		successor.Interval = &interval
	}
	if src.IntervalUnit != nil {
		unit := *src.IntervalUnit
		successor.IntervalUnit = &unit
	}
	return successor
}

// persistCopy stores successor with fresh copies of the source tasks and the
// source's non-archived documents.
func persistCopy(tx *gorm.DB, src, successor *domain.Maintenance, now time.Time) error {
	successor.RefreshStatus(now)
	if err := tx.Omit(clause.Associations).Create(successor).Error; err != nil {
		return fmt.Errorf("create successor: %w", err)
	}

	var documentIDs []uint64
	for _, doc := range src.Documents {
		if !doc.Archive {
			documentIDs = append(documentIDs, doc.ID)
		}
	}
	if len(documentIDs) > 0 {
		if err := document.ReconcileAssociations(tx, successor.TenantID, domain.OwnerMaintenance, successor.ID, documentIDs); err != nil {
			return fmt.Errorf("link successor documents: %w", err)
		}
	}

	successor.Tasks = make([]domain.Task, 0, len(src.Tasks))
	for _, task := range src.Tasks {
		fresh := domain.Task{
			TenantID:      successor.TenantID,
			MaintenanceID: successor.ID,
			Name:          task.Name,
			Responsible:   task.Responsible,
			TargetTime:    task.TargetTime,
			TimeUnit:      task.TimeUnit,
			Position:      task.Position,
		}
		if err := tx.Omit(clause.Associations).Create(&fresh).Error; err != nil {
			return fmt.Errorf("copy task %d: %w", task.ID, err)
		}
		successor.Tasks = append(successor.Tasks, fresh)
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
