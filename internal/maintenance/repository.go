package maintenance

import (
	"context"
	"fmt"
	"time"
	"wartungsmanager/internal/document"
	"wartungsmanager/internal/domain"
	"wartungsmanager/internal/task"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MaintenanceRepository interface {
	Create(ctx context.Context, m *domain.Maintenance, documentIDs []uint64) error
	FindByID(ctx context.Context, tenantID string, id uint64) (*domain.Maintenance, error)
	List(ctx context.Context, tenantID string, filter ListFilter, page, pageSize int) ([]domain.Maintenance, MaintenancesMeta, error)
	Update(ctx context.Context, tenantID string, id uint64, patch MaintenancePatch, now time.Time) error
	Delete(ctx context.Context, tenantID string, id uint64) error
	AttachDerivedTimes(ctx context.Context, m *domain.Maintenance) error

	Complete(ctx context.Context, tenantID string, id uint64, now time.Time) (*CompletionResult, error)
	Copy(ctx context.Context, tenantID string, id uint64, now time.Time) (*domain.Maintenance, error)
	RollOver(ctx context.Context, id uint64, now time.Time) (*domain.Maintenance, error)
	MarkOverdue(ctx context.Context, now time.Time) ([]SweepRef, error)
	MarkDueSoon(ctx context.Context, now time.Time) ([]SweepRef, error)
}

type MaintenanceRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) MaintenanceRepository {
	return &MaintenanceRepositoryImpl{db: db}
}

func (r *MaintenanceRepositoryImpl) Create(ctx context.Context, m *domain.Maintenance, documentIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return err
		}
		if len(documentIDs) == 0 {
			return nil
		}
		return document.ReconcileAssociations(tx, m.TenantID, domain.OwnerMaintenance, m.ID, documentIDs)
	})
}

// withRelations preloads tasks in position order together with documents and files.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Tasks.Documents").
		Preload("Documents").
		Preload("Files")
}

func (r *MaintenanceRepositoryImpl) FindByID(ctx context.Context, tenantID string, id uint64) (*domain.Maintenance, error) {
	var m domain.Maintenance
	err := withRelations(r.db.WithContext(ctx)).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaintenanceRepositoryImpl) List(ctx context.Context, tenantID string, filter ListFilter, page, pageSize int) ([]domain.Maintenance, MaintenancesMeta, error) {
	var maintenances []domain.Maintenance
	var totalRecords int64

	query := r.db.WithContext(ctx).Model(&domain.Maintenance{}).Where("tenant_id = ?", tenantID)
	if filter.MachineID != "" {
		query = query.Where("machine_id = ?", filter.MachineID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}

	if err := query.Count(&totalRecords).Error; err != nil {
		return nil, MaintenancesMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("due_date ASC").
		Order("id ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&maintenances).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return maintenances, MaintenancesMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

// lockMaintenance loads the row FOR UPDATE.
func lockMaintenance(tx *gorm.DB, tenantID string, id uint64) (*domain.Maintenance, error) {
	var m domain.Maintenance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaintenanceRepositoryImpl) Update(ctx context.Context, tenantID string, id uint64, patch MaintenancePatch, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockMaintenance(tx, tenantID, id)
		if err != nil {
			return err
		}

		patch.apply(m)
		if err := checkRecurrence(m); err != nil {
			return err
		}
		m.RefreshStatus(now)
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}
		return document.ReconcileAssociations(tx, tenantID, domain.OwnerMaintenance, m.ID, patch.DocumentIDs)
	})
}

// Delete removes the maintenance with its tasks, comments, files and document
// links. Successors keep existing but lose their parent reference.
func (r *MaintenanceRepositoryImpl) Delete(ctx context.Context, tenantID string, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockMaintenance(tx, tenantID, id); err != nil {
			return err
		}

		var taskIDs []uint64
		if err := tx.Model(&domain.Task{}).Where("maintenance_id = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if err := task.DeleteTasks(tx, taskIDs); err != nil {
			return err
		}
		if err := tx.Where("maintenance_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("maintenance_id = ?", id).Delete(&domain.File{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM maintenance_documents WHERE maintenance_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Maintenance{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Maintenance{}, id).Error
	})
}

// AttachDerivedTimes computes plannedTime over all tasks and actuallySpendTime
// over the comments of completed tasks.
func (r *MaintenanceRepositoryImpl) AttachDerivedTimes(ctx context.Context, m *domain.Maintenance) error {
	var planned, spent float64
	db := r.db.WithContext(ctx)

	err := db.Raw(`
		SELECT COALESCE(SUM(target_time * time_unit), 0)
		FROM tasks
		WHERE maintenance_id = ?
	`, m.ID).Scan(&planned).Error
	if err != nil {
		return fmt.Errorf("planned time: %w", err)
	}

	err = db.Raw(`
		SELECT COALESCE(SUM(c.duration * c.time_unit), 0)
		FROM comments c
		JOIN tasks t ON t.id = c.task_id
		WHERE t.maintenance_id = ? AND t.completed = ?
	`, m.ID, true).Scan(&spent).Error
	if err != nil {
		return fmt.Errorf("actually spend time: %w", err)
	}

	m.PlannedTime = &planned
	m.ActuallySpendTime = &spent
	return nil
}

// Complete marks the maintenance completed unless a guard blocks it and, for
// a recurring maintenance that has not been copied yet, creates the successor
// with its tasks in the same transaction.
func (r *MaintenanceRepositoryImpl) Complete(ctx context.Context, tenantID string, id uint64, now time.Time) (*CompletionResult, error) {
	result := &CompletionResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockMaintenance(tx, tenantID, id)
		if err != nil {
			return err
		}
		if m.Completed {
			return nil
		}

		var openTasks int64
		if err := tx.Model(&domain.Task{}).
			Where("maintenance_id = ? AND completed = ?", id, false).
			Count(&openTasks).Error; err != nil {
			return err
		}
		if completionBlocked(m, openTasks, now) {
			return nil
		}

		err = tx.Model(&domain.Maintenance{}).Where("id = ?", id).Updates(map[string]interface{}{
			"completed":    true,
			"status":       domain.StatusCompleted,
			"completed_at": now,
		}).Error
		if err != nil {
			return err
		}
		result.Completed = true

		if !m.HasRecurrence() {
			return nil
		}
		claimed, err := claimSource(tx, id)
		if err != nil || !claimed {
			return err
		}

		if err := withRelations(tx).First(m, id).Error; err != nil {
			return err
		}
		successor, err := r.spawnSuccessor(tx, m, now)
		if err != nil {
			return err
		}
		result.Successor = successor
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Maintenance, err = r.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := r.AttachDerivedTimes(ctx, result.Maintenance); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *MaintenanceRepositoryImpl) spawnSuccessor(tx *gorm.DB, src *domain.Maintenance, now time.Time) (*domain.Maintenance, error) {
	due, earliest, err := nextDates(src)
	if err != nil {
		return nil, err
	}
	successor := successorOf(src)
	successor.DueDate = due
	successor.EarliestExecTime = earliest
	successor.ParentID = &src.ID
	if err := persistCopy(tx, src, successor, now); err != nil {
		return nil, err
	}
	return successor, nil
}

// Copy duplicates a maintenance with unchanged dates. The source is not
// claimed, so the copy does not count as its recurrence successor.
func (r *MaintenanceRepositoryImpl) Copy(ctx context.Context, tenantID string, id uint64, now time.Time) (*domain.Maintenance, error) {
	var copyID uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src domain.Maintenance
		if err := withRelations(tx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&src).Error; err != nil {
			return err
		}
		successor := successorOf(&src)
		if err := persistCopy(tx, &src, successor, now); err != nil {
			return err
		}
		copyID = successor.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, tenantID, copyID)
}

// RollOver creates the successor of an overdue maintenance. A recurring source
// is claimed and its successor advanced by one interval. Any other source gets a
// copy with unchanged dates and is not claimed. It returns nil when nothing was
// created, e.g. the source was completed or claimed in the meantime.
func (r *MaintenanceRepositoryImpl) RollOver(ctx context.Context, id uint64, now time.Time) (*domain.Maintenance, error) {
	var successor *domain.Maintenance
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src domain.Maintenance
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&src, id).Error; err != nil {
			return err
		}
		if src.Completed {
			return nil
		}

		if !advancesOnRollover(&src) {
			if err := withRelations(tx).First(&src, id).Error; err != nil {
				return err
			}
			successor = successorOf(&src)
			successor.ParentID = &src.ID
			return persistCopy(tx, &src, successor, now)
		}

		claimed, err := claimSource(tx, id)
		if err != nil || !claimed {
			return err
		}
		if err := withRelations(tx).First(&src, id).Error; err != nil {
			return err
		}
		successor, err = r.spawnSuccessor(tx, &src, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return successor, nil
}

// MarkOverdue moves every open maintenance with a passed due date to overdue
// and returns the rows it changed.
func (r *MaintenanceRepositoryImpl) MarkOverdue(ctx context.Context, now time.Time) ([]SweepRef, error) {
	var refs []SweepRef
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Maintenance{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "tenant_id").
			Where("completed = ? AND status <> ? AND due_date IS NOT NULL AND due_date < ?", false, domain.StatusOverdue, now).
			Order("id ASC").
			Find(&refs).Error
		if err != nil || len(refs) == 0 {
			return err
		}
		return tx.Model(&domain.Maintenance{}).
			Where("id IN ?", refIDs(refs)).
			Update("status", domain.StatusOverdue).Error
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// MarkDueSoon moves every scheduled maintenance whose earliest execution time
// has passed to dueSoon.
func (r *MaintenanceRepositoryImpl) MarkDueSoon(ctx context.Context, now time.Time) ([]SweepRef, error) {
	var refs []SweepRef
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Maintenance{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "tenant_id").
			Where("completed = ? AND status = ? AND earliest_exec_time IS NOT NULL AND earliest_exec_time < ?", false, domain.StatusScheduled, now).
			Order("id ASC").
			Find(&refs).Error
		if err != nil || len(refs) == 0 {
			return err
		}
		return tx.Model(&domain.Maintenance{}).
			Where("id IN ?", refIDs(refs)).
			Update("status", domain.StatusDueSoon).Error
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func refIDs(refs []SweepRef) []uint64 {
	ids := make([]uint64, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return ids
}
