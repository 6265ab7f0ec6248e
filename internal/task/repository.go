package task

import (
	"context"
	"time"
	"wartungsmanager/internal/document"
	"wartungsmanager/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task, documentIDs []uint64) error
	FindByID(ctx context.Context, tenantID string, id uint64) (*domain.Task, error)
	ListByMaintenance(ctx context.Context, tenantID string, maintenanceID uint64) ([]domain.Task, error)
	Update(ctx context.Context, tenantID string, id uint64, patch TaskPatch, now time.Time) (*domain.Task, error)
	Move(ctx context.Context, tenantID string, id uint64, to int) (*domain.Task, error)
	Delete(ctx context.Context, tenantID string, id uint64) error
}

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

// Create inserts the task at position 0 and shifts its siblings back.
func (r *TaskRepositoryImpl) Create(ctx context.Context, task *domain.Task, documentIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockMaintenance(tx, task.TenantID, task.MaintenanceID); err != nil {
			return err
		}
		if err := shiftForInsert(tx, task.MaintenanceID); err != nil {
			return err
		}

		task.Position = 0
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}

		if len(documentIDs) > 0 {
			if err := document.ReconcileAssociations(tx, task.TenantID, domain.OwnerTask, task.ID, documentIDs); err != nil {
				return err
			}
		}
		return tx.Preload("Documents").First(task, task.ID).Error
	})
}

func (r *TaskRepositoryImpl) FindByID(ctx context.Context, tenantID string, id uint64) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) ListByMaintenance(ctx context.Context, tenantID string, maintenanceID uint64) ([]domain.Task, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Maintenance{}).
		Where("id = ? AND tenant_id = ?", maintenanceID, tenantID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var tasks []domain.Task
	err = r.db.WithContext(ctx).
		Preload("Documents").
		Where("maintenance_id = ? AND tenant_id = ?", maintenanceID, tenantID).
		Order("position ASC").
		Find(&tasks).Error
	return tasks, err
}

// inLockedTask runs fn with the task's maintenance locked and the task re-read under the lock.
func (r *TaskRepositoryImpl) inLockedTask(ctx context.Context, tenantID string, id uint64, fn func(tx *gorm.DB, task *domain.Task) error) error {
	var probe domain.Task
	if err := r.db.WithContext(ctx).Select("id", "maintenance_id").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&probe).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockMaintenance(tx, tenantID, probe.MaintenanceID); err != nil {
			return err
		}
		var task domain.Task
		if err := tx.Where("id = ? AND tenant_id = ?", id, tenantID).First(&task).Error; err != nil {
			return err
		}
		return fn(tx, &task)
	})
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, tenantID string, id uint64, patch TaskPatch, now time.Time) (*domain.Task, error) {
	var updated domain.Task
	err := r.inLockedTask(ctx, tenantID, id, func(tx *gorm.DB, task *domain.Task) error {
		if patch.Position != nil {
			if err := movePosition(tx, task.MaintenanceID, task.ID, task.Position, *patch.Position); err != nil {
				return err
			}
			task.Position = *patch.Position
		}

		if patch.Name != nil {
			task.Name = *patch.Name
		}
		if patch.Responsible != nil {
			task.Responsible = *patch.Responsible
		}
		if patch.TargetTime != nil {
			task.TargetTime = *patch.TargetTime
		}
		if patch.TimeUnit != nil {
			task.TimeUnit = *patch.TimeUnit
		}
		if patch.Completed != nil {
			task.SetCompleted(*patch.Completed, now)
		}

		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}
		if err := document.ReconcileAssociations(tx, tenantID, domain.OwnerTask, task.ID, patch.DocumentIDs); err != nil {
			return err
		}
		return tx.Preload("Documents").First(&updated, task.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *TaskRepositoryImpl) Move(ctx context.Context, tenantID string, id uint64, to int) (*domain.Task, error) {
	var moved *domain.Task
	err := r.inLockedTask(ctx, tenantID, id, func(tx *gorm.DB, task *domain.Task) error {
		if err := movePosition(tx, task.MaintenanceID, task.ID, task.Position, to); err != nil {
			return err
		}
		task.Position = to
		moved = task
		return nil
	})
	return moved, err
}

// Delete closes the position gap before removing the row together with its
// comments and document links.
func (r *TaskRepositoryImpl) Delete(ctx context.Context, tenantID string, id uint64) error {
	return r.inLockedTask(ctx, tenantID, id, func(tx *gorm.DB, task *domain.Task) error {
		if err := closeGap(tx, task.MaintenanceID, task.Position); err != nil {
			return err
		}
		return DeleteTasks(tx, []uint64{task.ID})
	})
}

// DeleteTasks removes task rows with their comments and document links inside tx.
func DeleteTasks(tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("task_id IN ?", ids).Delete(&domain.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM task_documents WHERE task_id IN ?", ids).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&domain.Task{}).Error
}
