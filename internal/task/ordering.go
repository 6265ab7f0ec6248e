package task

import (
	"errors"
	"fmt"
	"wartungsmanager/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPositionOutOfRange is returned when a move target is outside 0..n-1.
var ErrPositionOutOfRange = errors.New("task position out of range")

// lockMaintenance serializes every position change of one maintenance.
func lockMaintenance(tx *gorm.DB, tenantID string, maintenanceID uint64) error {
	var m domain.Maintenance
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ? AND tenant_id = ?", maintenanceID, tenantID).
		First(&m).Error
}

// shiftForInsert makes room at the front: every sibling moves back by one.
func shiftForInsert(tx *gorm.DB, maintenanceID uint64) error {
	return tx.Model(&domain.Task{}).
		Where("maintenance_id = ? AND position IS NOT NULL", maintenanceID).
		Update("position", gorm.Expr("position + 1")).Error
}

// movePosition moves a task from one slot to another and shifts the tasks in
// between by one so positions stay dense.
func movePosition(tx *gorm.DB, maintenanceID, taskID uint64, from, to int) error {
	var count int64
	if err := tx.Model(&domain.Task{}).Where("maintenance_id = ?", maintenanceID).Count(&count).Error; err != nil {
		return err
	}
	if to < 0 || int64(to) >= count {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrPositionOutOfRange, to, count)
	}
	if to == from {
		return nil
	}

	siblings := tx.Model(&domain.Task{}).Where("maintenance_id = ?", maintenanceID)
	var err error
	if to > from {
		err = siblings.Where("position > ? AND position <= ?", from, to).
			Update("position", gorm.Expr("position - 1")).Error
	} else {
		err = siblings.Where("position < ? AND position >= ?", from, to).
			Update("position", gorm.Expr("position + 1")).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&domain.Task{}).Where("id = ?", taskID).Update("position", to).Error
}

// closeGap pulls every sibling behind position forward by one.
func closeGap(tx *gorm.DB, maintenanceID uint64, position int) error {
	return tx.Model(&domain.Task{}).
		Where("maintenance_id = ? AND position > ?", maintenanceID, position).
		Update("position", gorm.Expr("position - 1")).Error
}
