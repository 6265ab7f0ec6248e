package comment

import (
	"context"
	"wartungsmanager/internal/domain"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Attach(ctx context.Context, kind domain.OwnerKind, comment *domain.Comment) error
	ListByOwner(ctx context.Context, tenantID string, kind domain.OwnerKind, ownerID uint64) ([]domain.Comment, error)
	Delete(ctx context.Context, tenantID string, id uint64) error
}

type CommentRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) CommentRepository {
	return &CommentRepositoryImpl{db: db}
}

// ownerExists checks that the owning record is visible to the tenant.
func ownerExists(tx *gorm.DB, tenantID string, kind domain.OwnerKind, ownerID uint64) error {
	var model interface{} = &domain.Maintenance{}
	if kind == domain.OwnerTask {
		model = &domain.Task{}
	}

	var count int64
	err := tx.Model(model).Where("id = ? AND tenant_id = ?", ownerID, tenantID).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func ownerColumn(kind domain.OwnerKind) string {
	if kind == domain.OwnerTask {
		return "task_id"
	}
	return "maintenance_id"
}

func (r *CommentRepositoryImpl) Attach(ctx context.Context, kind domain.OwnerKind, comment *domain.Comment) error {
	ownerID := comment.MaintenanceID
	if kind == domain.OwnerTask {
		ownerID = comment.TaskID
	}
	if ownerID == nil {
		return gorm.ErrRecordNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ownerExists(tx, comment.TenantID, kind, *ownerID); err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
}

func (r *CommentRepositoryImpl) ListByOwner(ctx context.Context, tenantID string, kind domain.OwnerKind, ownerID uint64) ([]domain.Comment, error) {
	db := r.db.WithContext(ctx)
	if err := ownerExists(db, tenantID, kind, ownerID); err != nil {
		return nil, err
	}

	var comments []domain.Comment
	err := db.Where(ownerColumn(kind)+" = ? AND tenant_id = ?", ownerID, tenantID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepositoryImpl) Delete(ctx context.Context, tenantID string, id uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&domain.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
