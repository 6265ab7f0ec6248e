package document

import (
	"context"
	"errors"
	"fmt"
	"wartungsmanager/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownDocument is returned when a desired document is not visible to the tenant.
var ErrUnknownDocument = errors.New("document does not exist")

type DocumentRepository interface {
	Create(ctx context.Context, document *domain.Document) error
	FindByID(ctx context.Context, tenantID string, id uint64) (*domain.Document, error)
	List(ctx context.Context, tenantID string, archived *bool) ([]domain.Document, error)
	Save(ctx context.Context, document *domain.Document) error
	ReconcileAssociations(ctx context.Context, tenantID string, kind domain.OwnerKind, ownerID uint64, desired []uint64) error
	PurgeOrphanedArchived(ctx context.Context) (int64, error)
}

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *domain.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *DocumentRepositoryImpl) FindByID(ctx context.Context, tenantID string, id uint64) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) List(ctx context.Context, tenantID string, archived *bool) ([]domain.Document, error) {
	var docs []domain.Document
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if archived != nil {
		query = query.Where("archive = ?", *archived)
	}
	err := query.Order("created_at DESC").Order("id DESC").Find(&docs).Error
	return docs, err
}

func (r *DocumentRepositoryImpl) Save(ctx context.Context, document *domain.Document) error {
	return r.db.WithContext(ctx).Save(document).Error
}

func (r *DocumentRepositoryImpl) ReconcileAssociations(ctx context.Context, tenantID string, kind domain.OwnerKind, ownerID uint64, desired []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ReconcileAssociations(tx, tenantID, kind, ownerID, desired)
	})
}

// ReconcileAssociations makes the owner's document set equal to desired inside tx:
// missing links are added, links absent from desired are removed.
func ReconcileAssociations(tx *gorm.DB, tenantID string, kind domain.OwnerKind, ownerID uint64, desired []uint64) error {
	owner, err := lockOwner(tx, tenantID, kind, ownerID)
	if err != nil {
		return err
	}

	var current []domain.Document
	if err := tx.Model(owner).Association("Documents").Find(&current); err != nil {
		return fmt.Errorf("load %s documents: %w", kind, err)
	}

	want := make(map[uint64]struct{}, len(desired))
	for _, id := range desired {
		want[id] = struct{}{}
	}
	have := make(map[uint64]struct{}, len(current))
	var remove []domain.Document
	for _, doc := range current {
		have[doc.ID] = struct{}{}
		if _, ok := want[doc.ID]; !ok {
			remove = append(remove, doc)
		}
	}
	var addIDs []uint64
	for id := range want {
		if _, ok := have[id]; !ok {
			addIDs = append(addIDs, id)
		}
	}

	if len(addIDs) > 0 {
		var add []domain.Document
		if err := tx.Where("id IN ? AND tenant_id = ?", addIDs, tenantID).Find(&add).Error; err != nil {
			return err
		}
		if len(add) != len(addIDs) {
			return ErrUnknownDocument
		}
		if err := tx.Model(owner).Association("Documents").Append(&add); err != nil {
			return fmt.Errorf("link %s documents: %w", kind, err)
		}
	}

	if len(remove) > 0 {
		if err := tx.Model(owner).Association("Documents").Delete(&remove); err != nil {
			return fmt.Errorf("unlink %s documents: %w", kind, err)
		}
	}
	return nil
}

// lockOwner loads the owner row FOR UPDATE so concurrent reconciliations serialize
func lockOwner(tx *gorm.DB, tenantID string, kind domain.OwnerKind, ownerID uint64) (interface{}, error) {
	var owner interface{}
	switch kind {
	case domain.OwnerMaintenance:
		owner = &domain.Maintenance{}
	case domain.OwnerTask:
		owner = &domain.Task{}
	default:
		return nil, fmt.Errorf("unknown document owner kind %q", kind)
	}

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ?", ownerID, tenantID).
		First(owner).Error
	if err != nil {
		return nil, err
	}
	return owner, nil
}

// PurgeOrphanedArchived deletes archived documents without any maintenance or
// task link. The existence checks run in the DELETE itself, so a link added
// before the statement executes keeps the document.
func (r *DocumentRepositoryImpl) PurgeOrphanedArchived(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM documents
		WHERE archive = ?
		  AND NOT EXISTS (SELECT 1 FROM maintenance_documents md WHERE md.document_id = documents.id)
		  AND NOT EXISTS (SELECT 1 FROM task_documents td WHERE td.document_id = documents.id)
	`, true)
	return result.RowsAffected, result.Error
}
