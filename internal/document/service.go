package document

import (
	"context"
	defError "errors"
	"wartungsmanager/internal/domain"
	"wartungsmanager/internal/errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service interface {
	CreateDocument(ctx context.Context, tenantID string, input CreateDocumentRequest) (*domain.Document, error)
	GetDocument(ctx context.Context, tenantID string, id uint64) (*domain.Document, error)
	ListDocuments(ctx context.Context, tenantID string, archived *bool) ([]domain.Document, error)
	UpdateDocument(ctx context.Context, tenantID string, id uint64, patch DocumentPatch) (*domain.Document, error)
	ReconcileAssociations(ctx context.Context, tenantID string, kind domain.OwnerKind, ownerID uint64, desired []uint64) error
	PurgeOrphanedArchived(ctx context.Context) (int64, error)
}

type CreateDocumentRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=255"`
	Extension string `json:"extension" binding:"max=16"`
	FileID    string `json:"fileId" binding:"required"`
	Archive   bool   `json:"archive"`
}

type DocumentPatch struct {
	Title   *string `json:"title" binding:"omitempty,min=1,max=255"`
	Archive *bool   `json:"archive"`
}

type DefaultService struct {
	repository DocumentRepository
	logger     logrus.FieldLogger
}

func NewService(repository DocumentRepository, logger logrus.FieldLogger) Service {
	return &DefaultService{
		repository: repository,
		logger:     logger,
	}
}

func (s *DefaultService) CreateDocument(ctx context.Context, tenantID string, input CreateDocumentRequest) (*domain.Document, error) {
	doc := &domain.Document{
		TenantID:  tenantID,
		Title:     input.Title,
		Extension: input.Extension,
		FileID:    input.FileID,
		Archive:   input.Archive,
	}
	if err := s.repository.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DefaultService) GetDocument(ctx context.Context, tenantID string, id uint64) (*domain.Document, error) {
	doc, err := s.repository.FindByID(ctx, tenantID, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Document not found", err)
		}
		return nil, err
	}
	return doc, nil
}

func (s *DefaultService) ListDocuments(ctx context.Context, tenantID string, archived *bool) ([]domain.Document, error) {
	return s.repository.List(ctx, tenantID, archived)
}

func (s *DefaultService) UpdateDocument(ctx context.Context, tenantID string, id uint64, patch DocumentPatch) (*domain.Document, error) {
	doc, err := s.GetDocument(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Archive != nil {
		doc.Archive = *patch.Archive
	}
	if err := s.repository.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DefaultService) ReconcileAssociations(ctx context.Context, tenantID string, kind domain.OwnerKind, ownerID uint64, desired []uint64) error {
	return MapError(s.repository.ReconcileAssociations(ctx, tenantID, kind, ownerID, desired))
}

func (s *DefaultService) PurgeOrphanedArchived(ctx context.Context) (int64, error) {
	purged, err := s.repository.PurgeOrphanedArchived(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.WithField("purged", purged).Info("purged orphaned archived documents")
	return purged, nil
}

// MapError translates reconciliation failures into API errors
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case defError.Is(err, ErrUnknownDocument):
		return errors.UnprocessableEntity("Unknown document in documentIds", err)
	case defError.Is(err, gorm.ErrRecordNotFound):
		return errors.NotFound("Resource not found", err)
	default:
		return err
	}
}
