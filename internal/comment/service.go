package comment

import (
	"context"
	defError "errors"
	"wartungsmanager/internal/domain"
	"wartungsmanager/internal/errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service interface {
	AttachToMaintenance(ctx context.Context, tenantID string, maintenanceID uint64, input CreateCommentRequest) (*domain.Comment, error)
	AttachToTask(ctx context.Context, tenantID string, taskID uint64, input CreateCommentRequest) (*domain.Comment, error)
	ListForMaintenance(ctx context.Context, tenantID string, maintenanceID uint64) ([]domain.Comment, error)
	ListForTask(ctx context.Context, tenantID string, taskID uint64) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, tenantID string, id uint64) error
}

type DefaultService struct {
	repository CommentRepository
	logger     logrus.FieldLogger
}

func NewService(repository CommentRepository, logger logrus.FieldLogger) Service {
	return &DefaultService{
		repository: repository,
		logger:     logger,
	}
}

func newComment(tenantID string, input CreateCommentRequest) *domain.Comment {
	timeUnit := input.TimeUnit
	if timeUnit == 0 {
		timeUnit = 1
	}
	return &domain.Comment{
		TenantID:    tenantID,
		Duration:    input.Duration,
		TimeUnit:    timeUnit,
		Responsible: input.Responsible,
		Comment:     input.Comment,
	}
}

func (s *DefaultService) AttachToMaintenance(ctx context.Context, tenantID string, maintenanceID uint64, input CreateCommentRequest) (*domain.Comment, error) {
	comment := newComment(tenantID, input)
	comment.MaintenanceID = &maintenanceID
	if err := s.repository.Attach(ctx, domain.OwnerMaintenance, comment); err != nil {
		return nil, mapError(err, "Maintenance not found")
	}
	return comment, nil
}

func (s *DefaultService) AttachToTask(ctx context.Context, tenantID string, taskID uint64, input CreateCommentRequest) (*domain.Comment, error) {
	comment := newComment(tenantID, input)
	comment.TaskID = &taskID
	if err := s.repository.Attach(ctx, domain.OwnerTask, comment); err != nil {
		return nil, mapError(err, "Task not found")
	}
	return comment, nil
}

func (s *DefaultService) ListForMaintenance(ctx context.Context, tenantID string, maintenanceID uint64) ([]domain.Comment, error) {
	comments, err := s.repository.ListByOwner(ctx, tenantID, domain.OwnerMaintenance, maintenanceID)
	if err != nil {
		return nil, mapError(err, "Maintenance not found")
	}
	return comments, nil
}

func (s *DefaultService) ListForTask(ctx context.Context, tenantID string, taskID uint64) ([]domain.Comment, error) {
	comments, err := s.repository.ListByOwner(ctx, tenantID, domain.OwnerTask, taskID)
	if err != nil {
		return nil, mapError(err, "Task not found")
	}
	return comments, nil
}

func (s *DefaultService) DeleteComment(ctx context.Context, tenantID string, id uint64) error {
	if err := s.repository.Delete(ctx, tenantID, id); err != nil {
		return mapError(err, "Comment not found")
	}
	return nil
}

func mapError(err error, notFound string) error {
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(notFound, err)
	}
	return errors.Internal(err)
}
