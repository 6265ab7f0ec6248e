package task

import (
	"context"
	defError "errors"
	"wartungsmanager/internal/clock"
	"wartungsmanager/internal/document"
	"wartungsmanager/internal/domain"
	"wartungsmanager/internal/errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service interface {
	CreateTask(ctx context.Context, tenantID string, maintenanceID uint64, input CreateTaskRequest) (*domain.Task, error)
	ListTasks(ctx context.Context, tenantID string, maintenanceID uint64) ([]domain.Task, error)
	UpdateTask(ctx context.Context, tenantID string, id uint64, patch TaskPatch) (*domain.Task, error)
	MoveTask(ctx context.Context, tenantID string, id uint64, to int) (*domain.Task, error)
	DeleteTask(ctx context.Context, tenantID string, id uint64) error
}

type DefaultService struct {
	repository TaskRepository
	clock      clock.Clock
	logger     logrus.FieldLogger
}

func NewService(repository TaskRepository, clk clock.Clock, logger logrus.FieldLogger) Service {
	return &DefaultService{
		repository: repository,
		clock:      clk,
		logger:     logger,
	}
}

func (s *DefaultService) CreateTask(ctx context.Context, tenantID string, maintenanceID uint64, input CreateTaskRequest) (*domain.Task, error) {
	timeUnit := input.TimeUnit
	if timeUnit == 0 {
		timeUnit = 1
	}
	task := &domain.Task{
		TenantID:      tenantID,
		MaintenanceID: maintenanceID,
		Name:          input.Name,
		Responsible:   input.Responsible,
		TargetTime:    input.TargetTime,
		TimeUnit:      timeUnit,
	}
	if err := s.repository.Create(ctx, task, input.DocumentIDs); err != nil {
		return nil, mapError(err, "Maintenance not found")
	}
	return task, nil
}

func (s *DefaultService) ListTasks(ctx context.Context, tenantID string, maintenanceID uint64) ([]domain.Task, error) {
	tasks, err := s.repository.ListByMaintenance(ctx, tenantID, maintenanceID)
	if err != nil {
		return nil, mapError(err, "Maintenance not found")
	}
	return tasks, nil
}

func (s *DefaultService) UpdateTask(ctx context.Context, tenantID string, id uint64, patch TaskPatch) (*domain.Task, error) {
	task, err := s.repository.Update(ctx, tenantID, id, patch, s.clock.Now())
	if err != nil {
		return nil, mapError(err, "Task not found")
	}
	return task, nil
}

func (s *DefaultService) MoveTask(ctx context.Context, tenantID string, id uint64, to int) (*domain.Task, error) {
	task, err := s.repository.Move(ctx, tenantID, id, to)
	if err != nil {
		return nil, mapError(err, "Task not found")
	}
	return task, nil
}

func (s *DefaultService) DeleteTask(ctx context.Context, tenantID string, id uint64) error {
	if err := s.repository.Delete(ctx, tenantID, id); err != nil {
		return mapError(err, "Task not found")
	}
	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "task_id": id}).Debug("task deleted")
	return nil
}

func mapError(err error, notFound string) error {
	switch {
	case defError.Is(err, gorm.ErrRecordNotFound):
		return errors.NotFound(notFound, err)
	case defError.Is(err, ErrPositionOutOfRange):
		return errors.UnprocessableEntity("Position out of range", err)
	default:
		return document.MapError(err)
	}
}
