package maintenance

import (
	"context"
	defError "errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
	"wartungsmanager/internal/clock"
	"wartungsmanager/internal/document"
	"wartungsmanager/internal/domain"
	"wartungsmanager/internal/errors"
	"wartungsmanager/internal/recurrence"
	"wartungsmanager/internal/worker"
	"wartungsmanager/redis"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Service interface {
	CreateMaintenance(ctx context.Context, tenantID string, input CreateMaintenanceRequest) (*domain.Maintenance, error)
	GetMaintenance(ctx context.Context, tenantID string, id uint64) (*domain.Maintenance, error)
	ListMaintenances(ctx context.Context, tenantID string, filter ListFilter, page, pageSize int) (*PaginatedMaintenances, error)
	UpdateMaintenance(ctx context.Context, tenantID string, id uint64, patch MaintenancePatch) (*domain.Maintenance, error)
	DeleteMaintenance(ctx context.Context, tenantID string, id uint64) error
	CompleteMaintenance(ctx context.Context, tenantID string, id uint64) (*CompletionResult, error)
	CopyMaintenance(ctx context.Context, tenantID string, id uint64) (*domain.Maintenance, error)
	CheckStatusesEveryDay(ctx context.Context, runID string) (*SweepReport, error)
}

type DefaultService struct {
	repository MaintenanceRepository
	cache      *redis.Cache
	pool       *worker.WorkerPool
	clock      clock.Clock
	logger     logrus.FieldLogger
	listTTL    time.Duration
}

func NewService(
	repository MaintenanceRepository,
	cache *redis.Cache,
	pool *worker.WorkerPool,
	clk clock.Clock,
	logger logrus.FieldLogger,
	listTTL time.Duration,
) Service {
	return &DefaultService{
		repository: repository,
		cache:      cache,
		pool:       pool,
		clock:      clk,
		logger:     logger,
		listTTL:    listTTL,
	}
}

func versionKey(tenantID string) string {
	return fmt.Sprintf("tenant:%s:maintenances:version", tenantID)
}

// invalidate bumps the tenant's list version so cached pages are never read again
func (s *DefaultService) invalidate(ctx context.Context, tenantID string) {
	s.cache.IncrementVersion(ctx, versionKey(tenantID))
}

func (s *DefaultService) CreateMaintenance(ctx context.Context, tenantID string, input CreateMaintenanceRequest) (*domain.Maintenance, error) {
	m := &domain.Maintenance{
		TenantID:          tenantID,
		MachineID:         input.MachineID,
		Title:             input.Title,
		Description:       input.Description,
		DueDate:           utc(input.DueDate),
		EarliestExecTime:  utc(input.EarliestExecTime),
		Interval:          input.Interval,
		IntervalUnit:      input.IntervalUnit,
		IsInternal:        input.IsInternal,
		Responsible:       input.Responsible,
		Category:          input.Category,
		UseOperatingHours: input.UseOperatingHours,
		UseStrokes:        input.UseStrokes,
		UseDistance:       input.UseDistance,
	}
	if err := checkRecurrence(m); err != nil {
		return nil, mapError(err)
	}
	m.RefreshStatus(s.clock.Now())

	if err := s.repository.Create(ctx, m, input.DocumentIDs); err != nil {
		return nil, mapError(err)
	}
	s.invalidate(ctx, tenantID)

	return s.GetMaintenance(ctx, tenantID, m.ID)
}

func (s *DefaultService) GetMaintenance(ctx context.Context, tenantID string, id uint64) (*domain.Maintenance, error) {
	m, err := s.repository.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.repository.AttachDerivedTimes(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *DefaultService) ListMaintenances(ctx context.Context, tenantID string, filter ListFilter, page, pageSize int) (*PaginatedMaintenances, error) {
	v := s.cache.GetVersion(ctx, versionKey(tenantID))

	completed := ""
	if filter.Completed != nil {
		completed = strconv.FormatBool(*filter.Completed)
	}
	cacheKey := fmt.Sprintf("maintenances:t:%s:v:%d:p:%d:ps:%d:m:%s:s:%s:c:%s",
		tenantID, v, page, pageSize, filter.MachineID, filter.Status, completed)

	var result PaginatedMaintenances
	found, err := s.cache.Get(ctx, cacheKey, &result)
	if err != nil {
		s.logger.WithError(err).Warn("maintenance list cache read failed")
	}
	if found {
		return &result, nil
	}

	maintenances, meta, err := s.repository.List(ctx, tenantID, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	result = PaginatedMaintenances{Data: maintenances, Meta: meta}

	if err := s.cache.Set(ctx, cacheKey, result, s.listTTL); err != nil {
		s.logger.WithError(err).Warn("maintenance list cache write failed")
	}
	return &result, nil
}

func (s *DefaultService) UpdateMaintenance(ctx context.Context, tenantID string, id uint64, patch MaintenancePatch) (*domain.Maintenance, error) {
	if err := s.repository.Update(ctx, tenantID, id, patch, s.clock.Now()); err != nil {
		return nil, mapError(err)
	}
	s.invalidate(ctx, tenantID)

	return s.GetMaintenance(ctx, tenantID, id)
}

func (s *DefaultService) DeleteMaintenance(ctx context.Context, tenantID string, id uint64) error {
	if err := s.repository.Delete(ctx, tenantID, id); err != nil {
		return mapError(err)
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *DefaultService) CompleteMaintenance(ctx context.Context, tenantID string, id uint64) (*CompletionResult, error) {
	result, err := s.repository.Complete(ctx, tenantID, id, s.clock.Now())
	if err != nil {
		return nil, mapError(err)
	}

	entry := s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "maintenance_id": id})
	if !result.Completed {
		entry.Debug("completion blocked")
		return result, nil
	}
	if result.Successor != nil {
		entry = entry.WithField("successor_id", result.Successor.ID)
	}
	entry.Info("maintenance completed")
	s.invalidate(ctx, tenantID)

	return result, nil
}

func (s *DefaultService) CopyMaintenance(ctx context.Context, tenantID string, id uint64) (*domain.Maintenance, error) {
	copied, err := s.repository.Copy(ctx, tenantID, id, s.clock.Now())
	if err != nil {
		return nil, mapError(err)
	}
	s.invalidate(ctx, tenantID)

	if err := s.repository.AttachDerivedTimes(ctx, copied); err != nil {
		return nil, err
	}
	return copied, nil
}

// CheckStatusesEveryDay marks overdue maintenances, rolls each of them forward
// on the worker pool and finally promotes scheduled maintenances to dueSoon.
// A failing rollover is logged and counted without stopping the others.
func (s *DefaultService) CheckStatusesEveryDay(ctx context.Context, runID string) (*SweepReport, error) {
	now := s.clock.Now()
	log := s.logger.WithFields(logrus.Fields{"job": "status-sweep", "run_id": runID})
	report := &SweepReport{RunID: runID}
	touched := map[string]struct{}{}

	overdue, err := s.repository.MarkOverdue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("mark overdue: %w", err)
	}
	report.Overdue = len(overdue)

	var rolled atomic.Int64
	tasks := make([]worker.Task, len(overdue))
	for i, ref := range overdue {
		ref := ref
		touched[ref.TenantID] = struct{}{}
		tasks[i] = func(ctx context.Context) error {
			successor, err := s.repository.RollOver(ctx, ref.ID, now)
			if err != nil {
				return err
			}
			if successor != nil {
				rolled.Add(1)
				log.WithFields(logrus.Fields{
					"maintenance_id": ref.ID,
					"successor_id":   successor.ID,
				}).Info("overdue maintenance rolled over")
			}
			return nil
		}
	}

	for i, err := range s.pool.RunAll(ctx, tasks) {
		if err != nil {
			report.Failed++
			log.WithError(err).WithField("maintenance_id", overdue[i].ID).Error("rollover failed")
		}
	}
	report.RolledOver = int(rolled.Load())

	dueSoon, err := s.repository.MarkDueSoon(ctx, now)
	if err != nil {
		return report, fmt.Errorf("mark due soon: %w", err)
	}
	report.DueSoon = len(dueSoon)
	for _, ref := range dueSoon {
		touched[ref.TenantID] = struct{}{}
	}

	for tenantID := range touched {
		s.invalidate(ctx, tenantID)
	}

	log.WithFields(logrus.Fields{
		"overdue":     report.Overdue,
		"rolled_over": report.RolledOver,
		"failed":      report.Failed,
		"due_soon":    report.DueSoon,
	}).Info("status sweep finished")
	return report, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func mapError(err error) error {
	if defError.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound("Maintenance not found", err)
	}
	if defError.Is(err, recurrence.ErrIntervalTooLong) || defError.Is(err, recurrence.ErrInvalidInterval) {
		return errors.UnprocessableEntity("Interval is out of range", err)
	}
	return document.MapError(err)
}
