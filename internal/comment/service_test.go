package comment

import (
	"context"
	"io"
	"net/http"
	"testing"

	"wartungsmanager/internal/domain"
	"wartungsmanager/internal/errors"
	"wartungsmanager/internal/testutil"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db            *gorm.DB
	service       Service
	maintenanceID uint64
	taskID        uint64
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m := domain.Maintenance{TenantID: "tenant-a", Title: "Inspection", Status: domain.StatusScheduled}
	require.NoError(t, db.Create(&m).Error)
	task := domain.Task{TenantID: "tenant-a", MaintenanceID: m.ID, Name: "Check belts", TimeUnit: 1}
	require.NoError(t, db.Create(&task).Error)

	return fixture{db: db, service: NewService(NewRepository(db), logger), maintenanceID: m.ID, taskID: task.ID}
}

func TestAttach(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	who := "Mia"

	onMaintenance, err := f.service.AttachToMaintenance(ctx, "tenant-a", f.maintenanceID, CreateCommentRequest{Duration: 30, Comment: "arrived"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), onMaintenance.TimeUnit)
	assert.Nil(t, onMaintenance.TaskID)
	assert.Nil(t, onMaintenance.Responsible)

	onTask, err := f.service.AttachToTask(ctx, "tenant-a", f.taskID, CreateCommentRequest{Duration: 2, TimeUnit: 3600, Responsible: &who, Comment: "belts ok"})
	require.NoError(t, err)
	assert.Nil(t, onTask.MaintenanceID)
	require.NotNil(t, onTask.TaskID)
	assert.Equal(t, f.taskID, *onTask.TaskID)

	forMaintenance, err := f.service.ListForMaintenance(ctx, "tenant-a", f.maintenanceID)
	require.NoError(t, err)
	require.Len(t, forMaintenance, 1)
	assert.Equal(t, "arrived", forMaintenance[0].Comment)

	forTask, err := f.service.ListForTask(ctx, "tenant-a", f.taskID)
	require.NoError(t, err)
	require.Len(t, forTask, 1)
	assert.Equal(t, "Mia", *forTask[0].Responsible)
}

func TestAttach_ForeignTenant(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.service.AttachToTask(ctx, "tenant-b", f.taskID, CreateCommentRequest{Comment: "x"})
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Task not found", apiErr.Message)

	_, err = f.service.ListForMaintenance(ctx, "tenant-b", f.maintenanceID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	var count int64
	require.NoError(t, f.db.Model(&domain.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteComment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	comment, err := f.service.AttachToTask(ctx, "tenant-a", f.taskID, CreateCommentRequest{Comment: "x"})
	require.NoError(t, err)

	assert.Error(t, f.service.DeleteComment(ctx, "tenant-b", comment.ID))
	require.NoError(t, f.service.DeleteComment(ctx, "tenant-a", comment.ID))

	err = f.service.DeleteComment(ctx, "tenant-a", comment.ID)
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
