package workorder

import (
	"context"
	"testing"
	"time"

	"maintenance/internal/database"
	"maintenance/internal/domain"
	"maintenance/internal/modules/schedule"
	"maintenance/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) RecordPerformed(ctx context.Context, taskID int64, performedOn time.Time) (*domain.Task, error) {
	args := m.Called(ctx, taskID, performedOn)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockScheduler) CloseRepairTask(ctx context.Context, id int64, on time.Time) (*domain.RepairTask, error) {
	args := m.Called(ctx, id, on)
	task, _ := args.Get(0).(*domain.RepairTask)
	return task, args.Error(1)
}

func newMockedService(t *testing.T, sched Scheduler) (*Service, *domain.WorkOrder) {
	t.Helper()
	db := database.NewTestDB(t)
	eqRepo := repository.NewEquipmentRepository(db)

	eq := &domain.Equipment{Code: "CMP-2", Name: "Compressor"}
	require.NoError(t, eqRepo.Create(context.Background(), eq))

	svc := NewService(repository.NewWorkOrderRepository(db), repository.NewInventoryRepository(db), sched, eqRepo, nil)
	wo, err := svc.Create(context.Background(), CreateWorkOrderRequest{EquipmentID: eq.ID, Number: "WO-100"})
	require.NoError(t, err)
	return svc, wo
}

func TestCompleteTask_ClosesLinkedRepair(t *testing.T) {
	sched := new(mockScheduler)
	svc, wo := newMockedService(t, sched)
	ctx := context.Background()
	on := day(2024, 5, 2)

	repairID := int64(42)
	line, err := svc.AddTask(ctx, wo.ID, AddTaskRequest{RepairTaskID: &repairID})
	require.NoError(t, err)

	sched.On("CloseRepairTask", mock.Anything, repairID, on).Return(&domain.RepairTask{ID: repairID, Status: domain.RepairClosed}, nil).Once()

	done, err := svc.CompleteTask(ctx, line.ID, on)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(on))
	sched.AssertExpectations(t)
	sched.AssertNotCalled(t, "RecordPerformed", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteTask_SchedulerFailureLeavesLineOpen(t *testing.T) {
	sched := new(mockScheduler)
	svc, wo := newMockedService(t, sched)
	ctx := context.Background()
	on := day(2024, 5, 2)

	taskID := int64(7)
	line, err := svc.AddTask(ctx, wo.ID, AddTaskRequest{TaskID: &taskID})
	require.NoError(t, err)

	sched.On("RecordPerformed", mock.Anything, taskID, on).Return(nil, schedule.ErrInvalidState).Once()

	_, err = svc.CompleteTask(ctx, line.ID, on)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, err, schedule.ErrInvalidState)

	got, err := svc.Get(ctx, wo.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Nil(t, got.Tasks[0].CompletedAt)
	sched.AssertExpectations(t)
}

func TestCompleteTask_FreeTextSkipsScheduler(t *testing.T) {
	sched := new(mockScheduler)
	svc, wo := newMockedService(t, sched)
	ctx := context.Background()

	line, err := svc.AddTask(ctx, wo.ID, AddTaskRequest{Description: "Check belts"})
	require.NoError(t, err)

	_, err = svc.CompleteTask(ctx, line.ID, day(2024, 5, 3))
	require.NoError(t, err)

	_, err = svc.CompleteTask(ctx, line.ID, day(2024, 5, 4))
	assert.ErrorIs(t, err, ErrInvalidState)
	sched.AssertNotCalled(t, "RecordPerformed", mock.Anything, mock.Anything, mock.Anything)
	sched.AssertNotCalled(t, "CloseRepairTask", mock.Anything, mock.Anything, mock.Anything)
}
