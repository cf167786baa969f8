package schedule

import (
	"context"
	"time"

	"maintenance/internal/domain"
)

type TaskRepository interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	CreateRepairTask(ctx context.Context, task *domain.RepairTask) error
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	GetRepairTask(ctx context.Context, id int64) (*domain.RepairTask, error)
	ListTasks(ctx context.Context, equipmentID int64) ([]domain.Task, error)
	ListOpenRepairTasks(ctx context.Context) ([]domain.RepairTask, error)
	SaveTracking(ctx context.Context, tracking *domain.TaskTracking) error
	CloseRepairTask(ctx context.Context, id int64, at time.Time) error
}

// EquipmentLookup resolves the equipment a task is attached to.
type EquipmentLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
}
