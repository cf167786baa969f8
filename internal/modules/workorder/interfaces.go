package workorder

import (
	"context"
	"time"

	"maintenance/internal/domain"
)

type WorkOrderRepository interface {
	Create(ctx context.Context, wo *domain.WorkOrder) error
	GetByID(ctx context.Context, id int64) (*domain.WorkOrder, error)
	List(ctx context.Context, status domain.WorkOrderStatus) ([]domain.WorkOrder, error)
	CreateTask(ctx context.Context, task *domain.WorkOrderTask) error
	GetTask(ctx context.Context, id int64) (*domain.WorkOrderTask, error)
	AddLabor(ctx context.Context, entry *domain.LaborEntry) error
	CompleteTask(ctx context.Context, id int64, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status domain.WorkOrderStatus, completedAt *time.Time) error
}

// IssuanceLister returns the parts charged to a work order.
type IssuanceLister interface {
	ListIssuancesForWorkOrder(ctx context.Context, workOrderID int64) ([]domain.Issuance, error)
}

// Scheduler is the part of the scheduling service a completed work-order task
// reports back to.
type Scheduler interface {
	RecordPerformed(ctx context.Context, taskID int64, performedOn time.Time) (*domain.Task, error)
	CloseRepairTask(ctx context.Context, id int64, on time.Time) (*domain.RepairTask, error)
}

type EquipmentLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Equipment, error)
}
