package workorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maintenance/internal/domain"
	"maintenance/internal/modules/schedule"
	"maintenance/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const moduleName = "workorder"

type Service struct {
	repo      WorkOrderRepository
	issuances IssuanceLister
	scheduler Scheduler
	equipment EquipmentLookup
	log       *logrus.Logger
	now       func() time.Time
}

func NewService(repo WorkOrderRepository, issuances IssuanceLister, scheduler Scheduler, equipment EquipmentLookup, log *logrus.Logger) *Service {
	return &Service{
		repo:      repo,
		issuances: issuances,
		scheduler: scheduler,
		equipment: equipment,
		log:       logger.OrDiscard(log),
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateWorkOrderRequest) (*domain.WorkOrder, error) {
	if _, err := s.equipment.GetByID(ctx, req.EquipmentID); err != nil {
		return nil, notFound(err, "equipment")
	}

	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = "WO-" + strings.ToUpper(uuid.NewString()[:8])
	}
	wo := &domain.WorkOrder{
		Number:      number,
		EquipmentID: req.EquipmentID,
		Description: req.Description,
		Status:      domain.WorkOrderOpen,
		OpenedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, wo); err != nil {
		return nil, err
	}
	return wo, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	wo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "work order")
	}
	return wo, nil
}

func (s *Service) List(ctx context.Context, status domain.WorkOrderStatus) ([]domain.WorkOrder, error) {
	return s.repo.List(ctx, status)
}

// AddTask adds a line of work. It references at most one of a recurring task
// and a repair task; a free-text line needs a description.
func (s *Service) AddTask(ctx context.Context, workOrderID int64, req AddTaskRequest) (*domain.WorkOrderTask, error) {
	if req.TaskID != nil && req.RepairTaskID != nil {
		return nil, fmt.Errorf("%w: task_id and repair_task_id are mutually exclusive", ErrValidation)
	}
	if req.TaskID == nil && req.RepairTaskID == nil && strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required for a free-text task", ErrValidation)
	}

	wo, err := s.Get(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo.Status == domain.WorkOrderCompleted {
		return nil, fmt.Errorf("%w: work order %s is completed", ErrInvalidState, wo.Number)
	}

	task := &domain.WorkOrderTask{
		WorkOrderID:  workOrderID,
		TaskID:       req.TaskID,
		RepairTaskID: req.RepairTaskID,
		Description:  strings.TrimSpace(req.Description),
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// AddLabor books technician time against a work-order task. The first labor
// entry moves an open work order to in progress.
func (s *Service) AddLabor(ctx context.Context, workOrderTaskID int64, req AddLaborRequest) (*domain.LaborEntry, error) {
	if !req.Hours.IsPositive() {
		return nil, fmt.Errorf("%w: hours must be positive", ErrValidation)
	}
	if req.RateDollar.IsNegative() || req.RateVES.IsNegative() {
		return nil, fmt.Errorf("%w: rates must not be negative", ErrValidation)
	}

	task, err := s.repo.GetTask(ctx, workOrderTaskID)
	if err != nil {
		return nil, notFound(err, "work order task")
	}
	wo, err := s.Get(ctx, task.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if wo.Status == domain.WorkOrderCompleted {
		return nil, fmt.Errorf("%w: work order %s is completed", ErrInvalidState, wo.Number)
	}

	date := s.now().UTC()
	if req.Date != nil {
		date = *req.Date
	}
	entry := &domain.LaborEntry{
		WorkOrderTaskID: workOrderTaskID,
		Technician:      strings.TrimSpace(req.Technician),
		Hours:           req.Hours,
		RateDollar:      req.RateDollar,
		RateVES:         req.RateVES,
		Date:            date,
	}
	if err := s.repo.AddLabor(ctx, entry); err != nil {
		return nil, err
	}

	if wo.Status == domain.WorkOrderOpen {
		if err := s.repo.UpdateStatus(ctx, wo.ID, domain.WorkOrderInProgress, nil); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// Cost prices the labor booked on the work order and the parts issued to its
// tasks at the unit cost of the receipt each issuance was drawn from.
func (s *Service) Cost(ctx context.Context, workOrderID int64) (*CostSummary, error) {
	wo, err := s.Get(ctx, workOrderID)
	if err != nil {
		return nil, err
	}

	sum := &CostSummary{WorkOrderID: wo.ID}
	for _, task := range wo.Tasks {
		for _, l := range task.Labor {
			sum.Labor = sum.Labor.Add(Money{
				Dollar: l.Hours.Mul(l.RateDollar),
				VES:    l.Hours.Mul(l.RateVES),
			})
		}
	}

	issued, err := s.issuances.ListIssuancesForWorkOrder(ctx, wo.ID)
	if err != nil {
		return nil, err
	}
	for _, iss := range issued {
		if iss.Receipt == nil {
			logger.LogError(s.log, moduleName, "Cost", "issuance without receipt", iss.ID, ErrInvalidState)
			continue
		}
		sum.Parts = sum.Parts.Add(Money{
			Dollar: iss.QtyIssued.Mul(iss.Receipt.UnitCostDollar),
			VES:    iss.QtyIssued.Mul(iss.Receipt.UnitCostVES),
		})
	}

	sum.Total = sum.Labor.Add(sum.Parts)
	sum.Labor = rounded(sum.Labor)
	sum.Parts = rounded(sum.Parts)
	sum.Total = rounded(sum.Total)
	return sum, nil
}

// CompleteTask marks a work-order task done on the given day. A linked
// recurring task is recorded as performed and a linked repair task is closed.
func (s *Service) CompleteTask(ctx context.Context, workOrderTaskID int64, on time.Time) (*domain.WorkOrderTask, error) {
	task, err := s.repo.GetTask(ctx, workOrderTaskID)
	if err != nil {
		return nil, notFound(err, "work order task")
	}
	if task.CompletedAt != nil {
		return nil, fmt.Errorf("%w: work order task already completed", ErrInvalidState)
	}

	switch {
	case task.TaskID != nil:
		if _, err := s.scheduler.RecordPerformed(ctx, *task.TaskID, on); err != nil {
			return nil, fromScheduler(err)
		}
	case task.RepairTaskID != nil:
		if _, err := s.scheduler.CloseRepairTask(ctx, *task.RepairTaskID, on); err != nil {
			return nil, fromScheduler(err)
		}
	}

	if err := s.repo.CompleteTask(ctx, task.ID, on); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: work order task already completed", ErrInvalidState)
		}
		return nil, err
	}
	task.CompletedAt = &on
	return task, nil
}

// Complete closes the work order once every task in it is completed.
func (s *Service) Complete(ctx context.Context, id int64, on time.Time) (*domain.WorkOrder, error) {
	wo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status == domain.WorkOrderCompleted {
		return nil, fmt.Errorf("%w: work order %s is already completed", ErrInvalidState, wo.Number)
	}
	open := 0
	for _, t := range wo.Tasks {
		if t.CompletedAt == nil {
			open++
		}
	}
	if open > 0 {
		return nil, fmt.Errorf("%w: %d task(s) still open", ErrInvalidState, open)
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.WorkOrderCompleted, &on); err != nil {
		return nil, notFound(err, "work order")
	}
	wo.Status = domain.WorkOrderCompleted
	wo.CompletedAt = &on
	return wo, nil
}

func rounded(m Money) Money {
	return Money{Dollar: m.Dollar.Round(2), VES: m.VES.Round(2)}
}

func fromScheduler(err error) error {
	switch {
	case errors.Is(err, schedule.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, schedule.ErrInvalidState):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, schedule.ErrValidation):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		return err
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
