package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintenance/internal/domain"
	"maintenance/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const moduleName = "schedule"

type Service struct {
	repo      TaskRepository
	equipment EquipmentLookup
	log       *logrus.Logger
}

func NewService(repo TaskRepository, equipment EquipmentLookup, log *logrus.Logger) *Service {
	return &Service{
		repo:      repo,
		equipment: equipment,
		log:       logger.OrDiscard(log),
	}
}

func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	eq, err := s.equipment.GetByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, notFound(err, "equipment")
	}

	tracking, err := buildTracking(req.Tracking, eq)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		EquipmentID: req.EquipmentID,
		Name:        req.Name,
		Description: req.Description,
		Tracking:    tracking,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	task.Equipment = eq
	return task, nil
}

func (s *Service) CreateRepairTask(ctx context.Context, req CreateRepairTaskRequest) (*domain.RepairTask, error) {
	eq, err := s.equipment.GetByID(ctx, req.EquipmentID)
	if err != nil {
		return nil, notFound(err, "equipment")
	}
	if req.DueDate == nil && len(req.DueDates) == 0 {
		return nil, fmt.Errorf("%w: repair task needs a due date", ErrValidation)
	}

	tracking := &domain.TaskTracking{DateNextDue: dateOnlyPtr(req.DueDate)}
	for _, d := range req.DueDates {
		tracking.DueDates = append(tracking.DueDates, domain.TrackingDueDate{DueDate: dateOnly(d)})
	}

	task := &domain.RepairTask{
		EquipmentID: req.EquipmentID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.RepairOpen,
		Tracking:    tracking,
	}
	if err := s.repo.CreateRepairTask(ctx, task); err != nil {
		return nil, err
	}
	task.Equipment = eq
	return task, nil
}

func (s *Service) ListTasks(ctx context.Context, equipmentID int64) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx, equipmentID)
}

// GetTaskStatus evaluates one recurring task at now.
func (s *Service) GetTaskStatus(ctx context.Context, id int64, now time.Time) (*TaskStatus, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, notFound(err, "task")
	}
	st, err := evaluate(taskStatusOf(task), task.Tracking, task.Equipment, now)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Service) GetRepairTaskStatus(ctx context.Context, id int64, now time.Time) (*TaskStatus, error) {
	task, err := s.repo.GetRepairTask(ctx, id)
	if err != nil {
		return nil, notFound(err, "repair task")
	}
	st, err := evaluate(repairStatusOf(task), task.Tracking, task.Equipment, now)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListDue evaluates every recurring task and every open repair task and
// returns the ones that are due or cannot be evaluated. With includeOK all
// evaluated tasks are returned.
func (s *Service) ListDue(ctx context.Context, now time.Time, includeOK bool) ([]TaskStatus, error) {
	tasks, err := s.repo.ListTasks(ctx, 0)
	if err != nil {
		return nil, err
	}
	repairs, err := s.repo.ListOpenRepairTasks(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TaskStatus, 0, len(tasks)+len(repairs))
	keep := func(st TaskStatus, err error) {
		if err != nil {
			logger.LogError(s.log, moduleName, "ListDue", "evaluate tracking", st.ID, err)
			st.Error = err.Error()
			out = append(out, st)
			return
		}
		if st.Due || includeOK {
			out = append(out, st)
		}
	}

	for i := range tasks {
		keep(evaluate(taskStatusOf(&tasks[i]), tasks[i].Tracking, tasks[i].Equipment, now))
	}
	for i := range repairs {
		keep(evaluate(repairStatusOf(&repairs[i]), repairs[i].Tracking, repairs[i].Equipment, now))
	}
	return out, nil
}

// RecordPerformed stamps every active dimension of the task as performed on
// the given day and at the equipment's current readings.
func (s *Service) RecordPerformed(ctx context.Context, taskID int64, performedOn time.Time) (*domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, notFound(err, "task")
	}
	tt := task.Tracking
	if tt == nil {
		return nil, fmt.Errorf("%w: task has no tracking", ErrInvalidState)
	}

	if tt.TrackByDate {
		last := dateOnly(performedOn)
		tt.DateLastPerformed = &last
		tt.DateNextDue = nil
		if tt.TrackByDateEvery && tt.DateInterval != nil {
			next := last.AddDate(0, 0, *tt.DateInterval)
			tt.DateNextDue = &next
		}
	}

	readings := ReadingsOf(task.Equipment)
	if tt.TrackByPrimary {
		last, next, err := performedAt(domain.MeterSlotPrimary, readings.Primary, tt.TrackByPrimaryEvery, tt.PrimaryInterval)
		if err != nil {
			return nil, err
		}
		tt.PrimaryLastPerformed, tt.PrimaryNextDue = last, next
	}
	if tt.TrackBySecondary {
		last, next, err := performedAt(domain.MeterSlotSecondary, readings.Secondary, tt.TrackBySecondaryEvery, tt.SecondaryInterval)
		if err != nil {
			return nil, err
		}
		tt.SecondaryLastPerformed, tt.SecondaryNextDue = last, next
	}

	if err := s.repo.SaveTracking(ctx, tt); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) CloseRepairTask(ctx context.Context, id int64, on time.Time) (*domain.RepairTask, error) {
	task, err := s.repo.GetRepairTask(ctx, id)
	if err != nil {
		return nil, notFound(err, "repair task")
	}
	if task.Status == domain.RepairClosed {
		return nil, fmt.Errorf("%w: repair task already closed", ErrInvalidState)
	}
	if err := s.repo.CloseRepairTask(ctx, id, on); err != nil {
		return nil, notFound(err, "repair task")
	}
	task.Status = domain.RepairClosed
	task.ClosedAt = copyTime(&on)
	return task, nil
}

func performedAt(slot domain.MeterSlot, reading *decimal.Decimal, every bool, interval *decimal.Decimal) (*decimal.Decimal, *decimal.Decimal, error) {
	if reading == nil {
		return nil, nil, fmt.Errorf("%w: equipment has no %s meter reading", ErrInvalidState, slot)
	}
	last := copyDecimal(reading)
	if !every || interval == nil {
		return last, nil, nil
	}
	next := last.Add(*interval)
	return last, &next, nil
}

func buildTracking(req TrackingRequest, eq *domain.Equipment) (*domain.TaskTracking, error) {
	if req.DateEvery && req.ByDate && req.DateInterval == nil && req.DateNextDue == nil {
		return nil, fmt.Errorf("%w: date tracking in every mode needs an interval or a next due date", ErrValidation)
	}

	tt := &domain.TaskTracking{
		TrackByDate:       req.ByDate,
		TrackByDateEvery:  req.DateEvery,
		DateInterval:      req.DateInterval,
		DateAdvanceNotice: req.DateAdvanceNotice,
		DateLastPerformed: dateOnlyPtr(req.DateLastPerformed),
		DateNextDue:       dateOnlyPtr(req.DateNextDue),
	}
	for _, d := range req.DueDates {
		tt.DueDates = append(tt.DueDates, domain.TrackingDueDate{DueDate: dateOnly(d)})
	}

	primaryUnit, err := meterUnit(req.Primary, eq.PrimaryMeterUnit, "primary")
	if err != nil {
		return nil, err
	}
	tt.TrackByPrimary = req.Primary.Enabled
	tt.TrackByPrimaryEvery = req.Primary.Every
	tt.PrimaryMeterType = primaryUnit
	tt.PrimaryInterval = req.Primary.Interval
	tt.PrimaryAdvanceNotice = req.Primary.AdvanceNotice
	tt.PrimaryLastPerformed = req.Primary.LastPerformed
	tt.PrimaryNextDue = req.Primary.NextDue
	for _, v := range req.Primary.DueValues {
		tt.DueMeters = append(tt.DueMeters, domain.TrackingDueMeter{Slot: domain.MeterSlotPrimary, Value: v})
	}

	secondaryUnit, err := meterUnit(req.Secondary, eq.SecondaryMeterUnit, "secondary")
	if err != nil {
		return nil, err
	}
	tt.TrackBySecondary = req.Secondary.Enabled
	tt.TrackBySecondaryEvery = req.Secondary.Every
	tt.SecondaryMeterType = secondaryUnit
	tt.SecondaryInterval = req.Secondary.Interval
	tt.SecondaryAdvanceNotice = req.Secondary.AdvanceNotice
	tt.SecondaryLastPerformed = req.Secondary.LastPerformed
	tt.SecondaryNextDue = req.Secondary.NextDue
	for _, v := range req.Secondary.DueValues {
		tt.DueMeters = append(tt.DueMeters, domain.TrackingDueMeter{Slot: domain.MeterSlotSecondary, Value: v})
	}

	return tt, nil
}

// meterUnit falls back to the equipment's unit when the request leaves it empty.
func meterUnit(req MeterTrackingRequest, fallback domain.MeterUnit, slot string) (domain.MeterUnit, error) {
	if !req.Enabled {
		return req.Unit, nil
	}
	unit := req.Unit
	if unit == "" {
		unit = fallback
	}
	if !unit.Valid() {
		return "", fmt.Errorf("%w: %s meter unit %q is not valid", ErrValidation, slot, unit)
	}
	if req.Every && req.Interval != nil && !req.Interval.IsPositive() {
		return "", fmt.Errorf("%w: %s meter interval must be positive", ErrValidation, slot)
	}
	return unit, nil
}

func taskStatusOf(t *domain.Task) TaskStatus {
	st := TaskStatus{Kind: KindTask, ID: t.ID, Name: t.Name, EquipmentID: t.EquipmentID}
	if t.Equipment != nil {
		st.EquipmentCode = t.Equipment.Code
	}
	return st
}

func repairStatusOf(t *domain.RepairTask) TaskStatus {
	st := TaskStatus{Kind: KindRepair, ID: t.ID, Name: t.Title, EquipmentID: t.EquipmentID}
	if t.Equipment != nil {
		st.EquipmentCode = t.Equipment.Code
	}
	return st
}

func evaluate(st TaskStatus, tt *domain.TaskTracking, eq *domain.Equipment, now time.Time) (TaskStatus, error) {
	statuses, err := CalculateDueStatus(Normalize(tt), ReadingsOf(eq), now)
	if err != nil {
		return st, err
	}
	st.Statuses = statuses
	st.Due = anyDue(statuses)
	return st, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
