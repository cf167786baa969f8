package repository

import (
	"context"
	"time"

	"maintenance/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(ctx context.Context, wo *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(wo).Error
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id int64) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Tasks.Labor", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) List(ctx context.Context, status domain.WorkOrderStatus) ([]domain.WorkOrder, error) {
	q := r.db.WithContext(ctx).Order("id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []domain.WorkOrder
	err := q.Find(&rows).Error
	return rows, err
}

func (r *WorkOrderRepository) CreateTask(ctx context.Context, task *domain.WorkOrderTask) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

func (r *WorkOrderRepository) GetTask(ctx context.Context, id int64) (*domain.WorkOrderTask, error) {
	var task domain.WorkOrderTask
	if err := r.db.WithContext(ctx).Preload("Labor").Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *WorkOrderRepository) AddLabor(ctx context.Context, entry *domain.LaborEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CompleteTask stamps an uncompleted work-order task.
func (r *WorkOrderRepository) CompleteTask(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.WorkOrderTask{}).
		Where("id = ? AND completed_at IS NULL", id).
		Update("completed_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *WorkOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.WorkOrderStatus, completedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	res := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
