package repository

import (
	"context"
	"time"

	"maintenance/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func withTracking(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tracking").
		Preload("Tracking.DueDates", func(db *gorm.DB) *gorm.DB { return db.Order("due_date ASC") }).
		Preload("Tracking.DueMeters", func(db *gorm.DB) *gorm.DB { return db.Order("value ASC") }).
		Preload("Equipment")
}

// CreateTask inserts the task with its tracking and explicit due rows.
func (r *TaskRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit("Equipment").Create(task).Error
}

func (r *TaskRepository) CreateRepairTask(ctx context.Context, task *domain.RepairTask) error {
	return r.db.WithContext(ctx).Omit("Equipment").Create(task).Error
}

func (r *TaskRepository) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	if err := withTracking(r.db.WithContext(ctx)).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) GetRepairTask(ctx context.Context, id int64) (*domain.RepairTask, error) {
	var task domain.RepairTask
	if err := withTracking(r.db.WithContext(ctx)).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListTasks(ctx context.Context, equipmentID int64) ([]domain.Task, error) {
	q := withTracking(r.db.WithContext(ctx)).Order("id ASC")
	if equipmentID > 0 {
		q = q.Where("equipment_id = ?", equipmentID)
	}
	var tasks []domain.Task
	err := q.Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListOpenRepairTasks(ctx context.Context) ([]domain.RepairTask, error) {
	var tasks []domain.RepairTask
	err := withTracking(r.db.WithContext(ctx)).
		Where("status = ?", domain.RepairOpen).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

// SaveTracking writes the tracking columns. Explicit due rows are left as they are.
func (r *TaskRepository) SaveTracking(ctx context.Context, tracking *domain.TaskTracking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(tracking).Error
}

func (r *TaskRepository) CloseRepairTask(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.RepairTask{}).
		Where("id = ? AND status = ?", id, domain.RepairOpen).
		Updates(map[string]any{"status": domain.RepairClosed, "closed_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
