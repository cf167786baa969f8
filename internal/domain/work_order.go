package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WorkOrderStatus string

const (
	WorkOrderOpen       WorkOrderStatus = "open"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderCompleted  WorkOrderStatus = "completed"
)

type WorkOrder struct {
	ID          int64           `json:"id"`
	Number      string          `json:"number" gorm:"size:64;not null;uniqueIndex"`
	EquipmentID int64           `json:"equipment_id" gorm:"not null;index"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	Status      WorkOrderStatus `json:"status" gorm:"size:16;not null;default:open"`
	OpenedAt    time.Time       `json:"opened_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Tasks []WorkOrderTask `json:"tasks,omitempty" gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
}

// WorkOrderTask is one line of work inside a work order. It may point to a
// recurring task or a repair task.
type WorkOrderTask struct {
	ID           int64      `json:"id"`
	WorkOrderID  int64      `json:"work_order_id" gorm:"not null;index"`
	TaskID       *int64     `json:"task_id,omitempty" gorm:"index"`
	RepairTaskID *int64     `json:"repair_task_id,omitempty" gorm:"index"`
	Description  string     `json:"description,omitempty" gorm:"type:text"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	Labor []LaborEntry `json:"labor,omitempty" gorm:"foreignKey:WorkOrderTaskID;constraint:OnDelete:CASCADE"`
}

type LaborEntry struct {
	ID              int64           `json:"id"`
	WorkOrderTaskID int64           `json:"work_order_task_id" gorm:"not null;index"`
	Technician      string          `json:"technician" gorm:"size:120;not null"`
	Hours           decimal.Decimal `json:"hours" gorm:"type:decimal(20,4);not null"`
	RateDollar      decimal.Decimal `json:"rate_dollar" gorm:"type:decimal(20,4);not null;default:0"`
	RateVES         decimal.Decimal `json:"rate_ves" gorm:"type:decimal(20,4);not null;default:0"`
	Date            time.Time       `json:"date"`
	CreatedAt       time.Time       `json:"created_at"`
}
