package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RepairStatus string

const (
	RepairOpen   RepairStatus = "open"
	RepairClosed RepairStatus = "closed"
)

// Task is a recurring (preventive) maintenance task.
type Task struct {
	ID          int64         `json:"id"`
	EquipmentID int64         `json:"equipment_id" gorm:"not null;index"`
	Name        string        `json:"name" gorm:"size:200;not null"`
	Description string        `json:"description,omitempty" gorm:"type:text"`
	Tracking    *TaskTracking `json:"tracking,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Equipment *Equipment `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`
}

// RepairTask is a one-off repair request.
type RepairTask struct {
	ID          int64         `json:"id"`
	EquipmentID int64         `json:"equipment_id" gorm:"not null;index"`
	Title       string        `json:"title" gorm:"size:200;not null"`
	Description string        `json:"description,omitempty" gorm:"type:text"`
	Status      RepairStatus  `json:"status" gorm:"size:16;not null;default:open"`
	ClosedAt    *time.Time    `json:"closed_at,omitempty"`
	Tracking    *TaskTracking `json:"tracking,omitempty" gorm:"foreignKey:RepairTaskID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Equipment *Equipment `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`
}

// TaskTracking holds the recurrence configuration of a Task or a RepairTask.
// Exactly one of TaskID and RepairTaskID is set.
type TaskTracking struct {
	ID           int64  `json:"id"`
	TaskID       *int64 `json:"task_id,omitempty" gorm:"uniqueIndex"`
	RepairTaskID *int64 `json:"repair_task_id,omitempty" gorm:"uniqueIndex"`

	TrackByDate       bool       `json:"track_by_date"`
	TrackByDateEvery  bool       `json:"track_by_date_every"`
	DateInterval      *int       `json:"date_interval,omitempty"`
	DateAdvanceNotice int        `json:"date_advance_notice"`
	DateLastPerformed *time.Time `json:"date_last_performed,omitempty"`
	DateNextDue       *time.Time `json:"date_next_due,omitempty"`

	TrackByPrimary         bool             `json:"track_by_primary"`
	TrackByPrimaryEvery    bool             `json:"track_by_primary_every"`
	PrimaryMeterType       MeterUnit        `json:"primary_meter_type,omitempty" gorm:"size:16"`
	PrimaryInterval        *decimal.Decimal `json:"primary_interval,omitempty" gorm:"type:decimal(20,4)"`
	PrimaryAdvanceNotice   decimal.Decimal  `json:"primary_advance_notice" gorm:"type:decimal(20,4);default:0"`
	PrimaryLastPerformed   *decimal.Decimal `json:"primary_last_performed,omitempty" gorm:"type:decimal(20,4)"`
	PrimaryNextDue         *decimal.Decimal `json:"primary_next_due,omitempty" gorm:"type:decimal(20,4)"`
	TrackBySecondary       bool             `json:"track_by_secondary"`
	TrackBySecondaryEvery  bool             `json:"track_by_secondary_every"`
	SecondaryMeterType     MeterUnit        `json:"secondary_meter_type,omitempty" gorm:"size:16"`
	SecondaryInterval      *decimal.Decimal `json:"secondary_interval,omitempty" gorm:"type:decimal(20,4)"`
	SecondaryAdvanceNotice decimal.Decimal  `json:"secondary_advance_notice" gorm:"type:decimal(20,4);default:0"`
	SecondaryLastPerformed *decimal.Decimal `json:"secondary_last_performed,omitempty" gorm:"type:decimal(20,4)"`
	SecondaryNextDue       *decimal.Decimal `json:"secondary_next_due,omitempty" gorm:"type:decimal(20,4)"`

	DueDates  []TrackingDueDate  `json:"due_dates,omitempty" gorm:"foreignKey:TrackingID;constraint:OnDelete:CASCADE"`
	DueMeters []TrackingDueMeter `json:"due_meters,omitempty" gorm:"foreignKey:TrackingID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TrackingDueDate is one explicit due date of a tracking in "On" mode.
type TrackingDueDate struct {
	ID         int64     `json:"id"`
	TrackingID int64     `json:"tracking_id" gorm:"not null;index"`
	DueDate    time.Time `json:"due_date" gorm:"not null"`
}

type MeterSlot string

const (
	MeterSlotPrimary   MeterSlot = "primary"
	MeterSlotSecondary MeterSlot = "secondary"
)

// TrackingDueMeter is one explicit due meter value of a tracking in "On" mode.
type TrackingDueMeter struct {
	ID         int64           `json:"id"`
	TrackingID int64           `json:"tracking_id" gorm:"not null;index"`
	Slot       MeterSlot       `json:"slot" gorm:"size:16;not null"`
	Value      decimal.Decimal `json:"value" gorm:"type:decimal(20,4);not null"`
}
