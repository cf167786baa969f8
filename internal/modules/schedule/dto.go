package schedule

import (
	"time"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
)

type MeterTrackingRequest struct {
	Enabled       bool              `json:"enabled"`
	Every         bool              `json:"every"`
	Unit          domain.MeterUnit  `json:"unit,omitempty"`
	Interval      *decimal.Decimal  `json:"interval,omitempty"`
	AdvanceNotice decimal.Decimal   `json:"advance_notice" validate:"gte=0"`
	LastPerformed *decimal.Decimal  `json:"last_performed,omitempty"`
	NextDue       *decimal.Decimal  `json:"next_due,omitempty"`
	DueValues     []decimal.Decimal `json:"due_values,omitempty"`
}

type TrackingRequest struct {
	ByDate            bool        `json:"by_date"`
	DateEvery         bool        `json:"date_every"`
	DateInterval      *int        `json:"date_interval,omitempty" validate:"omitempty,gt=0"`
	DateAdvanceNotice int         `json:"date_advance_notice" validate:"gte=0"`
	DateLastPerformed *time.Time  `json:"date_last_performed,omitempty"`
	DateNextDue       *time.Time  `json:"date_next_due,omitempty"`
	DueDates          []time.Time `json:"due_dates,omitempty"`

	Primary   MeterTrackingRequest `json:"primary"`
	Secondary MeterTrackingRequest `json:"secondary"`
}

type CreateTaskRequest struct {
	EquipmentID int64           `json:"equipment_id" validate:"required,gt=0"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description,omitempty"`
	Tracking    TrackingRequest `json:"tracking"`
}

type CreateRepairTaskRequest struct {
	EquipmentID int64       `json:"equipment_id" validate:"required,gt=0"`
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	DueDates    []time.Time `json:"due_dates,omitempty"`
}

type RecordPerformedRequest struct {
	PerformedOn *time.Time `json:"performed_on,omitempty"`
}

type TaskKind string

const (
	KindTask   TaskKind = "task"
	KindRepair TaskKind = "repair"
)

// TaskStatus is the evaluation of one task. Error is set instead of Statuses
// when the tracking cannot be evaluated.
type TaskStatus struct {
	Kind          TaskKind    `json:"kind"`
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	EquipmentID   int64       `json:"equipment_id"`
	EquipmentCode string      `json:"equipment_code,omitempty"`
	Due           bool        `json:"due"`
	Statuses      []DueStatus `json:"statuses"`
	Error         string      `json:"error,omitempty"`
}
