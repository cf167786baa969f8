package workorder

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateWorkOrderRequest struct {
	Number      string `json:"number,omitempty" validate:"max=64"`
	EquipmentID int64  `json:"equipment_id" validate:"required,gt=0"`
	Description string `json:"description,omitempty"`
}

type AddTaskRequest struct {
	TaskID       *int64 `json:"task_id,omitempty"`
	RepairTaskID *int64 `json:"repair_task_id,omitempty"`
	Description  string `json:"description,omitempty"`
}

type AddLaborRequest struct {
	Technician string          `json:"technician" validate:"required,max=120"`
	Hours      decimal.Decimal `json:"hours" validate:"gt=0"`
	RateDollar decimal.Decimal `json:"rate_dollar" validate:"gte=0"`
	RateVES    decimal.Decimal `json:"rate_ves" validate:"gte=0"`
	Date       *time.Time      `json:"date,omitempty"`
}

type CompleteRequest struct {
	On *time.Time `json:"on,omitempty"`
}

// Money is an amount in both currencies the shop books in.
type Money struct {
	Dollar decimal.Decimal `json:"dollar"`
	VES    decimal.Decimal `json:"ves"`
}

func (m Money) Add(o Money) Money {
	return Money{Dollar: m.Dollar.Add(o.Dollar), VES: m.VES.Add(o.VES)}
}

type CostSummary struct {
	WorkOrderID int64 `json:"work_order_id"`
	Labor       Money `json:"labor"`
	Parts       Money `json:"parts"`
	Total       Money `json:"total"`
}
