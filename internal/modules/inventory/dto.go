package inventory

import (
	"time"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
)

type CreateIssuanceRequest struct {
	InventoryID     int64           `json:"inventory_id" validate:"required,gt=0"`
	Quantity        decimal.Decimal `json:"quantity" validate:"gt=0"`
	EquipmentID     *int64          `json:"equipment_id,omitempty"`
	WorkOrderTaskID *int64          `json:"work_order_task_id,omitempty"`
	Date            time.Time       `json:"date"`
	Notes           string          `json:"notes,omitempty" validate:"max=2000"`
}

type UpdateIssuanceRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// UpsertIssuanceRequest targets an existing issuance when IssuanceID is set,
// otherwise it issues Quantity as a new request.
type UpsertIssuanceRequest struct {
	IssuanceID      *int64          `json:"issuance_id,omitempty"`
	InventoryID     int64           `json:"inventory_id" validate:"required,gt=0"`
	Quantity        decimal.Decimal `json:"quantity" validate:"gt=0"`
	EquipmentID     *int64          `json:"equipment_id,omitempty"`
	WorkOrderTaskID *int64          `json:"work_order_task_id,omitempty"`
	Date            time.Time       `json:"date"`
	Notes           string          `json:"notes,omitempty" validate:"max=2000"`
}

type UpsertKind string

const (
	UpsertAddition    UpsertKind = "addition"
	UpsertSubtraction UpsertKind = "subtraction"
)

type UpsertResult struct {
	Kind      UpsertKind        `json:"kind"`
	Issuances []domain.Issuance `json:"issuances"`
}

type UpsertReceiptRequest struct {
	ID              *int64          `json:"id,omitempty"`
	InventoryID     int64           `json:"inventory_id" validate:"required,gt=0"`
	PurchaseOrderID *int64          `json:"purchase_order_id,omitempty"`
	VendorID        *int64          `json:"vendor_id,omitempty"`
	QtyOrdered      decimal.Decimal `json:"qty_ordered" validate:"gte=0"`
	QtyReceived     decimal.Decimal `json:"qty_received" validate:"gte=0"`
	UnitCostDollar  decimal.Decimal `json:"unit_cost_dollar" validate:"gte=0"`
	UnitCostVES     decimal.Decimal `json:"unit_cost_ves" validate:"gte=0"`
	Notes           string          `json:"notes,omitempty" validate:"max=2000"`
}

// ReceiptView is a receipt together with what has been drawn from it and, for
// purchase-order lines, the order's status after the change.
type ReceiptView struct {
	domain.Receipt
	QtyIssued           decimal.Decimal             `json:"qty_issued"`
	PurchaseOrderStatus *domain.PurchaseOrderStatus `json:"purchase_order_status,omitempty"`
}

type ReceiveRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
}

type PurchaseOrderLine struct {
	InventoryID    int64           `json:"inventory_id" validate:"required,gt=0"`
	QtyOrdered     decimal.Decimal `json:"qty_ordered" validate:"gt=0"`
	UnitCostDollar decimal.Decimal `json:"unit_cost_dollar" validate:"gte=0"`
	UnitCostVES    decimal.Decimal `json:"unit_cost_ves" validate:"gte=0"`
}

type CreatePurchaseOrderRequest struct {
	Number   string              `json:"number" validate:"required,max=64"`
	VendorID *int64              `json:"vendor_id,omitempty"`
	Notes    string              `json:"notes,omitempty" validate:"max=2000"`
	Lines    []PurchaseOrderLine `json:"lines" validate:"required,min=1,dive"`
}

type SetTaxRequest struct {
	Slot   domain.TaxSlot  `json:"slot" validate:"required,oneof=tax1 tax2"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
}

type PurchaseOrderTotals struct {
	PurchaseOrderID int64           `json:"purchase_order_id"`
	SubtotalDollar  decimal.Decimal `json:"subtotal_dollar"`
	SubtotalVES     decimal.Decimal `json:"subtotal_ves"`
	Tax1            decimal.Decimal `json:"tax1"`
	Tax2            decimal.Decimal `json:"tax2"`
	TotalDollar     decimal.Decimal `json:"total_dollar"`
}

type CreateWarehouseRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Location string `json:"location,omitempty" validate:"max=200"`
}

type CreateItemRequest struct {
	PartNumber  string `json:"part_number" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=200"`
	Unit        string `json:"unit,omitempty" validate:"max=16"`
	Description string `json:"description,omitempty"`
}

type CreateVendorRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type CreateInventoryRequest struct {
	ItemID          int64           `json:"item_id" validate:"required,gt=0"`
	WarehouseID     int64           `json:"warehouse_id" validate:"required,gt=0"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity" validate:"gte=0"`
	LowStockLevel   decimal.Decimal `json:"low_stock_level" validate:"gte=0"`
}
