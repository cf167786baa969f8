package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Warehouse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" gorm:"size:120;not null;uniqueIndex"`
	Location  string    `json:"location,omitempty" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ID          int64     `json:"id"`
	PartNumber  string    `json:"part_number" gorm:"size:64;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Unit        string    `json:"unit,omitempty" gorm:"size:16"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

// Inventory is the stock level of one item in one warehouse. Quantity is the
// on-hand total across every receipt of that item in that warehouse.
type Inventory struct {
	ID              int64           `json:"id"`
	ItemID          int64           `json:"item_id" gorm:"not null;uniqueIndex:idx_inventory_item_warehouse"`
	WarehouseID     int64           `json:"warehouse_id" gorm:"not null;uniqueIndex:idx_inventory_item_warehouse"`
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:decimal(20,4);not null;default:0"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity" gorm:"type:decimal(20,4);not null;default:0"`
	LowStockLevel   decimal.Decimal `json:"low_stock_level" gorm:"type:decimal(20,4);not null;default:0"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Item      *Item      `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (i Inventory) IsLowStock() bool {
	return i.Quantity.LessThanOrEqual(i.LowStockLevel)
}

type Vendor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" gorm:"size:200;not null;uniqueIndex"`
	Email     string    `json:"email,omitempty" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
}

// Receipt is an inbound stock batch. QtyRemaining is the part of QtyReceived
// not yet drawn by any issuance.
type Receipt struct {
	ID              int64           `json:"id"`
	InventoryID     int64           `json:"inventory_id" gorm:"not null;index"`
	PurchaseOrderID *int64          `json:"purchase_order_id,omitempty" gorm:"index"`
	VendorID        *int64          `json:"vendor_id,omitempty" gorm:"index"`
	QtyOrdered      decimal.Decimal `json:"qty_ordered" gorm:"type:decimal(20,4);not null;default:0"`
	QtyReceived     decimal.Decimal `json:"qty_received" gorm:"type:decimal(20,4);not null;default:0"`
	QtyRemaining    decimal.Decimal `json:"qty_remaining" gorm:"type:decimal(20,4);not null;default:0"`
	UnitCostDollar  decimal.Decimal `json:"unit_cost_dollar" gorm:"type:decimal(20,4);not null;default:0"`
	UnitCostVES     decimal.Decimal `json:"unit_cost_ves" gorm:"type:decimal(20,4);not null;default:0"`
	Notes           string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time       `json:"updated_at"`

	PurchaseOrder *PurchaseOrder `json:"purchase_order,omitempty" gorm:"foreignKey:PurchaseOrderID"`
}

// Issuance is an outbound consumption drawn from exactly one receipt.
type Issuance struct {
	ID              int64           `json:"id"`
	BatchID         string          `json:"batch_id" gorm:"size:36;index"`
	ReceiptID       int64           `json:"receipt_id" gorm:"not null;index"`
	InventoryID     int64           `json:"inventory_id" gorm:"not null;index"`
	EquipmentID     *int64          `json:"equipment_id,omitempty" gorm:"index"`
	WorkOrderTaskID *int64          `json:"work_order_task_id,omitempty" gorm:"index"`
	QtyIssued       decimal.Decimal `json:"qty_issued" gorm:"type:decimal(20,4);not null"`
	Date            time.Time       `json:"date"`
	Notes           string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Receipt *Receipt `json:"receipt,omitempty" gorm:"foreignKey:ReceiptID"`
}
