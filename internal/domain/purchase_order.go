package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	PORequisition     PurchaseOrderStatus = "Requisition"
	POOrdered         PurchaseOrderStatus = "Ordered"
	POReceivedPartial PurchaseOrderStatus = "Received_Partial"
	POReceived        PurchaseOrderStatus = "Received"
	POClose           PurchaseOrderStatus = "Close"
)

func (s PurchaseOrderStatus) Valid() bool {
	switch s {
	case PORequisition, POOrdered, POReceivedPartial, POReceived, POClose:
		return true
	default:
		return false
	}
}

type TaxSlot string

const (
	Tax1 TaxSlot = "tax1"
	Tax2 TaxSlot = "tax2"
)

func (s TaxSlot) Valid() bool {
	return s == Tax1 || s == Tax2
}

type PurchaseOrder struct {
	ID        int64               `json:"id"`
	Number    string              `json:"number" gorm:"size:64;not null;uniqueIndex"`
	VendorID  *int64              `json:"vendor_id,omitempty" gorm:"index"`
	Status    PurchaseOrderStatus `json:"status" gorm:"size:24;not null;default:Requisition"`
	Tax1      decimal.Decimal     `json:"tax1" gorm:"type:decimal(20,4);not null;default:0"`
	Tax2      decimal.Decimal     `json:"tax2" gorm:"type:decimal(20,4);not null;default:0"`
	Notes     string              `json:"notes,omitempty" gorm:"type:text"`
	ClosedAt  *time.Time          `json:"closed_at,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`

	Receipts []Receipt `json:"receipts,omitempty" gorm:"foreignKey:PurchaseOrderID"`
}

// Tax returns the amount stored in the given tax slot.
func (po *PurchaseOrder) Tax(slot TaxSlot) decimal.Decimal {
	switch slot {
	case Tax1:
		return po.Tax1
	case Tax2:
		return po.Tax2
	default:
		return decimal.Zero
	}
}

// SetTax stores amount in the given tax slot. It reports false for an unknown slot.
func (po *PurchaseOrder) SetTax(slot TaxSlot, amount decimal.Decimal) bool {
	switch slot {
	case Tax1:
		po.Tax1 = amount
	case Tax2:
		po.Tax2 = amount
	default:
		return false
	}
	return true
}

// Column returns the column backing a tax slot.
func (s TaxSlot) Column() string {
	switch s {
	case Tax1:
		return "tax1"
	case Tax2:
		return "tax2"
	default:
		return ""
	}
}
