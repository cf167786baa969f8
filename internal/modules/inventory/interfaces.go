package inventory

import (
	"context"
	"time"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
)

// InventoryRepository covers the non-ledger reads and writes of the module.
type InventoryRepository interface {
	CreateWarehouse(ctx context.Context, w *domain.Warehouse) error
	CreateItem(ctx context.Context, item *domain.Item) error
	CreateVendor(ctx context.Context, v *domain.Vendor) error
	CreateInventory(ctx context.Context, inv *domain.Inventory) error
	GetInventory(ctx context.Context, id int64) (*domain.Inventory, error)
	ListInventory(ctx context.Context, warehouseID int64) ([]domain.Inventory, error)
	ListLowStock(ctx context.Context) ([]domain.Inventory, error)
	ListReceipts(ctx context.Context, inventoryID int64) ([]domain.Receipt, error)
	ListIssuances(ctx context.Context, inventoryID int64) ([]domain.Issuance, error)

	GetPurchaseOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, status domain.PurchaseOrderStatus) ([]domain.PurchaseOrder, error)
	UpdatePurchaseOrderFields(ctx context.Context, id int64, fields map[string]any) error
	SetPurchaseOrderTax(ctx context.Context, id int64, slot domain.TaxSlot, amount decimal.Decimal) error
}

// Locker serializes ledger operations on one key across goroutines, and
// across processes for the Redis implementation.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Unlocker, error)
}

type Unlocker interface {
	Release(ctx context.Context) error
}
