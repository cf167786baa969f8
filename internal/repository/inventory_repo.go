package repository

import (
	"context"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) CreateWarehouse(ctx context.Context, w *domain.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *InventoryRepository) CreateItem(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *InventoryRepository) CreateVendor(ctx context.Context, v *domain.Vendor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *InventoryRepository) CreateInventory(ctx context.Context, inv *domain.Inventory) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error
}

func (r *InventoryRepository) GetInventory(ctx context.Context, id int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Warehouse").
		Where("id = ?", id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InventoryRepository) ListInventory(ctx context.Context, warehouseID int64) ([]domain.Inventory, error) {
	q := r.db.WithContext(ctx).Preload("Item").Preload("Warehouse").Order("id ASC")
	if warehouseID > 0 {
		q = q.Where("warehouse_id = ?", warehouseID)
	}
	var rows []domain.Inventory
	err := q.Find(&rows).Error
	return rows, err
}

func (r *InventoryRepository) ListLowStock(ctx context.Context) ([]domain.Inventory, error) {
	var rows []domain.Inventory
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Warehouse").
		Where("quantity <= low_stock_level").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *InventoryRepository) ListReceipts(ctx context.Context, inventoryID int64) ([]domain.Receipt, error) {
	var rows []domain.Receipt
	err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *InventoryRepository) ListIssuances(ctx context.Context, inventoryID int64) ([]domain.Issuance, error) {
	var rows []domain.Issuance
	err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ListIssuancesForWorkOrder returns every issuance charged to one of the work
// order's tasks, with the receipt it was drawn from.
func (r *InventoryRepository) ListIssuancesForWorkOrder(ctx context.Context, workOrderID int64) ([]domain.Issuance, error) {
	tasks := r.db.Model(&domain.WorkOrderTask{}).Select("id").Where("work_order_id = ?", workOrderID)

	var rows []domain.Issuance
	err := r.db.WithContext(ctx).
		Preload("Receipt").
		Where("work_order_task_id IN (?)", tasks).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *InventoryRepository) GetPurchaseOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Receipts", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *InventoryRepository) ListPurchaseOrders(ctx context.Context, status domain.PurchaseOrderStatus) ([]domain.PurchaseOrder, error) {
	q := r.db.WithContext(ctx).Order("id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []domain.PurchaseOrder
	err := q.Find(&rows).Error
	return rows, err
}

// UpdatePurchaseOrderFields applies a column map to one purchase order and
// reports gorm.ErrRecordNotFound when no row matched.
func (r *InventoryRepository) UpdatePurchaseOrderFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InventoryRepository) SetPurchaseOrderTax(ctx context.Context, id int64, slot domain.TaxSlot, amount decimal.Decimal) error {
	return r.UpdatePurchaseOrderFields(ctx, id, map[string]any{slot.Column(): amount})
}
