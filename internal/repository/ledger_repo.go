package repository

import (
	"context"
	"time"

	"maintenance/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerStore is the persistence collaborator of the inventory ledger. Every
// method inside WithTransaction runs on the same database transaction.
type LedgerStore interface {
	WithTransaction(ctx context.Context, fn func(store LedgerStore) error) error

	LockInventory(ctx context.Context, inventoryID int64) (*domain.Inventory, error)
	UpdateInventoryQuantity(ctx context.Context, inventoryID int64, delta decimal.Decimal) error

	FindIssuableReceipts(ctx context.Context, inventoryID int64) ([]domain.Receipt, error)
	GetReceipt(ctx context.Context, receiptID int64) (*domain.Receipt, error)
	UpdateReceiptRemaining(ctx context.Context, receiptID int64, delta decimal.Decimal) (*domain.Receipt, error)
	SaveReceipt(ctx context.Context, receipt *domain.Receipt) error
	ListReceiptsForPurchaseOrder(ctx context.Context, purchaseOrderID int64) ([]domain.Receipt, error)
	SumIssuedForReceipt(ctx context.Context, receiptID int64) (decimal.Decimal, error)

	CreateIssuance(ctx context.Context, issuance *domain.Issuance) error
	GetIssuance(ctx context.Context, issuanceID int64) (*domain.Issuance, error)
	UpdateIssuanceQty(ctx context.Context, issuanceID int64, qty decimal.Decimal) error
	DeleteIssuance(ctx context.Context, issuanceID int64) error

	SavePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, purchaseOrderID int64) (*domain.PurchaseOrder, error)
	UpdatePurchaseOrderStatus(ctx context.Context, purchaseOrderID int64, status domain.PurchaseOrderStatus) error
}

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) WithTransaction(ctx context.Context, fn func(store LedgerStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerRepository{db: tx})
	})
}

func (r *LedgerRepository) forUpdate(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *LedgerRepository) LockInventory(ctx context.Context, inventoryID int64) (*domain.Inventory, error) {
	var inv domain.Inventory
	if err := r.forUpdate(ctx).Where("id = ?", inventoryID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *LedgerRepository) UpdateInventoryQuantity(ctx context.Context, inventoryID int64, delta decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&domain.Inventory{}).
		Where("id = ?", inventoryID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindIssuableReceipts returns the receipts of an inventory row that still hold
// stock and are not tied to an open purchase order, oldest first.
func (r *LedgerRepository) FindIssuableReceipts(ctx context.Context, inventoryID int64) ([]domain.Receipt, error) {
	closed := r.db.Model(&domain.PurchaseOrder{}).Select("id").Where("status = ?", domain.POClose)

	var receipts []domain.Receipt
	err := r.forUpdate(ctx).
		Where("inventory_id = ?", inventoryID).
		Where("qty_remaining > 0").
		Where("purchase_order_id IS NULL OR purchase_order_id IN (?)", closed).
		Order("created_at ASC").
		Order("id ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *LedgerRepository) GetReceipt(ctx context.Context, receiptID int64) (*domain.Receipt, error) {
	var receipt domain.Receipt
	if err := r.forUpdate(ctx).Where("id = ?", receiptID).First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *LedgerRepository) UpdateReceiptRemaining(ctx context.Context, receiptID int64, delta decimal.Decimal) (*domain.Receipt, error) {
	res := r.db.WithContext(ctx).Model(&domain.Receipt{}).
		Where("id = ?", receiptID).
		Update("qty_remaining", gorm.Expr("qty_remaining + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetReceipt(ctx, receiptID)
}

func (r *LedgerRepository) SaveReceipt(ctx context.Context, receipt *domain.Receipt) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(receipt).Error
}

func (r *LedgerRepository) ListReceiptsForPurchaseOrder(ctx context.Context, purchaseOrderID int64) ([]domain.Receipt, error) {
	var receipts []domain.Receipt
	err := r.forUpdate(ctx).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("id ASC").
		Find(&receipts).Error
	return receipts, err
}

func (r *LedgerRepository) SumIssuedForReceipt(ctx context.Context, receiptID int64) (decimal.Decimal, error) {
	var issued []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.Issuance{}).
		Where("receipt_id = ?", receiptID).
		Pluck("qty_issued", &issued).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, issued...), nil
}

func (r *LedgerRepository) CreateIssuance(ctx context.Context, issuance *domain.Issuance) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(issuance).Error
}

func (r *LedgerRepository) GetIssuance(ctx context.Context, issuanceID int64) (*domain.Issuance, error) {
	var issuance domain.Issuance
	if err := r.forUpdate(ctx).Where("id = ?", issuanceID).First(&issuance).Error; err != nil {
		return nil, err
	}
	return &issuance, nil
}

func (r *LedgerRepository) UpdateIssuanceQty(ctx context.Context, issuanceID int64, qty decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&domain.Issuance{}).
		Where("id = ?", issuanceID).
		Update("qty_issued", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LedgerRepository) DeleteIssuance(ctx context.Context, issuanceID int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Issuance{}, issuanceID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LedgerRepository) SavePurchaseOrder(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(po).Error
}

func (r *LedgerRepository) GetPurchaseOrder(ctx context.Context, purchaseOrderID int64) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	if err := r.forUpdate(ctx).Where("id = ?", purchaseOrderID).First(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

// UpdatePurchaseOrderStatus stores a new status and stamps closed_at when the
// order is closed.
func (r *LedgerRepository) UpdatePurchaseOrderStatus(ctx context.Context, purchaseOrderID int64, status domain.PurchaseOrderStatus) error {
	fields := map[string]any{"status": status}
	if status == domain.POClose {
		fields["closed_at"] = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).
		Where("id = ?", purchaseOrderID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
