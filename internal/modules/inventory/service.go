package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintenance/internal/domain"
	"maintenance/internal/pkg/logger"
	"maintenance/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	moduleName     = "inventory"
	defaultLockTTL = 30 * time.Second
)

type Service struct {
	ledger  repository.LedgerStore
	repo    InventoryRepository
	locker  Locker
	lockTTL time.Duration
	log     *logrus.Logger
	now     func() time.Time
}

func NewService(ledger repository.LedgerStore, repo InventoryRepository, locker Locker, lockTTL time.Duration, log *logrus.Logger) *Service {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &Service{
		ledger:  ledger,
		repo:    repo,
		locker:  locker,
		lockTTL: lockTTL,
		log:     logger.OrDiscard(log),
		now:     time.Now,
	}
}

// inTransaction serializes on the inventory row, opens one transaction and
// row-locks the inventory before running fn.
func (s *Service) inTransaction(ctx context.Context, inventoryID int64, fn func(store repository.LedgerStore) error) error {
	lock, err := s.locker.Obtain(ctx, inventoryLockKey(inventoryID), s.lockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.LogError(s.log, moduleName, "inTransaction", "release lock", inventoryID, err)
		}
	}()

	return s.ledger.WithTransaction(ctx, func(store repository.LedgerStore) error {
		if _, err := store.LockInventory(ctx, inventoryID); err != nil {
			return notFound(err, "inventory")
		}
		return fn(store)
	})
}

// CreateIssuance draws req.Quantity from the eligible receipts of the
// inventory row, oldest first. One record is created per receipt touched.
func (s *Service) CreateIssuance(ctx context.Context, req CreateIssuanceRequest) ([]domain.Issuance, error) {
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	var created []domain.Issuance
	err := s.inTransaction(ctx, req.InventoryID, func(store repository.LedgerStore) error {
		var err error
		created, err = s.allocate(ctx, store, issueSpec{
			inventoryID:     req.InventoryID,
			quantity:        req.Quantity,
			equipmentID:     req.EquipmentID,
			workOrderTaskID: req.WorkOrderTaskID,
			date:            req.Date,
			notes:           req.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"inventory_id": req.InventoryID,
		"quantity":     req.Quantity.String(),
		"records":      len(created),
	}).Info("issuance created")
	return created, nil
}

type issueSpec struct {
	inventoryID     int64
	quantity        decimal.Decimal
	equipmentID     *int64
	workOrderTaskID *int64
	date            time.Time
	notes           string
}

func (s *Service) allocate(ctx context.Context, store repository.LedgerStore, spec issueSpec) ([]domain.Issuance, error) {
	receipts, err := store.FindIssuableReceipts(ctx, spec.inventoryID)
	if err != nil {
		return nil, err
	}

	available := decimal.Zero
	for _, r := range receipts {
		available = available.Add(r.QtyRemaining)
	}
	if available.LessThan(spec.quantity) {
		return nil, &InsufficientStockError{
			InventoryID: spec.inventoryID,
			Available:   available,
			Requested:   spec.quantity,
		}
	}

	date := spec.date
	if date.IsZero() {
		date = s.now().UTC()
	}
	batchID := uuid.NewString()

	remaining := spec.quantity
	created := make([]domain.Issuance, 0, 1)
	for _, r := range receipts {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, r.QtyRemaining)

		if _, err := store.UpdateReceiptRemaining(ctx, r.ID, take.Neg()); err != nil {
			return nil, err
		}

		issuance := domain.Issuance{
			BatchID:         batchID,
			ReceiptID:       r.ID,
			InventoryID:     spec.inventoryID,
			EquipmentID:     spec.equipmentID,
			WorkOrderTaskID: spec.workOrderTaskID,
			QtyIssued:       take,
			Date:            date,
			Notes:           spec.notes,
		}
		if err := store.CreateIssuance(ctx, &issuance); err != nil {
			return nil, err
		}
		created = append(created, issuance)
		remaining = remaining.Sub(take)
	}

	if err := store.UpdateInventoryQuantity(ctx, spec.inventoryID, spec.quantity.Neg()); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateIssuance sets an issuance to newQty, moving the difference between
// its receipt and the inventory row. It never re-allocates: an increase the
// receipt cannot cover fails with ErrInsufficientStock. Zero is rejected;
// DeleteIssuance returns the whole quantity.
func (s *Service) UpdateIssuance(ctx context.Context, issuanceID int64, newQty decimal.Decimal) (*domain.Issuance, error) {
	if !newQty.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	inventoryID, err := s.issuanceInventory(ctx, issuanceID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Issuance
	err = s.inTransaction(ctx, inventoryID, func(store repository.LedgerStore) error {
		existing, receipt, err := loadIssuance(ctx, store, issuanceID)
		if err != nil {
			return err
		}

		increase := newQty.Sub(existing.QtyIssued)
		if increase.GreaterThan(receipt.QtyRemaining) {
			return &InsufficientStockError{
				InventoryID: existing.InventoryID,
				Available:   receipt.QtyRemaining,
				Requested:   increase,
			}
		}

		updated, err = reissue(ctx, store, existing, newQty)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// reissue moves oldQty-newQty back to the issuance's receipt and the inventory
// row and stores newQty on the issuance.
func reissue(ctx context.Context, store repository.LedgerStore, existing *domain.Issuance, newQty decimal.Decimal) (*domain.Issuance, error) {
	delta := existing.QtyIssued.Sub(newQty)
	if !delta.IsZero() {
		if _, err := store.UpdateReceiptRemaining(ctx, existing.ReceiptID, delta); err != nil {
			return nil, notFound(err, "receipt")
		}
		if err := store.UpdateInventoryQuantity(ctx, existing.InventoryID, delta); err != nil {
			return nil, notFound(err, "inventory")
		}
	}
	if err := store.UpdateIssuanceQty(ctx, existing.ID, newQty); err != nil {
		return nil, notFound(err, "issuance")
	}

	out := *existing
	out.QtyIssued = newQty
	return &out, nil
}

// UpsertIssuance brings an issuance to req.Quantity. When the increase does not
// fit the originating receipt, the issuance is topped up to exhaust that
// receipt and the rest is issued FIFO from the following receipts, all in one
// transaction.
func (s *Service) UpsertIssuance(ctx context.Context, req UpsertIssuanceRequest) (*UpsertResult, error) {
	if !req.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	if req.IssuanceID == nil {
		created, err := s.CreateIssuance(ctx, CreateIssuanceRequest{
			InventoryID:     req.InventoryID,
			Quantity:        req.Quantity,
			EquipmentID:     req.EquipmentID,
			WorkOrderTaskID: req.WorkOrderTaskID,
			Date:            req.Date,
			Notes:           req.Notes,
		})
		if err != nil {
			return nil, err
		}
		return &UpsertResult{Kind: UpsertAddition, Issuances: created}, nil
	}

	inventoryID, err := s.issuanceInventory(ctx, *req.IssuanceID)
	if err != nil {
		return nil, err
	}
	if req.InventoryID != 0 && req.InventoryID != inventoryID {
		return nil, fmt.Errorf("%w: issuance %d does not belong to inventory %d", ErrValidation, *req.IssuanceID, req.InventoryID)
	}

	var result *UpsertResult
	err = s.inTransaction(ctx, inventoryID, func(store repository.LedgerStore) error {
		existing, receipt, err := loadIssuance(ctx, store, *req.IssuanceID)
		if err != nil {
			return err
		}

		delta := req.Quantity.Sub(existing.QtyIssued)
		if !delta.GreaterThan(receipt.QtyRemaining) {
			updated, err := reissue(ctx, store, existing, req.Quantity)
			if err != nil {
				return err
			}
			result = &UpsertResult{Kind: UpsertSubtraction, Issuances: []domain.Issuance{*updated}}
			return nil
		}

		fill := existing.QtyIssued.Add(receipt.QtyRemaining)
		updated, err := reissue(ctx, store, existing, fill)
		if err != nil {
			return err
		}

		spec := issueSpec{
			inventoryID:     existing.InventoryID,
			quantity:        req.Quantity.Sub(fill),
			equipmentID:     existing.EquipmentID,
			workOrderTaskID: existing.WorkOrderTaskID,
			date:            req.Date,
			notes:           req.Notes,
		}
		if req.EquipmentID != nil {
			spec.equipmentID = req.EquipmentID
		}
		if req.WorkOrderTaskID != nil {
			spec.workOrderTaskID = req.WorkOrderTaskID
		}
		if spec.date.IsZero() {
			spec.date = existing.Date
		}

		created, err := s.allocate(ctx, store, spec)
		if err != nil {
			return err
		}
		result = &UpsertResult{
			Kind:      UpsertAddition,
			Issuances: append([]domain.Issuance{*updated}, created...),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteIssuance removes an issuance and returns its quantity to the receipt
// and the inventory row.
func (s *Service) DeleteIssuance(ctx context.Context, issuanceID int64) (*domain.Issuance, error) {
	inventoryID, err := s.issuanceInventory(ctx, issuanceID)
	if err != nil {
		return nil, err
	}

	var deleted *domain.Issuance
	err = s.inTransaction(ctx, inventoryID, func(store repository.LedgerStore) error {
		existing, err := store.GetIssuance(ctx, issuanceID)
		if err != nil {
			return notFound(err, "issuance")
		}
		if _, err := store.UpdateReceiptRemaining(ctx, existing.ReceiptID, existing.QtyIssued); err != nil {
			return notFound(err, "receipt")
		}
		if err := store.UpdateInventoryQuantity(ctx, existing.InventoryID, existing.QtyIssued); err != nil {
			return notFound(err, "inventory")
		}
		if err := store.DeleteIssuance(ctx, issuanceID); err != nil {
			return notFound(err, "issuance")
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// UpsertReceipt creates or edits a receipt. Manual receipts change on-hand
// stock by the difference in received quantity and are fully available at
// once; purchase-order lines only record what was ordered and leave receiving
// to ReceiveAgainstPurchaseOrder.
func (s *Service) UpsertReceipt(ctx context.Context, req UpsertReceiptRequest) (*ReceiptView, error) {
	if req.InventoryID <= 0 {
		return nil, fmt.Errorf("%w: inventory_id is required", ErrValidation)
	}
	if req.QtyOrdered.IsNegative() || req.QtyReceived.IsNegative() ||
		req.UnitCostDollar.IsNegative() || req.UnitCostVES.IsNegative() {
		return nil, fmt.Errorf("%w: quantities and costs must not be negative", ErrValidation)
	}

	var view *ReceiptView
	err := s.inTransaction(ctx, req.InventoryID, func(store repository.LedgerStore) error {
		var existing *domain.Receipt
		if req.ID != nil {
			r, err := store.GetReceipt(ctx, *req.ID)
			if err != nil {
				return notFound(err, "receipt")
			}
			if r.InventoryID != req.InventoryID {
				return fmt.Errorf("%w: receipt %d belongs to inventory %d", ErrValidation, r.ID, r.InventoryID)
			}
			if !samePurchaseOrder(r.PurchaseOrderID, req.PurchaseOrderID) {
				return fmt.Errorf("%w: a receipt cannot move between purchase orders", ErrInvalidState)
			}
			existing = r
		}

		var err error
		if req.PurchaseOrderID != nil {
			view, err = s.upsertOrderLine(ctx, store, existing, req)
		} else {
			view, err = s.upsertManualReceipt(ctx, store, existing, req)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Service) upsertManualReceipt(ctx context.Context, store repository.LedgerStore, existing *domain.Receipt, req UpsertReceiptRequest) (*ReceiptView, error) {
	receipt := domain.Receipt{InventoryID: req.InventoryID, CreatedAt: s.now().UTC()}
	previous := decimal.Zero
	issued := decimal.Zero
	if existing != nil {
		receipt = *existing
		previous = existing.QtyReceived

		var err error
		issued, err = store.SumIssuedForReceipt(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
	}

	if req.QtyReceived.LessThan(issued) {
		return nil, fmt.Errorf("%w: qty_received %s is below the %s already issued from this receipt",
			ErrValidation, req.QtyReceived.String(), issued.String())
	}

	receipt.VendorID = req.VendorID
	receipt.QtyOrdered = req.QtyReceived
	receipt.QtyReceived = req.QtyReceived
	receipt.QtyRemaining = req.QtyReceived.Sub(issued)
	receipt.UnitCostDollar = req.UnitCostDollar
	receipt.UnitCostVES = req.UnitCostVES
	receipt.Notes = req.Notes

	if err := store.SaveReceipt(ctx, &receipt); err != nil {
		return nil, err
	}
	if delta := req.QtyReceived.Sub(previous); !delta.IsZero() {
		if err := store.UpdateInventoryQuantity(ctx, req.InventoryID, delta); err != nil {
			return nil, notFound(err, "inventory")
		}
	}
	return &ReceiptView{Receipt: receipt, QtyIssued: issued}, nil
}

func (s *Service) upsertOrderLine(ctx context.Context, store repository.LedgerStore, existing *domain.Receipt, req UpsertReceiptRequest) (*ReceiptView, error) {
	po, err := store.GetPurchaseOrder(ctx, *req.PurchaseOrderID)
	if err != nil {
		return nil, notFound(err, "purchase order")
	}
	if po.Status == domain.POClose {
		return nil, fmt.Errorf("%w: purchase order %s is closed", ErrInvalidState, po.Number)
	}
	if !req.QtyOrdered.IsPositive() {
		return nil, fmt.Errorf("%w: qty_ordered must be positive", ErrValidation)
	}

	receipt := domain.Receipt{
		InventoryID:     req.InventoryID,
		PurchaseOrderID: req.PurchaseOrderID,
		CreatedAt:       s.now().UTC(),
	}
	if existing != nil {
		receipt = *existing
		if req.QtyOrdered.LessThan(existing.QtyReceived) {
			return nil, fmt.Errorf("%w: qty_ordered %s is below the %s already received",
				ErrValidation, req.QtyOrdered.String(), existing.QtyReceived.String())
		}
	}
	receipt.VendorID = req.VendorID
	if receipt.VendorID == nil {
		receipt.VendorID = po.VendorID
	}
	receipt.QtyOrdered = req.QtyOrdered
	receipt.UnitCostDollar = req.UnitCostDollar
	receipt.UnitCostVES = req.UnitCostVES
	receipt.Notes = req.Notes

	if err := store.SaveReceipt(ctx, &receipt); err != nil {
		return nil, err
	}

	status, err := refreshOrderStatus(ctx, store, po)
	if err != nil {
		return nil, err
	}

	issued := receipt.QtyReceived.Sub(receipt.QtyRemaining)
	return &ReceiptView{Receipt: receipt, QtyIssued: issued, PurchaseOrderStatus: &status}, nil
}

// ReceiveAgainstPurchaseOrder books qty arriving on a purchase-order line. The
// line never receives more than was ordered; the accepted amount becomes
// on-hand stock.
func (s *Service) ReceiveAgainstPurchaseOrder(ctx context.Context, receiptID int64, qty decimal.Decimal) (*ReceiptView, error) {
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	probe, err := s.ledger.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, notFound(err, "receipt")
	}

	var view *ReceiptView
	err = s.inTransaction(ctx, probe.InventoryID, func(store repository.LedgerStore) error {
		receipt, err := store.GetReceipt(ctx, receiptID)
		if err != nil {
			return notFound(err, "receipt")
		}
		if receipt.PurchaseOrderID == nil {
			return fmt.Errorf("%w: receipt %d is not a purchase-order line", ErrInvalidState, receiptID)
		}
		po, err := store.GetPurchaseOrder(ctx, *receipt.PurchaseOrderID)
		if err != nil {
			return notFound(err, "purchase order")
		}
		if po.Status == domain.POClose {
			return fmt.Errorf("%w: purchase order %s is closed", ErrInvalidState, po.Number)
		}

		open := receipt.QtyOrdered.Sub(receipt.QtyReceived)
		if !open.IsPositive() {
			return fmt.Errorf("%w: line is already fully received", ErrInvalidState)
		}
		accepted := decimal.Min(qty, open)

		receipt.QtyReceived = receipt.QtyReceived.Add(accepted)
		receipt.QtyRemaining = receipt.QtyRemaining.Add(accepted)
		if err := store.SaveReceipt(ctx, receipt); err != nil {
			return err
		}
		if err := store.UpdateInventoryQuantity(ctx, receipt.InventoryID, accepted); err != nil {
			return notFound(err, "inventory")
		}

		status, err := refreshOrderStatus(ctx, store, po)
		if err != nil {
			return err
		}
		view = &ReceiptView{
			Receipt:             *receipt,
			QtyIssued:           receipt.QtyReceived.Sub(receipt.QtyRemaining),
			PurchaseOrderStatus: &status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func refreshOrderStatus(ctx context.Context, store repository.LedgerStore, po *domain.PurchaseOrder) (domain.PurchaseOrderStatus, error) {
	lines, err := store.ListReceiptsForPurchaseOrder(ctx, po.ID)
	if err != nil {
		return "", err
	}
	status := DerivePurchaseOrderStatus(linesOf(lines), po.Status)
	if status != po.Status {
		if err := store.UpdatePurchaseOrderStatus(ctx, po.ID, status); err != nil {
			return "", err
		}
		po.Status = status
	}
	return status, nil
}

func (s *Service) issuanceInventory(ctx context.Context, issuanceID int64) (int64, error) {
	issuance, err := s.ledger.GetIssuance(ctx, issuanceID)
	if err != nil {
		return 0, notFound(err, "issuance")
	}
	return issuance.InventoryID, nil
}

func loadIssuance(ctx context.Context, store repository.LedgerStore, issuanceID int64) (*domain.Issuance, *domain.Receipt, error) {
	issuance, err := store.GetIssuance(ctx, issuanceID)
	if err != nil {
		return nil, nil, notFound(err, "issuance")
	}
	receipt, err := store.GetReceipt(ctx, issuance.ReceiptID)
	if err != nil {
		return nil, nil, notFound(err, "receipt")
	}
	return issuance, receipt, nil
}

func samePurchaseOrder(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
