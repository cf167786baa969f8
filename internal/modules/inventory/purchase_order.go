package inventory

import (
	"context"
	"fmt"
	"strings"

	"maintenance/internal/domain"
	"maintenance/internal/repository"

	"github.com/shopspring/decimal"
)

// CreatePurchaseOrder stores a requisition and one receipt line per ordered
// inventory row. Lines hold nothing until they are received.
func (s *Service) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return nil, fmt.Errorf("%w: number is required", ErrValidation)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one line is required", ErrValidation)
	}
	for i, l := range req.Lines {
		if l.InventoryID <= 0 || !l.QtyOrdered.IsPositive() {
			return nil, fmt.Errorf("%w: line %d needs an inventory_id and a positive qty_ordered", ErrValidation, i+1)
		}
		if l.UnitCostDollar.IsNegative() || l.UnitCostVES.IsNegative() {
			return nil, fmt.Errorf("%w: line %d has a negative unit cost", ErrValidation, i+1)
		}
	}

	po := &domain.PurchaseOrder{
		Number:   number,
		VendorID: req.VendorID,
		Status:   domain.PORequisition,
		Notes:    req.Notes,
	}
	err := s.ledger.WithTransaction(ctx, func(store repository.LedgerStore) error {
		if err := store.SavePurchaseOrder(ctx, po); err != nil {
			return err
		}
		for _, l := range req.Lines {
			if _, err := store.LockInventory(ctx, l.InventoryID); err != nil {
				return notFound(err, "inventory")
			}
			line := domain.Receipt{
				InventoryID:     l.InventoryID,
				PurchaseOrderID: &po.ID,
				VendorID:        req.VendorID,
				QtyOrdered:      l.QtyOrdered,
				UnitCostDollar:  l.UnitCostDollar,
				UnitCostVES:     l.UnitCostVES,
				CreatedAt:       s.now().UTC(),
			}
			if err := store.SaveReceipt(ctx, &line); err != nil {
				return err
			}
			po.Receipts = append(po.Receipts, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

func (s *Service) GetPurchaseOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	po, err := s.repo.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "purchase order")
	}
	return po, nil
}

func (s *Service) ListPurchaseOrders(ctx context.Context, status domain.PurchaseOrderStatus) ([]domain.PurchaseOrder, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.repo.ListPurchaseOrders(ctx, status)
}

// MarkOrdered moves a requisition to Ordered once it has been sent to the vendor.
func (s *Service) MarkOrdered(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	err := s.ledger.WithTransaction(ctx, func(store repository.LedgerStore) error {
		po, err := store.GetPurchaseOrder(ctx, id)
		if err != nil {
			return notFound(err, "purchase order")
		}
		if po.Status != domain.PORequisition {
			return fmt.Errorf("%w: purchase order is %s, not %s", ErrInvalidState, po.Status, domain.PORequisition)
		}
		return store.UpdatePurchaseOrderStatus(ctx, id, domain.POOrdered)
	})
	if err != nil {
		return nil, err
	}
	return s.GetPurchaseOrder(ctx, id)
}

// ClosePurchaseOrder closes an order for good. Its received stock becomes
// issuable from then on.
func (s *Service) ClosePurchaseOrder(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	err := s.ledger.WithTransaction(ctx, func(store repository.LedgerStore) error {
		po, err := store.GetPurchaseOrder(ctx, id)
		if err != nil {
			return notFound(err, "purchase order")
		}
		if po.Status == domain.POClose {
			return fmt.Errorf("%w: purchase order is already closed", ErrInvalidState)
		}
		return store.UpdatePurchaseOrderStatus(ctx, id, domain.POClose)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("purchase_order_id", id).Info("purchase order closed")
	return s.GetPurchaseOrder(ctx, id)
}

func (s *Service) SetPurchaseOrderTax(ctx context.Context, id int64, slot domain.TaxSlot, amount decimal.Decimal) (*domain.PurchaseOrder, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("%w: unknown tax slot %q", ErrValidation, slot)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: tax must not be negative", ErrValidation)
	}

	po, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status == domain.POClose {
		return nil, fmt.Errorf("%w: purchase order is closed", ErrInvalidState)
	}
	if err := s.repo.SetPurchaseOrderTax(ctx, id, slot, amount); err != nil {
		return nil, notFound(err, "purchase order")
	}
	po.SetTax(slot, amount)
	return po, nil
}

// PurchaseOrderTotals prices every line at its ordered quantity and adds both
// tax slots to the dollar subtotal.
func (s *Service) PurchaseOrderTotals(ctx context.Context, id int64) (*PurchaseOrderTotals, error) {
	po, err := s.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	totals := &PurchaseOrderTotals{
		PurchaseOrderID: po.ID,
		SubtotalDollar:  decimal.Zero,
		SubtotalVES:     decimal.Zero,
		Tax1:            po.Tax(domain.Tax1),
		Tax2:            po.Tax(domain.Tax2),
	}
	for _, line := range po.Receipts {
		totals.SubtotalDollar = totals.SubtotalDollar.Add(line.QtyOrdered.Mul(line.UnitCostDollar))
		totals.SubtotalVES = totals.SubtotalVES.Add(line.QtyOrdered.Mul(line.UnitCostVES))
	}
	totals.TotalDollar = totals.SubtotalDollar.Add(totals.Tax1).Add(totals.Tax2)
	return totals, nil
}
