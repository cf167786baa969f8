package inventory

import (
	"context"
	"fmt"
	"strings"

	"maintenance/internal/domain"
)

func (s *Service) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*domain.Warehouse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	w := &domain.Warehouse{Name: name, Location: strings.TrimSpace(req.Location)}
	if err := s.repo.CreateWarehouse(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest) (*domain.Item, error) {
	part := strings.TrimSpace(req.PartNumber)
	name := strings.TrimSpace(req.Name)
	if part == "" || name == "" {
		return nil, fmt.Errorf("%w: part_number and name are required", ErrValidation)
	}
	item := &domain.Item{PartNumber: part, Name: name, Unit: req.Unit, Description: req.Description}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) CreateVendor(ctx context.Context, req CreateVendorRequest) (*domain.Vendor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	v := &domain.Vendor{Name: name, Email: strings.TrimSpace(req.Email)}
	if err := s.repo.CreateVendor(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// CreateInventory opens an empty stock row for an item in a warehouse. Stock
// arrives only through receipts.
func (s *Service) CreateInventory(ctx context.Context, req CreateInventoryRequest) (*domain.Inventory, error) {
	if req.ItemID <= 0 || req.WarehouseID <= 0 {
		return nil, fmt.Errorf("%w: item_id and warehouse_id are required", ErrValidation)
	}
	if req.ReorderQuantity.IsNegative() || req.LowStockLevel.IsNegative() {
		return nil, fmt.Errorf("%w: reorder_quantity and low_stock_level must not be negative", ErrValidation)
	}
	inv := &domain.Inventory{
		ItemID:          req.ItemID,
		WarehouseID:     req.WarehouseID,
		ReorderQuantity: req.ReorderQuantity,
		LowStockLevel:   req.LowStockLevel,
	}
	if err := s.repo.CreateInventory(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) GetInventory(ctx context.Context, id int64) (*domain.Inventory, error) {
	inv, err := s.repo.GetInventory(ctx, id)
	if err != nil {
		return nil, notFound(err, "inventory")
	}
	return inv, nil
}

func (s *Service) ListInventory(ctx context.Context, warehouseID int64) ([]domain.Inventory, error) {
	return s.repo.ListInventory(ctx, warehouseID)
}

// LowStock lists the rows at or below their low-stock level.
func (s *Service) LowStock(ctx context.Context) ([]domain.Inventory, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *Service) ListReceipts(ctx context.Context, inventoryID int64) ([]domain.Receipt, error) {
	return s.repo.ListReceipts(ctx, inventoryID)
}

func (s *Service) ListIssuances(ctx context.Context, inventoryID int64) ([]domain.Issuance, error) {
	return s.repo.ListIssuances(ctx, inventoryID)
}
