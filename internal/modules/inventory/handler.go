package inventory

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"maintenance/internal/domain"
	"maintenance/internal/pkg/dberr"
	"maintenance/internal/pkg/response"
	"maintenance/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Notifier is told about committed stock changes.
type Notifier interface {
	InventoryChanged(ctx context.Context, inventoryID int64, reason string, payload any)
}

type Handler struct {
	service  *Service
	notifier Notifier
}

func NewHandler(service *Service, notifier Notifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/warehouses", h.CreateWarehouse)
	rg.POST("/items", h.CreateItem)
	rg.POST("/vendors", h.CreateVendor)

	inv := rg.Group("/inventory")
	{
		inv.GET("", h.ListInventory)
		inv.POST("", h.CreateInventory)
		inv.GET("/low-stock", h.LowStock)
		inv.GET("/:id", h.GetInventory)
		inv.GET("/:id/receipts", h.ListReceipts)
		inv.GET("/:id/issuances", h.ListIssuances)
	}

	iss := rg.Group("/issuances")
	{
		iss.POST("", h.CreateIssuance)
		iss.POST("/upsert", h.UpsertIssuance)
		iss.PUT("/:id", h.UpdateIssuance)
		iss.DELETE("/:id", h.DeleteIssuance)
	}

	rec := rg.Group("/receipts")
	{
		rec.POST("", h.CreateReceipt)
		rec.PUT("/:id", h.UpdateReceipt)
		rec.POST("/:id/receive", h.Receive)
	}

	po := rg.Group("/purchase-orders")
	{
		po.GET("", h.ListPurchaseOrders)
		po.POST("", h.CreatePurchaseOrder)
		po.GET("/:id", h.GetPurchaseOrder)
		po.GET("/:id/totals", h.PurchaseOrderTotals)
		po.POST("/:id/order", h.MarkOrdered)
		po.POST("/:id/close", h.ClosePurchaseOrder)
		po.PUT("/:id/tax", h.SetTax)
	}
}

func (h *Handler) CreateWarehouse(c *gin.Context) {
	var req CreateWarehouseRequest
	if !bind(c, &req) {
		return
	}
	w, err := h.service.CreateWarehouse(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, w)
}

func (h *Handler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.service.CreateItem(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

func (h *Handler) CreateVendor(c *gin.Context) {
	var req CreateVendorRequest
	if !bind(c, &req) {
		return
	}
	v, err := h.service.CreateVendor(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, v)
}

func (h *Handler) ListInventory(c *gin.Context) {
	warehouseID, _ := strconv.ParseInt(c.Query("warehouse_id"), 10, 64)
	rows, err := h.service.ListInventory(c.Request.Context(), warehouseID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"inventory": rows})
}

func (h *Handler) CreateInventory(c *gin.Context) {
	var req CreateInventoryRequest
	if !bind(c, &req) {
		return
	}
	inv, err := h.service.CreateInventory(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, inv)
}

func (h *Handler) LowStock(c *gin.Context) {
	rows, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"inventory": rows})
}

func (h *Handler) GetInventory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inv, err := h.service.GetInventory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, inv)
}

func (h *Handler) ListReceipts(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rows, err := h.service.ListReceipts(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"receipts": rows})
}

func (h *Handler) ListIssuances(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rows, err := h.service.ListIssuances(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"issuances": rows})
}

func (h *Handler) CreateIssuance(c *gin.Context) {
	var req CreateIssuanceRequest
	if !bind(c, &req) {
		return
	}
	created, err := h.service.CreateIssuance(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.notify(c, req.InventoryID, "issuance.created", created)
	response.Success(c, http.StatusCreated, gin.H{"issuances": created})
}

func (h *Handler) UpsertIssuance(c *gin.Context) {
	var req UpsertIssuanceRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.service.UpsertIssuance(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(result.Issuances) > 0 {
		h.notify(c, result.Issuances[0].InventoryID, "issuance.upserted", result)
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) UpdateIssuance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateIssuanceRequest
	if !bind(c, &req) {
		return
	}
	updated, err := h.service.UpdateIssuance(c.Request.Context(), id, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	h.notify(c, updated.InventoryID, "issuance.updated", updated)
	response.Success(c, http.StatusOK, updated)
}

func (h *Handler) DeleteIssuance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := h.service.DeleteIssuance(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.notify(c, deleted.InventoryID, "issuance.deleted", deleted)
	response.Success(c, http.StatusOK, deleted)
}

func (h *Handler) CreateReceipt(c *gin.Context) {
	var req UpsertReceiptRequest
	if !bind(c, &req) {
		return
	}
	req.ID = nil
	h.upsertReceipt(c, req, http.StatusCreated)
}

func (h *Handler) UpdateReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpsertReceiptRequest
	if !bind(c, &req) {
		return
	}
	req.ID = &id
	h.upsertReceipt(c, req, http.StatusOK)
}

func (h *Handler) upsertReceipt(c *gin.Context, req UpsertReceiptRequest, status int) {
	view, err := h.service.UpsertReceipt(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.notify(c, view.InventoryID, "receipt.upserted", view)
	response.Success(c, status, view)
}

func (h *Handler) Receive(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ReceiveRequest
	if !bind(c, &req) {
		return
	}
	view, err := h.service.ReceiveAgainstPurchaseOrder(c.Request.Context(), id, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	h.notify(c, view.InventoryID, "receipt.received", view)
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) ListPurchaseOrders(c *gin.Context) {
	rows, err := h.service.ListPurchaseOrders(c.Request.Context(), domain.PurchaseOrderStatus(c.Query("status")))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"purchase_orders": rows})
}

func (h *Handler) CreatePurchaseOrder(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if !bind(c, &req) {
		return
	}
	po, err := h.service.CreatePurchaseOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, po)
}

func (h *Handler) GetPurchaseOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	po, err := h.service.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, po)
}

func (h *Handler) PurchaseOrderTotals(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	totals, err := h.service.PurchaseOrderTotals(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, totals)
}

func (h *Handler) MarkOrdered(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	po, err := h.service.MarkOrdered(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, po)
}

func (h *Handler) ClosePurchaseOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	po, err := h.service.ClosePurchaseOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	seen := make(map[int64]bool)
	for _, line := range po.Receipts {
		if !seen[line.InventoryID] {
			seen[line.InventoryID] = true
			h.notify(c, line.InventoryID, "purchase_order.closed", gin.H{"purchase_order_id": po.ID})
		}
	}
	response.Success(c, http.StatusOK, po)
}

func (h *Handler) SetTax(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req SetTaxRequest
	if !bind(c, &req) {
		return
	}
	po, err := h.service.SetPurchaseOrderTax(c.Request.Context(), id, req.Slot, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, po)
}

func (h *Handler) notify(c *gin.Context, inventoryID int64, reason string, payload any) {
	if h.notifier == nil {
		return
	}
	h.notifier.InventoryChanged(context.WithoutCancel(c.Request.Context()), inventoryID, reason, payload)
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.InvalidJSON(c)
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationFailed(c, errs)
		return false
	}
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	if fe := dberr.Translate(err); fe != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fe.Error(), fe.Details())
		return
	}

	var stock *InsufficientStockError
	switch {
	case errors.As(err, &stock):
		response.ErrorWithDetails(c, http.StatusConflict, "INSUFFICIENT_STOCK", stock.Error(), gin.H{
			"available": stock.Available,
			"requested": stock.Requested,
		})
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, ErrLockNotObtained):
		response.Error(c, http.StatusConflict, "INVENTORY_BUSY", err.Error())
	default:
		response.Internal(c, err, "Inventory operation failed")
	}
}
