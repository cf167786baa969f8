package workorder

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"maintenance/internal/domain"
	"maintenance/internal/pkg/dberr"
	"maintenance/internal/pkg/response"
	"maintenance/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	wo := rg.Group("/work-orders")
	{
		wo.GET("", h.List)
		wo.POST("", h.Create)
		wo.GET("/:id", h.Get)
		wo.GET("/:id/cost", h.Cost)
		wo.POST("/:id/tasks", h.AddTask)
		wo.POST("/:id/complete", h.Complete)
	}

	tasks := rg.Group("/work-order-tasks")
	{
		tasks.POST("/:id/labor", h.AddLabor)
		tasks.POST("/:id/complete", h.CompleteTask)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateWorkOrderRequest
	if !bind(c, &req) {
		return
	}
	wo, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"work_order": wo})
}

func (h *Handler) List(c *gin.Context) {
	status := domain.WorkOrderStatus(c.Query("status"))
	rows, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"work_orders": rows})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	wo, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"work_order": wo})
}

func (h *Handler) Cost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cost, err := h.service.Cost(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cost": cost})
}

func (h *Handler) AddTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req AddTaskRequest
	if !bind(c, &req) {
		return
	}
	task, err := h.service.AddTask(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"task": task})
}

func (h *Handler) AddLabor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req AddLaborRequest
	if !bind(c, &req) {
		return
	}
	entry, err := h.service.AddLabor(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"labor": entry})
}

func (h *Handler) CompleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	on, ok := completionTime(c)
	if !ok {
		return
	}
	task, err := h.service.CompleteTask(c.Request.Context(), id, on)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"task": task})
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	on, ok := completionTime(c)
	if !ok {
		return
	}
	wo, err := h.service.Complete(c.Request.Context(), id, on)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"work_order": wo})
}

// completionTime reads an optional {"on": ...} body and defaults to now.
func completionTime(c *gin.Context) (time.Time, bool) {
	var req CompleteRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return time.Time{}, false
	}
	if req.On != nil {
		return *req.On, true
	}
	return time.Now(), true
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
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
	default:
		response.Internal(c, err, "Work order operation failed")
	}
}
