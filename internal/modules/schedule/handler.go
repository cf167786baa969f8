package schedule

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"maintenance/internal/pkg/dberr"
	"maintenance/internal/pkg/response"
	"maintenance/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/due", h.ListDue)
		tasks.GET("/due/export", h.ExportDue)
		tasks.GET("/:id/status", h.GetTaskStatus)
		tasks.POST("/:id/performed", h.RecordPerformed)
	}

	repairs := rg.Group("/repair-tasks")
	{
		repairs.POST("", h.CreateRepairTask)
		repairs.GET("/:id/status", h.GetRepairTaskStatus)
		repairs.POST("/:id/close", h.CloseRepairTask)
	}
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if !bind(c, &req) {
		return
	}
	task, err := h.service.CreateTask(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"task": task})
}

func (h *Handler) CreateRepairTask(c *gin.Context) {
	var req CreateRepairTaskRequest
	if !bind(c, &req) {
		return
	}
	task, err := h.service.CreateRepairTask(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"repair_task": task})
}

func (h *Handler) ListTasks(c *gin.Context) {
	equipmentID, _ := strconv.ParseInt(c.Query("equipment_id"), 10, 64)
	tasks, err := h.service.ListTasks(c.Request.Context(), equipmentID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) ListDue(c *gin.Context) {
	includeOK := c.Query("all") == "true"
	rows, err := h.service.ListDue(c.Request.Context(), h.now(), includeOK)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tasks": rows})
}

func (h *Handler) ExportDue(c *gin.Context) {
	now := h.now()
	var buf bytes.Buffer
	if err := h.service.ExportDue(c.Request.Context(), &buf, now); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="due-%s.xlsx"`, now.Format("2006-01-02")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) GetTaskStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	st, err := h.service.GetTaskStatus(c.Request.Context(), id, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": st})
}

func (h *Handler) GetRepairTaskStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	st, err := h.service.GetRepairTaskStatus(c.Request.Context(), id, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": st})
}

func (h *Handler) RecordPerformed(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RecordPerformedRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}
	on := h.now()
	if req.PerformedOn != nil {
		on = *req.PerformedOn
	}
	task, err := h.service.RecordPerformed(c.Request.Context(), id, on)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"task": task})
}

func (h *Handler) CloseRepairTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	task, err := h.service.CloseRepairTask(c.Request.Context(), id, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"repair_task": task})
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
		response.Error(c, http.StatusConflict, "INVALID_TRACKING", err.Error())
	default:
		response.Internal(c, err, "Schedule operation failed")
	}
}
