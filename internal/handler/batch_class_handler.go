package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
	"github.com/noah-isme/batch-scheduler-api/pkg/response"
)

type batchClassScheduler interface {
	CreateClass(ctx context.Context, req dto.CreateBatchClassRequest) (*dto.BatchClassResult, error)
	CreateClasses(ctx context.Context, req dto.CreateBatchClassesRequest) (*dto.BulkBatchClassResult, error)
	DeleteClass(ctx context.Context, id string) (*dto.DeleteBatchClassResult, error)
	Get(ctx context.Context, id string) (*models.BatchClassDetail, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.BatchClassDetail, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.BatchClassDetail, error)
}

// BatchClassHandler exposes batch class scheduling endpoints.
type BatchClassHandler struct {
	service batchClassScheduler
}

// NewBatchClassHandler constructs the handler.
func NewBatchClassHandler(svc *service.BatchClassService) *BatchClassHandler {
	return &BatchClassHandler{service: svc}
}

// Create godoc
// @Summary Schedule a batch class
// @Description Books the batch room and the teacher for one day and slot. Conflicts return 409.
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.CreateBatchClassRequest true "Batch class payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /batch-classes [post]
func (h *BatchClassHandler) Create(c *gin.Context) {
	var req dto.CreateBatchClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch class payload"))
		return
	}
	result, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// CreateBulk godoc
// @Summary Schedule several classes of one batch on one day
// @Description Each item commits on its own. The response is 200 when every item succeeded and 207 otherwise.
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.CreateBatchClassesRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Router /batch-classes/bulk [post]
func (h *BatchClassHandler) CreateBulk(c *gin.Context) {
	var req dto.CreateBatchClassesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk batch class payload"))
		return
	}
	result, err := h.service.CreateClasses(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result)
}

// Get godoc
// @Summary Get a batch class
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batch-classes/{id} [get]
func (h *BatchClassHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Delete godoc
// @Summary Delete a batch class
// @Description Frees the room and teacher slot. Deleting a missing class still succeeds.
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch class ID"
// @Success 200 {object} response.Envelope
// @Router /batch-classes/{id} [delete]
func (h *BatchClassHandler) Delete(c *gin.Context) {
	result, err := h.service.DeleteClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ByBatch godoc
// @Summary List classes of a batch
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/batch-classes [get]
func (h *BatchClassHandler) ByBatch(c *gin.Context) {
	classes, err := h.service.ListByBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, map[string]interface{}{"total": len(classes)})
}

// ByTeacher godoc
// @Summary List classes taught by a teacher
// @Tags Scheduling
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/batch-classes [get]
func (h *BatchClassHandler) ByTeacher(c *gin.Context) {
	classes, err := h.service.ListByTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, map[string]interface{}{"total": len(classes)})
}
