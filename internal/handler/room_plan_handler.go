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

type roomPlanner interface {
	BuildRoomPlan(ctx context.Context, roomID string) ([]models.RoomPlanEntry, error)
	Export(ctx context.Context, query dto.RoomPlanExportQuery) (*service.ExportFile, error)
}

// RoomPlanHandler serves the aggregated room plan.
type RoomPlanHandler struct {
	service roomPlanner
}

// NewRoomPlanHandler constructs the handler.
func NewRoomPlanHandler(svc *service.RoomPlanService) *RoomPlanHandler {
	return &RoomPlanHandler{service: svc}
}

// Plan godoc
// @Summary Weekly plan per room
// @Tags Room Plan
// @Produce json
// @Param roomId query string false "Limit to one room"
// @Success 200 {object} response.Envelope
// @Router /room-plan [get]
func (h *RoomPlanHandler) Plan(c *gin.Context) {
	var query dto.RoomPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room plan query"))
		return
	}
	plan, err := h.service.BuildRoomPlan(c.Request.Context(), query.RoomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan)
}

// Export godoc
// @Summary Download the room plan
// @Tags Room Plan
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param roomId query string false "Limit to one room"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Router /room-plan/export [get]
func (h *RoomPlanHandler) Export(c *gin.Context) {
	var query dto.RoomPlanExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
