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

type teacherAvailability interface {
	AvailableTeachers(ctx context.Context, query dto.AvailableTeachersQuery) ([]models.TeacherSummary, error)
	InvalidateDirectory(ctx context.Context) (int, error)
}

// AvailabilityHandler answers teacher availability lookups.
type AvailabilityHandler struct {
	service teacherAvailability
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc *service.TeacherAvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Teachers godoc
// @Summary List teachers free for the given cells
// @Description Candidate cells come from day/days and slot, or from the weekly grid of batchId.
// @Tags Availability
// @Produce json
// @Param level query string true "Teaching level"
// @Param day query string false "Day of week"
// @Param days query []string false "Days of week, repeated or comma separated"
// @Param slot query string false "Time slot label"
// @Param batchId query string false "Use this batch's weekly grid"
// @Param q query string false "Name or id filter"
// @Success 200 {object} response.Envelope
// @Router /availability/teachers [get]
func (h *AvailabilityHandler) Teachers(c *gin.Context) {
	var query dto.AvailableTeachersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability query"))
		return
	}
	teachers, err := h.service.AvailableTeachers(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, map[string]interface{}{"total": len(teachers)})
}

// InvalidateCache godoc
// @Summary Drop cached teacher directory lists
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /availability/teachers/cache [delete]
func (h *AvailabilityHandler) InvalidateCache(c *gin.Context) {
	removed, err := h.service.InvalidateDirectory(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate teacher directory cache"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"invalidated": true, "removed": removed})
}
