package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/pkg/response"
)

type timeSlotCatalogResponse struct {
	Days  []models.DayOfWeek      `json:"days"`
	Slots []models.SlotDefinition `json:"slots"`
}

// TimeSlotHandler publishes the slot catalog.
type TimeSlotHandler struct {
	catalog *models.TimeSlotCatalog
}

// NewTimeSlotHandler constructs the handler.
func NewTimeSlotHandler(catalog *models.TimeSlotCatalog) *TimeSlotHandler {
	return &TimeSlotHandler{catalog: catalog}
}

// List godoc
// @Summary Operating days and time slots
// @Tags Scheduling
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-slots [get]
func (h *TimeSlotHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, timeSlotCatalogResponse{Days: h.catalog.Days(), Slots: h.catalog.Slots()})
}
