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

type roomAvailability interface {
	ListRooms(ctx context.Context) ([]models.RoomSummary, error)
	Availability(ctx context.Context, roomID string) (*models.RoomAvailabilityView, error)
	CheckCell(ctx context.Context, roomID, day, slot string) (*models.RoomCellStatus, error)
}

type batchRoomChecker interface {
	CheckRoom(ctx context.Context, batchID, roomID string) (*models.BatchRoomCheck, error)
}

// RoomHandler exposes room availability and batch to room checks.
type RoomHandler struct {
	rooms   roomAvailability
	batches batchRoomChecker
}

// NewRoomHandler constructs the handler.
func NewRoomHandler(rooms *service.RoomAvailabilityService, batches *service.BatchService) *RoomHandler {
	return &RoomHandler{rooms: rooms, batches: batches}
}

// List godoc
// @Summary List rooms with utilisation
// @Tags Rooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, map[string]interface{}{"total": len(rooms)})
}

// Availability godoc
// @Summary Available, booked and free cells of a room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Param day query string false "Day to check, requires slot"
// @Param slot query string false "Slot to check, requires day"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id}/availability [get]
func (h *RoomHandler) Availability(c *gin.Context) {
	var query dto.RoomAvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room availability query"))
		return
	}
	if query.Day != "" || query.Slot != "" {
		if query.Day == "" || query.Slot == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day and slot must be given together"))
			return
		}
		status, err := h.rooms.CheckCell(c.Request.Context(), c.Param("id"), query.Day, query.Slot)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, status)
		return
	}

	view, err := h.rooms.Availability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// RoomCheck godoc
// @Summary Check a batch grid against a room
// @Tags Rooms
// @Produce json
// @Param id path string true "Batch ID"
// @Param roomId query string false "Room to check, defaults to the batch room"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/room-check [get]
func (h *RoomHandler) RoomCheck(c *gin.Context) {
	var query dto.BatchRoomCheckQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room check query"))
		return
	}
	report, err := h.batches.CheckRoom(c.Request.Context(), c.Param("id"), query.RoomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}
