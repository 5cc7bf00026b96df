package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

type roomReader interface {
	List(ctx context.Context) ([]models.RoomSummary, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Room, error)
	AvailableSlots(ctx context.Context, exec sqlx.ExtContext, roomID string) ([]models.SlotKey, error)
	Bookings(ctx context.Context, exec sqlx.ExtContext, roomID string) ([]models.RoomBooking, error)
}

// RoomAvailabilityService exposes the read side of room booking state.
type RoomAvailabilityService struct {
	rooms   roomReader
	catalog *models.TimeSlotCatalog
}

// NewRoomAvailabilityService constructs the service.
func NewRoomAvailabilityService(rooms roomReader, catalog *models.TimeSlotCatalog) *RoomAvailabilityService {
	return &RoomAvailabilityService{rooms: rooms, catalog: catalog}
}

// ListRooms returns every room with its utilisation ratio.
func (s *RoomAvailabilityService) ListRooms(ctx context.Context) ([]models.RoomSummary, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list rooms")
	}
	for i := range rooms {
		if rooms[i].AvailableCount > 0 {
			rooms[i].Utilisation = float64(rooms[i].BookedCount) / float64(rooms[i].AvailableCount)
		}
	}
	return rooms, nil
}

// Availability returns available, booked and free cells of one room.
func (s *RoomAvailabilityService) Availability(ctx context.Context, roomID string) (*models.RoomAvailabilityView, error) {
	state, err := s.load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &models.RoomAvailabilityView{
		Room:      state.Room,
		Available: state.Available.Sorted(s.catalog),
		Booked:    state.Booked.Sorted(s.catalog),
		Free:      state.Available.Difference(state.Booked).Sorted(s.catalog),
	}, nil
}

// IsRoomFree reports whether the cell is available and unbooked.
func (s *RoomAvailabilityService) IsRoomFree(ctx context.Context, roomID string, key models.SlotKey) (bool, error) {
	state, err := s.load(ctx, roomID)
	if err != nil {
		return false, err
	}
	return state.IsFree(key), nil
}

// CheckCell resolves day and slot against the catalog and reports whether the
// room cell is free.
func (s *RoomAvailabilityService) CheckCell(ctx context.Context, roomID, day, slot string) (*models.RoomCellStatus, error) {
	key, err := s.catalog.ResolveKey(day, slot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	free, err := s.IsRoomFree(ctx, roomID, key)
	if err != nil {
		return nil, err
	}
	return &models.RoomCellStatus{RoomID: strings.TrimSpace(roomID), Day: key.Day, Slot: key.Slot, Free: free}, nil
}

func (s *RoomAvailabilityService) load(ctx context.Context, roomID string) (*models.RoomAvailability, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room id is required")
	}
	room, err := s.rooms.FindByID(ctx, nil, roomID)
	if err != nil {
		return nil, notFoundOrStorage(err, "room")
	}
	available, err := s.rooms.AvailableSlots(ctx, nil, roomID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load room availability")
	}
	bookings, err := s.rooms.Bookings(ctx, nil, roomID)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load room bookings")
	}
	booked := models.NewSlotSet()
	for _, booking := range bookings {
		booked.Add(booking.SlotKey)
	}
	return &models.RoomAvailability{Room: *room, Available: models.NewSlotSet(available...), Booked: booked}, nil
}
