package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

func book(state *schedulingState, classID, batchID, roomID, teacherID string, key models.SlotKey) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.classes[classID] = models.BatchClass{
		ID: classID, BatchID: batchID, RoomID: roomID, SubjectID: "math", TeacherID: teacherID,
		DayOfWeek: key.Day, TimeSlot: key.Slot,
	}
	state.order = append(state.order, classID)
	if state.booked[roomID] == nil {
		state.booked[roomID] = map[models.SlotKey]string{}
	}
	state.booked[roomID][key] = classID
}

func TestRoomAvailabilityView(t *testing.T) {
	state := seedSchoolState()
	book(state, "class-1", "batch-a", "room-a", "teacher-t", cell(models.Monday, slot5pm))
	svc := NewRoomAvailabilityService(memRooms{state}, testCatalog(t))

	view, err := svc.Availability(context.Background(), "room-a")
	require.NoError(t, err)
	assert.Equal(t, "Room A", view.Room.Name)
	assert.Len(t, view.Available, 5)
	assert.Equal(t, []models.SlotKey{cell(models.Monday, slot5pm)}, view.Booked)
	assert.Equal(t, []models.SlotKey{
		cell(models.Monday, slot4pm),
		cell(models.Monday, slot6pm),
		cell(models.Wednesday, slot4pm),
		cell(models.Wednesday, slot5pm),
	}, view.Free)

	free, err := svc.IsRoomFree(context.Background(), "room-a", cell(models.Monday, slot5pm))
	require.NoError(t, err)
	assert.False(t, free)
	free, err = svc.IsRoomFree(context.Background(), "room-a", cell(models.Tuesday, slot5pm))
	require.NoError(t, err)
	assert.False(t, free)
	free, err = svc.IsRoomFree(context.Background(), "room-a", cell(models.Monday, slot4pm))
	require.NoError(t, err)
	assert.True(t, free)
}

func TestRoomAvailabilityCheckCell(t *testing.T) {
	state := seedSchoolState()
	book(state, "class-1", "batch-a", "room-a", "teacher-t", cell(models.Monday, slot5pm))
	svc := NewRoomAvailabilityService(memRooms{state}, testCatalog(t))

	status, err := svc.CheckCell(context.Background(), "room-a", "mon", string(slot4pm))
	require.NoError(t, err)
	assert.Equal(t, models.RoomCellStatus{RoomID: "room-a", Day: models.Monday, Slot: slot4pm, Free: true}, *status)

	status, err = svc.CheckCell(context.Background(), "room-a", "MONDAY", string(slot5pm))
	require.NoError(t, err)
	assert.False(t, status.Free)

	_, err = svc.CheckCell(context.Background(), "room-a", "MONDAY", "noon")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.CheckCell(context.Background(), "missing", "MONDAY", string(slot4pm))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRoomAvailabilityListRoomsUtilisation(t *testing.T) {
	state := seedSchoolState()
	book(state, "class-1", "batch-c", "room-b", "teacher-t", cell(models.Monday, slot4pm))
	svc := NewRoomAvailabilityService(memRooms{state}, testCatalog(t))

	rooms, err := svc.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Room A", rooms[0].Name)
	assert.Zero(t, rooms[0].Utilisation)
	assert.InDelta(t, 0.5, rooms[1].Utilisation, 1e-9)
}

func TestRoomAvailabilityErrors(t *testing.T) {
	svc := NewRoomAvailabilityService(memRooms{seedSchoolState()}, testCatalog(t))

	_, err := svc.Availability(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Availability(context.Background(), " ")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestBatchServiceCheckOwnRoom(t *testing.T) {
	state := seedSchoolState()
	state.addBatch("batch-e", "Batch E", "PRIMARY", "room-b", cell(models.Monday, slot4pm), cell(models.Friday, slot4pm))
	svc := NewBatchService(memBatches{state}, memRooms{state}, memClasses{state}, testCatalog(t))

	report, err := svc.CheckRoom(context.Background(), "batch-a", "")
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, "room-a", report.RoomID)
	assert.Empty(t, report.SlotsOutsideRoom)

	report, err = svc.CheckRoom(context.Background(), "batch-e", "")
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, []models.SlotKey{cell(models.Friday, slot4pm)}, report.SlotsOutsideRoom)
}

func TestBatchServiceCheckOtherRoom(t *testing.T) {
	state := seedSchoolState()
	book(state, "class-1", "batch-a", "room-a", "teacher-t", cell(models.Monday, slot4pm))
	book(state, "class-2", "batch-c", "room-b", "teacher-u", cell(models.Monday, slot4pm))
	svc := NewBatchService(memBatches{state}, memRooms{state}, memClasses{state}, testCatalog(t))

	report, err := svc.CheckRoom(context.Background(), "batch-a", "room-b")
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, []models.SlotKey{cell(models.Wednesday, slot4pm)}, report.SlotsOutsideRoom)
	require.Len(t, report.ConflictingClasses, 1)
	assert.Equal(t, "class-1", report.ConflictingClasses[0].ID)

	_, err = svc.CheckRoom(context.Background(), "batch-a", "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.CheckRoom(context.Background(), "missing", "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
