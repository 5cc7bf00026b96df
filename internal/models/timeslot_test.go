package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCatalog(t *testing.T) *TimeSlotCatalog {
	t.Helper()
	catalog, err := NewTimeSlotCatalog(CatalogOptions{})
	require.NoError(t, err)
	return catalog
}

func TestNewTimeSlotCatalogDefaults(t *testing.T) {
	catalog := defaultCatalog(t)
	slots := catalog.Slots()
	require.Len(t, slots, 16)
	assert.Equal(t, TimeSlot("06:00 AM-07:00 AM"), slots[0].Label)
	assert.Equal(t, TimeSlot("09:00 PM-10:00 PM"), slots[15].Label)
	assert.Equal(t, "21:00", slots[15].Start)
	assert.Equal(t, []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}, catalog.Days())
}

func TestNewTimeSlotCatalogRejectsOverflow(t *testing.T) {
	_, err := NewTimeSlotCatalog(CatalogOptions{SlotMinutes: 120, SlotCount: 13})
	assert.Error(t, err)

	_, err = NewTimeSlotCatalog(CatalogOptions{DayStart: "25:00"})
	assert.Error(t, err)

	_, err = NewTimeSlotCatalog(CatalogOptions{OperatingDays: []DayOfWeek{"FUNDAY"}})
	assert.Error(t, err)
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay(" monday ")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	day, err = ParseDay("thu")
	require.NoError(t, err)
	assert.Equal(t, Thursday, day)

	_, err = ParseDay("")
	assert.Error(t, err)
	_, err = ParseDay("someday")
	assert.Error(t, err)
}

func TestResolveKey(t *testing.T) {
	catalog := defaultCatalog(t)

	key, err := catalog.ResolveKey("MONDAY", "04:00 pm - 05:00 pm")
	require.NoError(t, err)
	assert.Equal(t, SlotKey{Day: Monday, Slot: "04:00 PM-05:00 PM"}, key)
	assert.Equal(t, "MONDAY 04:00 PM-05:00 PM", key.String())

	_, err = catalog.ResolveKey("SUNDAY", "04:00 PM-05:00 PM")
	assert.Error(t, err, "sunday is not operating by default")

	_, err = catalog.ResolveKey("MONDAY", "03:30 PM-04:30 PM")
	assert.Error(t, err)
}

func TestSlotSetOperations(t *testing.T) {
	catalog := defaultCatalog(t)
	mon4 := SlotKey{Day: Monday, Slot: "04:00 PM-05:00 PM"}
	mon7 := SlotKey{Day: Monday, Slot: "07:00 AM-08:00 AM"}
	tue4 := SlotKey{Day: Tuesday, Slot: "04:00 PM-05:00 PM"}

	grid := NewSlotSet(tue4, mon4)
	room := NewSlotSet(mon4, mon7, tue4)

	assert.True(t, grid.SubsetOf(room))
	assert.False(t, room.SubsetOf(grid))
	assert.Equal(t, []SlotKey{mon7}, room.Difference(grid).Sorted(catalog))
	assert.Equal(t, []SlotKey{mon7, mon4, tue4}, room.Sorted(catalog))
	assert.Equal(t, "MONDAY 04:00 PM-05:00 PM, TUESDAY 04:00 PM-05:00 PM", FormatSlotKeys(grid.Sorted(catalog)))

	grid.Remove(mon4)
	grid.Remove(mon4)
	assert.False(t, grid.Contains(mon4))
	grid.Add(mon7)
	assert.True(t, grid.Contains(mon7))
}

func TestEmptyGridAllowsNothing(t *testing.T) {
	batch := BatchWithGrid{Batch: Batch{ID: "b1"}, WeeklySlots: NewSlotSet()}
	assert.False(t, batch.AllowsSlot(SlotKey{Day: Monday, Slot: "06:00 AM-07:00 AM"}))
}

func TestRoomAvailabilityIsFree(t *testing.T) {
	key := SlotKey{Day: Monday, Slot: "06:00 AM-07:00 AM"}
	room := RoomAvailability{Available: NewSlotSet(key), Booked: NewSlotSet()}
	assert.True(t, room.IsFree(key))
	room.Booked.Add(key)
	assert.False(t, room.IsFree(key))
	assert.False(t, room.IsFree(SlotKey{Day: Tuesday, Slot: key.Slot}))
}

func TestDayIndex(t *testing.T) {
	assert.Equal(t, 0, Monday.Index())
	assert.Equal(t, 6, Sunday.Index())
	assert.Equal(t, -1, DayOfWeek("X").Index())
}
