package models

// Room is a physical teaching space.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
	HouseID  string `db:"house_id" json:"house_id"`
}

// RoomSlot is a single row of room_available_slots or room_booked_slots.
type RoomSlot struct {
	RoomID string `db:"room_id"`
	SlotKey
}

// RoomBooking is a booked cell together with the owning class and batch.
type RoomBooking struct {
	BatchClassID string `db:"batch_class_id" json:"batch_class_id"`
	BatchID      string `db:"batch_id" json:"batch_id"`
	SlotKey
}

// RoomAvailability bundles a room with its available and booked sets.
type RoomAvailability struct {
	Room
	Available SlotSet `json:"-"`
	Booked    SlotSet `json:"-"`
}

// IsFree is true iff key is available and not booked.
func (r RoomAvailability) IsFree(key SlotKey) bool {
	return r.Available.Contains(key) && !r.Booked.Contains(key)
}

// RoomSummary is the list view row for rooms; capacity is informational only.
type RoomSummary struct {
	Room
	AvailableCount int     `db:"available_count" json:"available_count"`
	BookedCount    int     `db:"booked_count" json:"booked_count"`
	Utilisation    float64 `db:"-" json:"utilisation"`
}

// RoomCellStatus answers whether one room cell can take a class.
type RoomCellStatus struct {
	RoomID string    `json:"room_id"`
	Day    DayOfWeek `json:"day"`
	Slot   TimeSlot  `json:"slot"`
	Free   bool      `json:"free"`
}

// RoomAvailabilityView exposes sorted slot lists for a single room.
type RoomAvailabilityView struct {
	Room      Room      `json:"room"`
	Available []SlotKey `json:"available"`
	Booked    []SlotKey `json:"booked"`
	Free      []SlotKey `json:"free"`
}
