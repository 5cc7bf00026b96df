package models

import "time"

// Batch is a cohort sharing a weekly grid and a room.
type Batch struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Level    string `db:"level" json:"level"`
	Capacity int    `db:"capacity" json:"capacity"`
	RoomID   string `db:"room_id" json:"room_id"`
}

// BatchWithGrid carries the batch together with its weekly slots.
type BatchWithGrid struct {
	Batch
	WeeklySlots SlotSet `json:"-"`
}

// AllowsSlot reports whether key lies inside the weekly grid.
func (b BatchWithGrid) AllowsSlot(key SlotKey) bool {
	return b.WeeklySlots.Contains(key)
}

// BatchSlot is one row of batch_weekly_slots.
type BatchSlot struct {
	BatchID string `db:"batch_id"`
	SlotKey
}

// BatchClass is one subject/teacher session bound to a batch, day and slot.
type BatchClass struct {
	ID        string    `db:"id" json:"id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	DayOfWeek DayOfWeek `db:"day_of_week" json:"day_of_week"`
	TimeSlot  TimeSlot  `db:"time_slot" json:"time_slot"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Key returns the weekly cell occupied by the class.
func (c BatchClass) Key() SlotKey {
	return SlotKey{Day: c.DayOfWeek, Slot: c.TimeSlot}
}

// BatchClassDetail enriches a class with display names.
type BatchClassDetail struct {
	BatchClass
	BatchName   string `db:"batch_name" json:"batch_name"`
	RoomName    string `db:"room_name" json:"room_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// BatchRoomCheck reports whether a batch fits a room.
type BatchRoomCheck struct {
	BatchID            string       `json:"batch_id"`
	RoomID             string       `json:"room_id"`
	Valid              bool         `json:"valid"`
	SlotsOutsideRoom   []SlotKey    `json:"slots_outside_room"`
	ConflictingClasses []BatchClass `json:"conflicting_classes"`
}
