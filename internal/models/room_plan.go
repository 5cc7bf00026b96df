package models

// RoomPlanRow is one flattened class row loaded for aggregation.
type RoomPlanRow struct {
	BatchClassID string    `db:"batch_class_id"`
	RoomID       string    `db:"room_id"`
	RoomName     string    `db:"room_name"`
	BatchID      string    `db:"batch_id"`
	BatchName    string    `db:"batch_name"`
	DayOfWeek    DayOfWeek `db:"day_of_week"`
	TimeSlot     TimeSlot  `db:"time_slot"`
	TeacherName  string    `db:"teacher_name"`
	SubjectName  string    `db:"subject_name"`
}

// RoomPlanEntry is the per-room section of the room plan.
type RoomPlanEntry struct {
	RoomID   string          `json:"room_id"`
	RoomName string          `json:"room_name"`
	Batches  []RoomPlanBatch `json:"batches"`
}

// RoomPlanBatch groups the classes of one batch inside a room.
type RoomPlanBatch struct {
	BatchID   string          `json:"batch_id"`
	BatchName string          `json:"batch_name"`
	BatchTime string          `json:"batch_time"`
	Classes   []RoomPlanClass `json:"classes"`
}

// RoomPlanClass is one weekly cell with merged teacher and subject names.
type RoomPlanClass struct {
	Day          DayOfWeek `json:"day"`
	Slot         TimeSlot  `json:"slot"`
	Time         string    `json:"time"`
	TeacherNames []string  `json:"teacher_names"`
	SubjectNames []string  `json:"subject_names"`
}
