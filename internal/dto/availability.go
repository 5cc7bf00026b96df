package dto

// AvailableTeachersQuery selects the candidate cells a teacher must be free for.
// Exactly one of Day, Days or BatchID is expected to describe the days; Slot
// is required unless BatchID supplies the whole weekly grid.
type AvailableTeachersQuery struct {
	Level   string   `form:"level" validate:"required"`
	Day     string   `form:"day"`
	Days    []string `form:"days"`
	Slot    string   `form:"slot"`
	BatchID string   `form:"batchId"`
	Search  string   `form:"q" validate:"max=100"`
}

// RoomPlanQuery filters the room plan.
type RoomPlanQuery struct {
	RoomID string `form:"roomId"`
}

// RoomPlanExportQuery selects the rendering format.
type RoomPlanExportQuery struct {
	RoomID string `form:"roomId"`
	Format string `form:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}

// RoomAvailabilityQuery narrows the room view to a single cell when both are set.
type RoomAvailabilityQuery struct {
	Day  string `form:"day"`
	Slot string `form:"slot"`
}

// BatchRoomCheckQuery optionally names the room to validate against.
type BatchRoomCheckQuery struct {
	RoomID string `form:"roomId"`
}
