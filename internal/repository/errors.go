package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors for conditional writes that lost against an existing row.
var (
	ErrRoomSlotTaken    = errors.New("room slot not available")
	ErrTeacherSlotTaken = errors.New("teacher slot already assigned")
)

const uniqueViolation = "23505"

// classifyUniqueViolation maps batch_classes unique constraint violations to the slot sentinels.
func classifyUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case "batch_classes_room_slot_key", "room_booked_slots_pkey":
		return ErrRoomSlotTaken
	case "batch_classes_teacher_slot_key", "teacher_slot_assignments_pkey":
		return ErrTeacherSlotTaken
	}
	return nil
}
