package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// RoomRepository owns room booking state; room records themselves are read-only.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns every room with available and booked slot counts.
func (r *RoomRepository) List(ctx context.Context) ([]models.RoomSummary, error) {
	const query = `
SELECT r.id, r.name, r.capacity, r.house_id,
       (SELECT COUNT(*) FROM room_available_slots a WHERE a.room_id = r.id) AS available_count,
       (SELECT COUNT(*) FROM room_booked_slots b WHERE b.room_id = r.id) AS booked_count
FROM rooms r
ORDER BY r.name ASC, r.id ASC`
	var rooms []models.RoomSummary
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindByID loads a room record.
func (r *RoomRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Room, error) {
	const query = `SELECT id, name, capacity, house_id FROM rooms WHERE id = $1`
	var room models.Room
	if err := sqlx.GetContext(ctx, r.exec(exec), &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// AvailableSlots lists the cells the room is open for.
func (r *RoomRepository) AvailableSlots(ctx context.Context, exec sqlx.ExtContext, roomID string) ([]models.SlotKey, error) {
	const query = `SELECT day_of_week, time_slot FROM room_available_slots WHERE room_id = $1`
	var keys []models.SlotKey
	if err := sqlx.SelectContext(ctx, r.exec(exec), &keys, query, roomID); err != nil {
		return nil, fmt.Errorf("list room available slots: %w", err)
	}
	return keys, nil
}

// Bookings lists booked cells with the owning class and batch.
func (r *RoomRepository) Bookings(ctx context.Context, exec sqlx.ExtContext, roomID string) ([]models.RoomBooking, error) {
	const query = `
SELECT b.batch_class_id, bc.batch_id, b.day_of_week, b.time_slot
FROM room_booked_slots b
JOIN batch_classes bc ON bc.id = b.batch_class_id
WHERE b.room_id = $1`
	var bookings []models.RoomBooking
	if err := sqlx.SelectContext(ctx, r.exec(exec), &bookings, query, roomID); err != nil {
		return nil, fmt.Errorf("list room bookings: %w", err)
	}
	return bookings, nil
}

// IsRoomFree reports whether the cell is available and not booked.
func (r *RoomRepository) IsRoomFree(ctx context.Context, exec sqlx.ExtContext, roomID string, key models.SlotKey) (bool, error) {
	const query = `
SELECT EXISTS (SELECT 1 FROM room_available_slots WHERE room_id = $1 AND day_of_week = $2 AND time_slot = $3)
   AND NOT EXISTS (SELECT 1 FROM room_booked_slots WHERE room_id = $1 AND day_of_week = $2 AND time_slot = $3)`
	var free bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &free, query, roomID, key.Day, key.Slot); err != nil {
		return false, fmt.Errorf("check room slot: %w", err)
	}
	return free, nil
}

// Book marks the cell booked for batchClassID. The insert only matches when the
// cell is available, and the primary key rejects a second booking, so zero
// affected rows means the room was not free.
func (r *RoomRepository) Book(ctx context.Context, exec sqlx.ExtContext, roomID string, key models.SlotKey, batchClassID string) error {
	const query = `
INSERT INTO room_booked_slots (room_id, day_of_week, time_slot, batch_class_id)
SELECT a.room_id, a.day_of_week, a.time_slot, $4
FROM room_available_slots a
WHERE a.room_id = $1 AND a.day_of_week = $2 AND a.time_slot = $3
ON CONFLICT (room_id, day_of_week, time_slot) DO NOTHING`
	result, err := r.exec(exec).ExecContext(ctx, query, roomID, key.Day, key.Slot, batchClassID)
	if err != nil {
		if taken := classifyUniqueViolation(err); taken != nil {
			return taken
		}
		return fmt.Errorf("book room slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check booked room rows: %w", err)
	}
	if affected == 0 {
		return ErrRoomSlotTaken
	}
	return nil
}

// Release frees the cell; releasing an unbooked cell is a no-op.
func (r *RoomRepository) Release(ctx context.Context, exec sqlx.ExtContext, roomID string, key models.SlotKey) error {
	const query = `DELETE FROM room_booked_slots WHERE room_id = $1 AND day_of_week = $2 AND time_slot = $3`
	if _, err := r.exec(exec).ExecContext(ctx, query, roomID, key.Day, key.Slot); err != nil {
		return fmt.Errorf("release room slot: %w", err)
	}
	return nil
}
